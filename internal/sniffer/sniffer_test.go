package sniffer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolapsis/vizdocs/internal/config"
	"github.com/kolapsis/vizdocs/internal/library"
)

func newTestDetector(t *testing.T, packageJSON string, modules []string) *Detector {
	t.Helper()

	dir := t.TempDir()
	if packageJSON != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(packageJSON), 0644))
	}
	for _, m := range modules {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules", "@antv", m), 0755))
	}

	return NewDetector(config.DetectionConfig{
		ProjectDir: dir,
		Manifest:   "package.json",
		ModulesDir: "node_modules/@antv",
	})
}

func TestDetect_FromManifest(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, `{
		"dependencies": {"@antv/g2": "^5.0.0", "react": "^18.0.0"},
		"devDependencies": {"@antv/s2": "^2.0.0"},
		"peerDependencies": {"@antv/x6": "^2.0.0"}
	}`, nil)

	installed := d.Detect()
	assert.Equal(t, []library.ID{library.G2, library.X6, library.S2}, installed)
}

func TestDetect_FromModuleDirectory(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, "", []string{"l7", "g6", "not-a-library"})

	installed := d.Detect()
	assert.Equal(t, []library.ID{library.G6, library.L7}, installed)
}

func TestDetect_UnionsManifestAndModules(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, `{"dependencies": {"@antv/f2": "^5.0.0"}}`, []string{"f2", "s2"})

	installed := d.Detect()
	assert.Equal(t, []library.ID{library.F2, library.S2}, installed)
}

func TestDetect_MissingProjectDegradesToEmpty(t *testing.T) {
	t.Parallel()

	d := NewDetector(config.DetectionConfig{
		ProjectDir: "/nonexistent/project",
		Manifest:   "package.json",
		ModulesDir: "node_modules/@antv",
	})

	assert.Empty(t, d.Detect())
}

func TestDetect_MalformedManifestDegradesToEmpty(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, "{not json", nil)
	assert.Empty(t, d.Detect())
}

func TestDetect_CachesUntilCleared(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	d := NewDetector(config.DetectionConfig{
		ProjectDir: dir,
		Manifest:   "package.json",
		ModulesDir: "node_modules/@antv",
	})

	assert.Empty(t, d.Detect())

	// New dependency appears after the first scan: the cache hides it.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"),
		[]byte(`{"dependencies": {"@antv/g2": "^5.0.0"}}`), 0644))
	assert.Empty(t, d.Detect())

	d.ClearCache()
	assert.Equal(t, []library.ID{library.G2}, d.Detect())
}

func TestRecommend_NothingInstalled_MatchesQueryMention(t *testing.T) {
	t.Parallel()

	lib, ok := Recommend("how do I build a force layout with G6?", nil)
	require.True(t, ok)
	assert.Equal(t, library.G6, lib)

	lib, ok = Recommend("pivot table with @antv/s2 in react", nil)
	require.True(t, ok)
	assert.Equal(t, library.S2, lib)
}

func TestRecommend_NothingInstalled_NoMatchReturnsNotOK(t *testing.T) {
	t.Parallel()

	_, ok := Recommend("how do I draw a bar chart", nil)
	assert.False(t, ok)
}

func TestRecommend_Installed_PrefersExplicitMention(t *testing.T) {
	t.Parallel()

	lib, ok := Recommend("render a map with l7", []library.ID{library.G2, library.L7})
	require.True(t, ok)
	assert.Equal(t, library.L7, lib)
}

func TestRecommend_Installed_FallsBackToFirstInstalled(t *testing.T) {
	t.Parallel()

	lib, ok := Recommend("how do I draw a bar chart", []library.ID{library.X6, library.G2})
	require.True(t, ok)
	assert.Equal(t, library.X6, lib, "first installed library is the deterministic fallback")
}
