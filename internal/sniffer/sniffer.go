// Package sniffer guesses which visualization libraries the caller's
// project already uses, by reading its manifest and module install
// directory. Detection is best-effort: any filesystem error degrades to
// an empty result.
package sniffer

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kolapsis/vizdocs/internal/config"
	"github.com/kolapsis/vizdocs/internal/library"
)

// manifest is the subset of package.json the detector cares about.
type manifest struct {
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

// Detector inspects one project directory and caches the result for the
// process lifetime until ClearCache is called.
type Detector struct {
	projectDir string
	manifest   string
	modulesDir string

	mu     sync.Mutex
	cached []library.ID
	valid  bool
}

// NewDetector creates a detector for the configured project location.
func NewDetector(cfg config.DetectionConfig) *Detector {
	return &Detector{
		projectDir: cfg.ProjectDir,
		manifest:   cfg.Manifest,
		modulesDir: cfg.ModulesDir,
	}
}

// Detect returns the installed libraries, in registry order. The first
// call scans the filesystem; later calls return the cached result.
func (d *Detector) Detect() []library.ID {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.valid {
		return d.cached
	}

	found := make(map[library.ID]bool)
	d.scanManifest(found)
	d.scanModules(found)

	var installed []library.ID
	for _, desc := range library.All() {
		if found[desc.ID] {
			installed = append(installed, desc.ID)
		}
	}

	d.cached = installed
	d.valid = true

	slog.Debug("dependency detection complete",
		"project_dir", d.projectDir,
		"installed", len(installed))

	return installed
}

// ClearCache drops the cached detection result; the next Detect rescans.
func (d *Detector) ClearCache() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cached = nil
	d.valid = false
}

func (d *Detector) scanManifest(found map[library.ID]bool) {
	path := filepath.Join(d.projectDir, d.manifest)
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read project manifest", "path", path, "error", err)
		}
		return
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		slog.Warn("failed to parse project manifest", "path", path, "error", err)
		return
	}

	for _, deps := range []map[string]string{m.Dependencies, m.DevDependencies, m.PeerDependencies} {
		for name := range deps {
			if lib, ok := slugFromPackage(name); ok {
				found[lib] = true
			}
		}
	}
}

func (d *Detector) scanModules(found map[library.ID]bool) {
	dir := filepath.Join(d.projectDir, d.modulesDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to list module directory", "dir", dir, "error", err)
		}
		return
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		lib := library.ID(strings.ToLower(e.Name()))
		if library.IsValid(lib) {
			found[lib] = true
		}
	}
}

// slugFromPackage maps a dependency name like "@antv/g2" to its slug.
func slugFromPackage(name string) (library.ID, bool) {
	scoped, ok := strings.CutPrefix(name, "@antv/")
	if !ok {
		return "", false
	}
	lib := library.ID(strings.ToLower(scoped))
	if !library.IsValid(lib) {
		return "", false
	}
	return lib, true
}

// Recommend picks a library for the query. With nothing installed it
// falls back to an explicit mention in the query text and reports not-ok
// when none is found. With installed libraries it prefers an explicit
// mention within the installed set and otherwise returns the first
// installed library, so the result is never not-ok in that case.
func Recommend(query string, installed []library.ID) (library.ID, bool) {
	lowered := strings.ToLower(query)

	if len(installed) == 0 {
		for _, desc := range library.All() {
			if mentions(lowered, desc.ID) {
				return desc.ID, true
			}
		}
		return "", false
	}

	for _, lib := range installed {
		if mentions(lowered, lib) {
			return lib, true
		}
	}
	return installed[0], true
}

// mentions reports whether the query names the library directly, either
// as a bare slug or as its scoped package name.
func mentions(loweredQuery string, lib library.ID) bool {
	return strings.Contains(loweredQuery, string(lib)) ||
		strings.Contains(loweredQuery, "@antv/"+string(lib))
}
