package docs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolapsis/vizdocs/internal/config"
	"github.com/kolapsis/vizdocs/internal/library"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.DocsConfig{
		BaseURL:      baseURL,
		Organization: "antvis",
		Timeout:      2 * time.Second,
	})
}

func TestDocID_MapsAllSlugs(t *testing.T) {
	t.Parallel()

	c := newTestClient("https://example.com/api")

	assert.Equal(t, "antvis/G2", c.DocID(library.G2))
	assert.Equal(t, "antvis/G6", c.DocID(library.G6))
	assert.Equal(t, "antvis/L7", c.DocID(library.L7))
	assert.Equal(t, "antvis/X6", c.DocID(library.X6))
	assert.Equal(t, "antvis/F2", c.DocID(library.F2))
	assert.Equal(t, "antvis/S2", c.DocID(library.S2))
}

func TestFetch_Success(t *testing.T) {
	t.Parallel()

	var gotPath, gotTokens, gotTopic, gotType, gotSource string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTokens = r.URL.Query().Get("tokens")
		gotTopic = r.URL.Query().Get("topic")
		gotType = r.URL.Query().Get("type")
		gotSource = r.Header.Get("X-Vizdocs-Source")
		_, _ = w.Write([]byte("bar chart documentation"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	out := c.Fetch(context.Background(), library.G2, "bar chart", 5000)

	require.Equal(t, StatusFound, out.Status)
	assert.Equal(t, "bar chart documentation", out.Text)
	assert.True(t, out.Found())

	assert.Equal(t, "/v1/antvis/G2", gotPath)
	assert.Equal(t, "5000", gotTokens)
	assert.Equal(t, "bar chart", gotTopic)
	assert.Equal(t, "txt", gotType)
	assert.Equal(t, "mcp-server", gotSource)
}

func TestFetch_EmptyBodyMeansNoContent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("   \n "))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	out := c.Fetch(context.Background(), library.G6, "layout", 2000)

	assert.Equal(t, StatusNoContent, out.Status)
	assert.Empty(t, out.Reason, "absence of docs is not an error")
	assert.False(t, out.Found())
}

func TestFetch_SentinelBodiesMeanNoContent(t *testing.T) {
	t.Parallel()

	for _, sentinel := range []string{"No content available", "No context data available"} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(sentinel))
		}))

		c := newTestClient(srv.URL)
		out := c.Fetch(context.Background(), library.L7, "heatmap", 2000)
		srv.Close()

		assert.Equal(t, StatusNoContent, out.Status, "sentinel %q", sentinel)
	}
}

func TestFetch_HTTPErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	out := c.Fetch(context.Background(), library.X6, "ports", 2000)

	require.Equal(t, StatusFailed, out.Status)
	assert.Contains(t, out.Reason, "502")
}

func TestFetch_TimeoutNormalized(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(config.DocsConfig{
		BaseURL:      srv.URL,
		Organization: "antvis",
		Timeout:      50 * time.Millisecond,
	})
	out := c.Fetch(context.Background(), library.F2, "gesture", 2000)

	require.Equal(t, StatusFailed, out.Status)
	assert.Contains(t, out.Reason, "Timeout error")
}

func TestFetch_ConnectionRefused(t *testing.T) {
	t.Parallel()

	// Reserve a port, then close it so the request is refused.
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := newTestClient(addr)
	out := c.Fetch(context.Background(), library.S2, "pivot", 2000)

	require.Equal(t, StatusFailed, out.Status)
	assert.NotEmpty(t, out.Reason)
}
