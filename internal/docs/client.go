// Package docs talks to the upstream documentation API. It is the only
// I/O boundary with latency and failure risk in the system.
package docs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kolapsis/vizdocs/internal/config"
	"github.com/kolapsis/vizdocs/internal/library"
)

// sourceHeader identifies this tool to the documentation provider.
const sourceHeader = "mcp-server"

// Sentinel bodies the provider returns instead of an empty body when it
// has nothing for the requested topic.
var noContentSentinels = []string{
	"No content available",
	"No context data available",
}

// Status classifies a fetch outcome three ways: content found, no content
// available, or the request itself failed.
type Status int

const (
	StatusFound Status = iota
	StatusNoContent
	StatusFailed
)

// Outcome is the result of one documentation fetch. Text is set only for
// StatusFound; Reason only for StatusFailed.
type Outcome struct {
	Status Status
	Text   string
	Reason string
}

// Found reports whether the fetch yielded non-blank documentation text.
func (o Outcome) Found() bool {
	return o.Status == StatusFound && strings.TrimSpace(o.Text) != ""
}

func found(text string) Outcome { return Outcome{Status: StatusFound, Text: text} }
func noContent() Outcome        { return Outcome{Status: StatusNoContent} }
func failed(msg string) Outcome { return Outcome{Status: StatusFailed, Reason: msg} }

// docIDs maps library slugs to the provider's path segments.
var docIDs = map[library.ID]string{
	library.G2: "G2",
	library.G6: "G6",
	library.L7: "L7",
	library.X6: "X6",
	library.F2: "F2",
	library.S2: "S2",
}

// Client fetches documentation snippets over HTTP. No retries: latency
// must stay predictable for an interactive agent loop.
type Client struct {
	baseURL string
	org     string
	httpc   *http.Client
}

// NewClient creates a documentation client from configuration.
func NewClient(cfg config.DocsConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		org:     cfg.Organization,
		httpc:   &http.Client{Timeout: cfg.Timeout},
	}
}

// DocID returns the provider path segment for lib, e.g. "antvis/G2".
func (c *Client) DocID(lib library.ID) string {
	return c.org + "/" + docIDs[lib]
}

// Fetch retrieves documentation for lib narrowed by topic, bounded by the
// token budget. The outcome distinguishes "no documentation available"
// from "fetch failed"; it never returns a Go error.
func (c *Client) Fetch(ctx context.Context, lib library.ID, topic string, tokens int) Outcome {
	q := url.Values{}
	q.Set("tokens", strconv.Itoa(tokens))
	q.Set("topic", topic)
	q.Set("type", "txt")

	reqURL := fmt.Sprintf("%s/v1/%s?%s", c.baseURL, c.DocID(lib), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return failed(fmt.Sprintf("building request: %v", err))
	}
	req.Header.Set("X-Vizdocs-Source", sourceHeader)

	resp, err := c.httpc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return failed("Timeout error: documentation request did not complete in time")
		}
		return failed(err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failed(fmt.Sprintf("documentation API returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return failed("Timeout error: documentation request did not complete in time")
		}
		return failed(fmt.Sprintf("reading response: %v", err))
	}

	text := string(body)
	if strings.TrimSpace(text) == "" {
		return noContent()
	}
	for _, sentinel := range noContentSentinels {
		if strings.TrimSpace(text) == sentinel {
			return noContent()
		}
	}

	return found(text)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	// http.Client wraps its own deadline in a url.Error with a timeout
	// flag already covered above; keep the string check for awkward cases.
	return strings.Contains(err.Error(), "Client.Timeout")
}

// Timeout exposes the configured per-request timeout, mostly for logging.
func (c *Client) Timeout() time.Duration {
	return c.httpc.Timeout
}
