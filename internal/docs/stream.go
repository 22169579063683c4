package docs

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kolapsis/vizdocs/internal/library"
)

// updateEvent is one line of the provider's SSE update feed.
type updateEvent struct {
	Library   string    `json:"library"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateStream maintains a single long-lived connection to the provider's
// documentation update feed and records the latest refresh time per
// library. The first caller establishes the connection; concurrent first
// calls collapse into one attempt. A transport error or close resets the
// stream to disconnected so the next call transparently reconnects.
type UpdateStream struct {
	url   string
	httpc *http.Client
	sf    singleflight.Group

	mu      sync.Mutex
	running bool
	updates map[library.ID]time.Time
}

// NewUpdateStream creates a manager for the SSE update feed at url.
// A nil *UpdateStream is a valid no-op receiver for LastUpdate.
func NewUpdateStream(url string) *UpdateStream {
	return &UpdateStream{
		url:     url,
		httpc:   &http.Client{}, // no timeout: the feed is long-lived
		updates: make(map[library.ID]time.Time),
	}
}

// LastUpdate reports when the provider last refreshed documentation for
// lib, connecting the feed on first use. It never blocks on feed traffic,
// only on connection establishment.
func (u *UpdateStream) LastUpdate(lib library.ID) (time.Time, bool) {
	if u == nil {
		return time.Time{}, false
	}

	if err := u.ensure(); err != nil {
		slog.Debug("update feed unavailable", "error", err)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	ts, ok := u.updates[lib]
	return ts, ok
}

// ensure connects the feed if it is not already running. Concurrent
// callers share a single in-flight connection attempt.
func (u *UpdateStream) ensure() error {
	u.mu.Lock()
	running := u.running
	u.mu.Unlock()
	if running {
		return nil
	}

	_, err, _ := u.sf.Do("connect", func() (any, error) {
		u.mu.Lock()
		running := u.running
		u.mu.Unlock()
		if running {
			return nil, nil
		}

		req, err := http.NewRequest(http.MethodGet, u.url, nil)
		if err != nil {
			return nil, fmt.Errorf("building feed request: %w", err)
		}
		req.Header.Set("Accept", "text/event-stream")
		req.Header.Set("X-Vizdocs-Source", sourceHeader)

		resp, err := u.httpc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("connecting update feed: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("update feed returned status %d", resp.StatusCode)
		}

		u.mu.Lock()
		u.running = true
		u.mu.Unlock()

		slog.Info("documentation update feed connected", "url", u.url)
		go u.read(resp.Body)
		return nil, nil
	})
	return err
}

// read consumes feed events until the connection drops, then marks the
// stream disconnected so the next LastUpdate call reconnects.
func (u *UpdateStream) read(body io.ReadCloser) {
	defer func() {
		_ = body.Close()
		u.mu.Lock()
		u.running = false
		u.mu.Unlock()
		slog.Info("documentation update feed disconnected")
	}()

	sc := bufio.NewScanner(body)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		line = strings.TrimPrefix(line, "data:")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var ev updateEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			slog.Debug("skipping malformed feed event", "line", line, "error", err)
			continue
		}

		lib := library.ID(ev.Library)
		if !library.IsValid(lib) || ev.UpdatedAt.IsZero() {
			continue
		}

		u.mu.Lock()
		if ev.UpdatedAt.After(u.updates[lib]) {
			u.updates[lib] = ev.UpdatedAt
		}
		u.mu.Unlock()
	}
}
