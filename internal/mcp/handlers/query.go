package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/kolapsis/vizdocs/internal/config"
	"github.com/kolapsis/vizdocs/internal/docs"
	"github.com/kolapsis/vizdocs/internal/library"
)

// Fetcher is the documentation source consumed by QueryDocs. Defined at
// the consumer side per Go convention.
type Fetcher interface {
	Fetch(ctx context.Context, lib library.ID, topic string, tokens int) docs.Outcome
}

// Freshness reports the provider's last refresh time for a library. The
// zero value of the concrete type (a nil *docs.UpdateStream) is a no-op.
type Freshness interface {
	LastUpdate(lib library.ID) (time.Time, bool)
}

// subTask is one independently answerable decomposition of a complex
// query, in caller-supplied order.
type subTask struct {
	Query  string
	Topic  string
	Intent string
}

// QueryDocs returns the handler for the documentation query tool.
func QueryDocs(fetcher Fetcher, updates Freshness, limits config.LimitsConfig) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		args := req.GetArguments()

		rawLib, _ := args["library"].(string)
		lib := library.ID(rawLib)
		desc, err := library.Get(lib)
		if err != nil {
			return queryError(fmt.Sprintf("library is required and must be one of: %s",
				strings.Join(library.Slugs(), ", ")), start), nil
		}

		query := strings.TrimSpace(getString(args, "query"))
		topic := strings.TrimSpace(getString(args, "topic"))
		intent := strings.TrimSpace(getString(args, "intent"))
		switch {
		case query == "":
			return queryError("query cannot be empty", start), nil
		case topic == "":
			return queryError("topic cannot be empty", start), nil
		case intent == "":
			return queryError("intent cannot be empty", start), nil
		}

		// A supplied value is validated even when zero; only an absent
		// argument takes the default.
		tokens := limits.DefaultTokens
		if raw, ok := args["tokens"].(float64); ok {
			tokens = int(raw)
			if tokens < limits.MinTokens || tokens > limits.MaxTokens {
				return queryError(fmt.Sprintf("tokens must be between %d and %d, got %d",
					limits.MinTokens, limits.MaxTokens, tokens), start), nil
			}
		}

		tasks, err := parseSubTasks(args["subTasks"])
		if err != nil {
			return queryError(err.Error(), start), nil
		}

		topics := splitTopics(topic)

		var text string
		var hasDocs bool
		var fetchErr string
		if len(tasks) == 0 {
			outcome := fetcher.Fetch(ctx, lib, topic, tokens)
			hasDocs = outcome.Found()
			if outcome.Status == docs.StatusFailed {
				fetchErr = outcome.Reason
			}
			text = renderSimple(desc, query, topic, intent, outcome)
		} else {
			outcomes := fetchAll(ctx, fetcher, lib, tasks, tokens, limits.SubTaskTokenCap)
			hasDocs = anyFound(outcomes)
			text = renderSubTasks(desc, query, intent, tasks, outcomes)
		}

		if updates != nil {
			if ts, ok := updates.LastUpdate(lib); ok {
				text += renderFreshness(desc, ts)
			}
		}

		slog.Debug("documentation query answered",
			"library", string(lib),
			"sub_tasks", len(tasks),
			"has_documentation", hasDocs,
			"elapsed", time.Since(start))

		res := mcp.NewToolResultText(text)
		fields := map[string]any{
			"topics":           topics,
			"intent":           intent,
			"library":          string(lib),
			"hasDocumentation": hasDocs,
			"processingTimeMs": time.Since(start).Milliseconds(),
		}
		if fetchErr != "" {
			fields["error"] = fetchErr
		}
		res.Meta = &mcp.Meta{AdditionalFields: fields}
		return res, nil
	}
}

// fetchAll runs every sub-task fetch concurrently and joins the results
// positionally: outcome i belongs to tasks[i] regardless of completion
// order, and one failure never aborts the siblings.
func fetchAll(ctx context.Context, fetcher Fetcher, lib library.ID, tasks []subTask, totalTokens, ceiling int) []docs.Outcome {
	outcomes := make([]docs.Outcome, len(tasks))
	budget := budgetPerSubTask(totalTokens, len(tasks), ceiling)

	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() error {
			outcomes[i] = fetcher.Fetch(ctx, lib, task.Topic, budget)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; outcomes carry failures

	return outcomes
}

// budgetPerSubTask splits the total token budget evenly and bounds each
// share by the fixed cap, clamping pathological inputs to at least 1.
func budgetPerSubTask(total, n, ceiling int) int {
	if n < 1 {
		n = 1
	}
	share := total / n
	if share > ceiling {
		share = ceiling
	}
	if share < 1 {
		share = 1
	}
	return share
}

func anyFound(outcomes []docs.Outcome) bool {
	for _, o := range outcomes {
		if o.Found() {
			return true
		}
	}
	return false
}

// parseSubTasks validates the optional subTasks argument. Each entry must
// carry a non-empty query and topic; the 2-4 length guidance is enforced
// by the extraction prompt, not here.
func parseSubTasks(raw any) ([]subTask, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("subTasks must be an array of {query, topic} objects")
	}

	tasks := make([]subTask, 0, len(list))
	for i, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("subTasks[%d] must be an object", i)
		}
		task := subTask{
			Query:  strings.TrimSpace(getString(m, "query")),
			Topic:  strings.TrimSpace(getString(m, "topic")),
			Intent: strings.TrimSpace(getString(m, "intent")),
		}
		if task.Query == "" {
			return nil, fmt.Errorf("subTasks[%d].query cannot be empty", i)
		}
		if task.Topic == "" {
			return nil, fmt.Errorf("subTasks[%d].topic cannot be empty", i)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// splitTopics trims the comma-joined topic list for response metadata.
func splitTopics(topic string) []string {
	parts := strings.Split(topic, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// queryError builds the validation-failure result with zeroed metadata.
func queryError(msg string, start time.Time) *mcp.CallToolResult {
	res := mcp.NewToolResultError(msg)
	res.Meta = &mcp.Meta{AdditionalFields: map[string]any{
		"topics":           []string{},
		"intent":           "",
		"library":          "",
		"hasDocumentation": false,
		"processingTimeMs": time.Since(start).Milliseconds(),
		"error":            msg,
	}}
	return res
}
