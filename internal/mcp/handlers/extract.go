package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/vizdocs/internal/config"
	"github.com/kolapsis/vizdocs/internal/library"
	"github.com/kolapsis/vizdocs/internal/sniffer"
)

// Tool names, shared between registration, metadata and prompt text.
const (
	ExtractToolName = "extract_viz_topics"
	QueryToolName   = "query_viz_docs"
)

// InstalledDetector reports which libraries the caller's project already
// uses. Defined at the consumer side per Go convention; may be nil.
type InstalledDetector interface {
	Detect() []library.ID
}

// ExtractTopics returns the handler for the extraction tool. It performs
// no classification itself: it synthesizes the instruction prompt the
// calling LLM fills in, plus placeholder metadata.
func ExtractTopics(det InstalledDetector, limits config.LimitsConfig, policy config.ExtractionConfig) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		args := req.GetArguments()

		query, _ := args["query"].(string)
		query = strings.TrimSpace(query)
		if query == "" {
			return extractError("query cannot be empty", limits, start), nil
		}

		var lib library.ID
		if raw, ok := args["library"].(string); ok && raw != "" {
			lib = library.ID(raw)
			if !library.IsValid(lib) {
				return extractError(fmt.Sprintf("unknown library %q (expected one of: %s)",
					raw, strings.Join(library.Slugs(), ", ")), limits, start), nil
			}
		}

		// A supplied value is clamped even when zero; only an absent
		// argument takes the default.
		maxTopics := limits.DefaultTopics
		if raw, ok := args["maxTopics"].(float64); ok {
			maxTopics = int(raw)
		}
		if maxTopics < limits.MinTopics {
			maxTopics = limits.MinTopics
		}
		if maxTopics > limits.MaxTopics {
			maxTopics = limits.MaxTopics
		}

		var installed []library.ID
		if det != nil {
			installed = det.Detect()
		}

		// The metadata library is a placeholder for the LLM to confirm or
		// replace: the supplied library, else the local recommendation,
		// else the fixed default.
		metaLib := lib
		if metaLib == "" {
			if rec, ok := sniffer.Recommend(query, installed); ok {
				metaLib = rec
			} else {
				metaLib = library.Default
			}
		}

		prompt := buildExtractionPrompt(promptInput{
			Query:     query,
			Library:   lib,
			Installed: installed,
			MaxTopics: maxTopics,
			Policy:    policy,
		})

		slog.Debug("extraction prompt generated",
			"library", string(metaLib),
			"detected", lib == "",
			"max_topics", maxTopics)

		res := mcp.NewToolResultText(prompt)
		res.Meta = &mcp.Meta{AdditionalFields: map[string]any{
			"library":          string(metaLib),
			"maxTopics":        maxTopics,
			"promptGenerated":  true,
			"nextTool":         QueryToolName,
			"isComplexTask":    false,
			"subTasks":         []any{},
			"processingTimeMs": time.Since(start).Milliseconds(),
		}}
		return res, nil
	}
}

// extractError builds the validation-failure result: isError with safe
// fallback metadata, never a Go error crossing the tool boundary.
func extractError(msg string, limits config.LimitsConfig, start time.Time) *mcp.CallToolResult {
	res := mcp.NewToolResultError(msg)
	res.Meta = &mcp.Meta{AdditionalFields: map[string]any{
		"library":          string(library.Default),
		"maxTopics":        limits.DefaultTopics,
		"promptGenerated":  false,
		"nextTool":         QueryToolName,
		"isComplexTask":    false,
		"subTasks":         []any{},
		"processingTimeMs": time.Since(start).Milliseconds(),
		"error":            msg,
	}}
	return res
}
