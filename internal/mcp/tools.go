package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/vizdocs/internal/library"
	"github.com/kolapsis/vizdocs/internal/mcp/handlers"
)

func registerTools(s *server.MCPServer, deps *Deps) {
	// extract_viz_topics — turn a query into an extraction prompt
	s.AddTool(
		extractTool(),
		recovered(handlers.ExtractToolName,
			handlers.ExtractTopics(deps.Detector, deps.Limits, deps.Extraction)),
	)

	// query_viz_docs — fetch documentation for extracted topics
	s.AddTool(
		queryTool(),
		recovered(handlers.QueryToolName,
			handlers.QueryDocs(deps.Docs, deps.Updates, deps.Limits)),
	)
}

func extractTool() mcp.Tool {
	return mcp.NewTool(handlers.ExtractToolName,
		mcp.WithDescription("Analyze a natural-language visualization query: detect the relevant AntV library, extract topic keywords, classify intent, and decompose complex tasks into sub-queries. Returns an instruction prompt to fill in; call query_viz_docs next with the extracted values."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The user's visualization question, e.g. 'How to create an animated bar chart with hover interaction'"),
		),
		mcp.WithString("library",
			mcp.Description("Target library slug. If omitted, the prompt includes a library-detection phase."),
			mcp.Enum(library.Slugs()...),
		),
		mcp.WithNumber("maxTopics",
			mcp.Description("Maximum number of topic phrases to extract (3-8, default 5)"),
		),
	)
}

func queryTool() mcp.Tool {
	return mcp.NewTool(handlers.QueryToolName,
		mcp.WithDescription("Fetch documentation snippets for an AntV library, narrowed by topic and token budget. Supports decomposed sub-tasks fetched concurrently. Call extract_viz_topics first to obtain library, topic and intent."),
		mcp.WithString("library",
			mcp.Required(),
			mcp.Description("Target library slug"),
			mcp.Enum(library.Slugs()...),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The original user question"),
		),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Comma-joined topic phrases extracted from the query"),
		),
		mcp.WithString("intent",
			mcp.Required(),
			mcp.Description("User intent: learn, implement, or solve"),
		),
		mcp.WithNumber("tokens",
			mcp.Description("Token budget for returned documentation (1000-20000, default 5000)"),
		),
		mcp.WithArray("subTasks",
			mcp.Description("Optional decomposed sub-tasks from extract_viz_topics, each with its own query and topic. Fetched concurrently, rendered in order."),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query":  map[string]any{"type": "string"},
					"topic":  map[string]any{"type": "string"},
					"intent": map[string]any{"type": "string"},
				},
				"required": []string{"query", "topic"},
			}),
		),
	)
}

// recovered wraps a tool handler so an internal panic surfaces as an
// error result instead of crossing the transport.
func recovered(name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (res *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("tool handler panicked", "tool", name, "panic", r)
				res = mcp.NewToolResultError(fmt.Sprintf("internal error: %v", r))
				err = nil
			}
		}()
		return h(ctx, req)
	}
}
