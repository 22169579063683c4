package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolapsis/vizdocs/internal/library"
)

// schemaOf round-trips a tool's input schema through JSON, the form
// clients receive from tools/list.
func schemaOf(t *testing.T, tool mcp.Tool) map[string]any {
	t.Helper()
	raw, err := json.Marshal(tool.InputSchema)
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(raw, &schema))
	return schema
}

func properties(t *testing.T, schema map[string]any) map[string]any {
	t.Helper()
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok, "schema must declare properties")
	return props
}

func property(t *testing.T, props map[string]any, name string) map[string]any {
	t.Helper()
	p, ok := props[name].(map[string]any)
	require.True(t, ok, "property %q must be declared", name)
	return p
}

func requiredOf(schema map[string]any) []any {
	required, _ := schema["required"].([]any)
	return required
}

func slugsAsAny() []any {
	out := make([]any, 0, 6)
	for _, slug := range library.Slugs() {
		out = append(out, slug)
	}
	return out
}

func TestExtractToolSchema(t *testing.T) {
	t.Parallel()
	tool := extractTool()

	assert.Equal(t, "extract_viz_topics", tool.Name)

	schema := schemaOf(t, tool)
	assert.Equal(t, "object", schema["type"])
	assert.ElementsMatch(t, []any{"query"}, requiredOf(schema))

	props := properties(t, schema)
	assert.Equal(t, "string", property(t, props, "query")["type"])

	lib := property(t, props, "library")
	assert.Equal(t, "string", lib["type"])
	assert.Equal(t, slugsAsAny(), lib["enum"], "library enum must list exactly the registry slugs")

	assert.Equal(t, "number", property(t, props, "maxTopics")["type"])
}

func TestQueryToolSchema(t *testing.T) {
	t.Parallel()
	tool := queryTool()

	assert.Equal(t, "query_viz_docs", tool.Name)

	schema := schemaOf(t, tool)
	assert.Equal(t, "object", schema["type"])
	assert.ElementsMatch(t, []any{"library", "query", "topic", "intent"}, requiredOf(schema))

	props := properties(t, schema)
	lib := property(t, props, "library")
	assert.Equal(t, "string", lib["type"])
	assert.Equal(t, slugsAsAny(), lib["enum"])

	for _, name := range []string{"query", "topic", "intent"} {
		assert.Equal(t, "string", property(t, props, name)["type"])
	}
	assert.Equal(t, "number", property(t, props, "tokens")["type"])

	subTasks := property(t, props, "subTasks")
	assert.Equal(t, "array", subTasks["type"])

	items, ok := subTasks["items"].(map[string]any)
	require.True(t, ok, "subTasks must declare an item schema")
	assert.Equal(t, "object", items["type"])
	assert.ElementsMatch(t, []any{"query", "topic"}, items["required"])

	itemProps, ok := items["properties"].(map[string]any)
	require.True(t, ok)
	for _, name := range []string{"query", "topic", "intent"} {
		p, ok := itemProps[name].(map[string]any)
		require.True(t, ok, "sub-task property %q must be declared", name)
		assert.Equal(t, "string", p["type"])
	}
}

func TestRecovered_PanicBecomesErrorResult(t *testing.T) {
	t.Parallel()

	panicking := server.ToolHandlerFunc(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		panic("boom")
	})
	handler := recovered("test_tool", panicking)

	res, err := handler(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err, "a panic must not cross the transport as a Go error")
	require.NotNil(t, res)

	assert.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text := res.Content[0].(mcp.TextContent).Text
	assert.Contains(t, text, "internal error")
	assert.Contains(t, text, "boom")
}

func TestRecovered_PassesThroughOnSuccess(t *testing.T) {
	t.Parallel()

	handler := recovered("test_tool", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	})

	res, err := handler(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "ok", res.Content[0].(mcp.TextContent).Text)
}
