package tools

import (
	"context"

	"github.com/agentplan/agentplan/internal/plan"
	"github.com/mark3labs/mcp-go/mcp"
)

// SearchItemsTool handles the search_items MCP tool.
type SearchItemsTool struct {
	store *plan.Store
}

// NewSearchItemsTool creates a SearchItemsTool.
func NewSearchItemsTool(store *plan.Store) *SearchItemsTool {
	return &SearchItemsTool{store: store}
}

// Definition returns the MCP tool definition for search_items.
func (t *SearchItemsTool) Definition() mcp.Tool {
	return mcp.NewTool("search_items",
		mcp.WithDescription(
			"Search work items in a project by case-insensitive substring match "+
				"on title and description. Each match includes a breadcrumb of "+
				"ancestor titles from the root project down to its parent.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project ID to search within"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search for in item titles and descriptions"),
		),
	)
}

// Handle processes the search_items tool call.
func (t *SearchItemsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := req.GetString("project_id", "")
	if projectID == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}

	matches, err := t.store.Search(projectID, req.GetString("query", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(matches) == 0 {
		return mcp.NewToolResultText("No work items matched the query."), nil
	}
	return jsonResult(matches), nil
}
