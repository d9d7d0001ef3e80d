package tools

import (
	"context"

	"github.com/agentplan/agentplan/internal/plan"
	"github.com/mark3labs/mcp-go/mcp"
)

// CompleteItemTool handles the complete_item MCP tool.
type CompleteItemTool struct {
	store *plan.Store
}

// NewCompleteItemTool creates a CompleteItemTool.
func NewCompleteItemTool(store *plan.Store) *CompleteItemTool {
	return &CompleteItemTool{store: store}
}

// Definition returns the MCP tool definition for complete_item.
func (t *CompleteItemTool) Definition() mcp.Tool {
	return mcp.NewTool("complete_item",
		mcp.WithDescription(
			"Mark a work item as completed. Once every sibling in a subtree is "+
				"completed, the rolling work plan collapses that subtree into a "+
				"summary. Completing an already-completed item is a no-op.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("The ID of the work item to complete"),
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project ID the item belongs to"),
		),
	)
}

// Handle processes the complete_item tool call.
func (t *CompleteItemTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := int64Arg(req, "id")
	if !ok {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	projectID := req.GetString("project_id", "")
	if projectID == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}

	item, err := t.store.Complete(id, projectID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(item), nil
}
