package tools

import (
	"context"

	"github.com/agentplan/agentplan/internal/plan"
	"github.com/mark3labs/mcp-go/mcp"
)

// UpdateItemTool handles the update_work_item MCP tool. Only the
// enumerated mutable fields are accepted; id, project_id and type can
// never change through this tool.
type UpdateItemTool struct {
	store *plan.Store
}

// NewUpdateItemTool creates an UpdateItemTool.
func NewUpdateItemTool(store *plan.Store) *UpdateItemTool {
	return &UpdateItemTool{store: store}
}

// Definition returns the MCP tool definition for update_work_item.
func (t *UpdateItemTool) Definition() mcp.Tool {
	return mcp.NewTool("update_work_item",
		mcp.WithDescription(
			"Update fields of an existing work item. Every accepted change is "+
				"recorded in the changelog with its old and new value. Moving an "+
				"item (parent_id) re-validates the hierarchy rules.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("The ID of the work item to update"),
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project ID the item belongs to"),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("status",
			mcp.Description("New status"),
			mcp.Enum("not_started", "in_progress", "completed"),
		),
		mcp.WithString("notes",
			mcp.Description("New notes"),
		),
		mcp.WithNumber("parent_id",
			mcp.Description("New parent item ID (must satisfy the nesting rules)"),
		),
		mcp.WithNumber("order_index",
			mcp.Description("New ordering position among siblings"),
		),
	)
}

// Handle processes the update_work_item tool call.
func (t *UpdateItemTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := int64Arg(req, "id")
	if !ok {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	projectID := req.GetString("project_id", "")
	if projectID == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}

	var f plan.UpdateFields
	if v, ok := stringArg(req, "title"); ok {
		f.Title = &v
	}
	if v, ok := stringArg(req, "description"); ok {
		f.Description = &v
	}
	if v, ok := stringArg(req, "status"); ok {
		status := plan.Status(v)
		f.Status = &status
	}
	if v, ok := stringArg(req, "notes"); ok {
		f.Notes = &v
	}
	if v, ok := int64Arg(req, "parent_id"); ok {
		f.ParentID = &v
	}
	if v, ok := floatArg(req, "order_index"); ok {
		f.OrderIndex = &v
	}

	item, err := t.store.Update(id, projectID, f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(item), nil
}
