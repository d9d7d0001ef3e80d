package tools

import (
	"context"

	"github.com/agentplan/agentplan/internal/plan"
	"github.com/mark3labs/mcp-go/mcp"
)

// CreateItemTool handles the create_work_item MCP tool.
type CreateItemTool struct {
	store *plan.Store
}

// NewCreateItemTool creates a CreateItemTool.
func NewCreateItemTool(store *plan.Store) *CreateItemTool {
	return &CreateItemTool{store: store}
}

// Definition returns the MCP tool definition for create_work_item.
func (t *CreateItemTool) Definition() mcp.Tool {
	return mcp.NewTool("create_work_item",
		mcp.WithDescription(
			"Create a new work item in a project's hierarchy. Nesting rules: "+
				"project is a root; phase goes under a project; task goes under a "+
				"project or phase; subtask goes under a phase or task.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project ID this work item belongs to"),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("The type of work item to create"),
			mcp.Enum("project", "phase", "task", "subtask"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The title of the work item"),
		),
		mcp.WithString("description",
			mcp.Description("Optional detailed description"),
		),
		mcp.WithString("notes",
			mcp.Description("Optional free-form notes"),
		),
		mcp.WithNumber("parent_id",
			mcp.Description("Parent item ID (required for every non-project item)"),
		),
	)
}

// Handle processes the create_work_item tool call.
func (t *CreateItemTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := plan.CreateParams{
		ProjectID:   req.GetString("project_id", ""),
		Type:        plan.ItemType(req.GetString("type", "")),
		Title:       req.GetString("title", ""),
		Description: req.GetString("description", ""),
		Notes:       req.GetString("notes", ""),
	}
	if id, ok := int64Arg(req, "parent_id"); ok {
		p.ParentID = &id
	}

	item, err := t.store.Create(p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(item), nil
}
