package tools

import (
	"context"

	"github.com/agentplan/agentplan/internal/plan"
	"github.com/mark3labs/mcp-go/mcp"
)

// ChangelogTool handles the get_changelog MCP tool. It is the read
// side of the audit trail; the write side is internal to the store.
type ChangelogTool struct {
	store *plan.Store
}

// NewChangelogTool creates a ChangelogTool.
func NewChangelogTool(store *plan.Store) *ChangelogTool {
	return &ChangelogTool{store: store}
}

// Definition returns the MCP tool definition for get_changelog.
func (t *ChangelogTool) Definition() mcp.Tool {
	return mcp.NewTool("get_changelog",
		mcp.WithDescription(
			"Read the audit trail of a project, oldest first. Every create, "+
				"field change and completion is recorded. Pass work_item_id to "+
				"narrow the trail to a single item.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project ID whose changelog to read"),
		),
		mcp.WithNumber("work_item_id",
			mcp.Description("Restrict to entries for this work item"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max entries to return (default: 100)"),
		),
	)
}

// Handle processes the get_changelog tool call.
func (t *ChangelogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := req.GetString("project_id", "")
	if projectID == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}

	var (
		entries []plan.ChangelogEntry
		err     error
	)
	if itemID, ok := int64Arg(req, "work_item_id"); ok {
		entries, err = t.store.ChangelogForItem(itemID, projectID)
	} else {
		limit, _ := int64Arg(req, "limit")
		entries, err = t.store.ChangelogForProject(projectID, int(limit))
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No changelog entries found."), nil
	}
	return jsonResult(entries), nil
}
