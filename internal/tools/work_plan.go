package tools

import (
	"context"

	"github.com/agentplan/agentplan/internal/plan"
	"github.com/mark3labs/mcp-go/mcp"
)

// WorkPlanTool handles the get_current_work_plan MCP tool — the rolling
// view of a project's hierarchy with completed subtrees collapsed.
type WorkPlanTool struct {
	store *plan.Store
}

// NewWorkPlanTool creates a WorkPlanTool.
func NewWorkPlanTool(store *plan.Store) *WorkPlanTool {
	return &WorkPlanTool{store: store}
}

// Definition returns the MCP tool definition for get_current_work_plan.
func (t *WorkPlanTool) Definition() mcp.Tool {
	return mcp.NewTool("get_current_work_plan",
		mcp.WithDescription(
			"Get the rolling work plan for a project: incomplete items shown in "+
				"full, fully-completed subtrees collapsed into one-line summaries. "+
				"Use this instead of listing everything — it keeps responses small.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project ID from get_project_id"),
		),
	)
}

// Handle processes the get_current_work_plan tool call.
func (t *WorkPlanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := req.GetString("project_id", "")
	if projectID == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}

	wp, err := t.store.WorkPlan(projectID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(wp), nil
}
