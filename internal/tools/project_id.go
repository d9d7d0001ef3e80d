package tools

import (
	"context"

	"github.com/agentplan/agentplan/internal/plan"
	"github.com/mark3labs/mcp-go/mcp"
)

// ProjectIDTool handles the get_project_id MCP tool. It is stateless:
// the identity function is pure and touches no storage.
type ProjectIDTool struct{}

// NewProjectIDTool creates a ProjectIDTool.
func NewProjectIDTool() *ProjectIDTool {
	return &ProjectIDTool{}
}

// Definition returns the MCP tool definition for get_project_id.
func (t *ProjectIDTool) Definition() mcp.Tool {
	return mcp.NewTool("get_project_id",
		mcp.WithDescription(
			"Generate a consistent project ID from project information "+
				"(git remote URL or absolute project path). The same input always "+
				"yields the same ID. Call this once per conversation and pass the "+
				"ID to every other tool.",
		),
		mcp.WithString("project_info",
			mcp.Required(),
			mcp.Description("Git remote URL (preferred) or absolute path to the project root"),
		),
	)
}

// Handle processes the get_project_id tool call.
func (t *ProjectIDTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info := req.GetString("project_info", "")
	identity, err := plan.Identify(info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(identity), nil
}
