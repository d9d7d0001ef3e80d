// Package tools provides the MCP tool handlers for agentplan.
//
// Each tool follows the same pattern:
//   - A struct with its dependency (*plan.Store) injected via constructor
//   - Definition() returns the mcp.Tool schema
//   - Handle() processes the request and returns a result
//
// Handlers validate argument presence and shape; domain rules live in
// the plan package. Domain errors become tool error results, never
// protocol errors.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// int64Arg extracts an integer argument from a tool request (JSON
// numbers arrive as float64). The second result reports presence.
func int64Arg(req mcp.CallToolRequest, key string) (int64, bool) {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return 0, false
	}
	return int64(v), true
}

// floatArg extracts a float argument from a tool request.
func floatArg(req mcp.CallToolRequest, key string) (float64, bool) {
	v, ok := req.GetArguments()[key].(float64)
	return v, ok
}

// stringArg extracts a string argument, reporting presence so handlers
// can distinguish "absent" from "set to empty".
func stringArg(req mcp.CallToolRequest, key string) (string, bool) {
	v, ok := req.GetArguments()[key].(string)
	return v, ok
}

// jsonResult renders v as an indented JSON text result.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}
