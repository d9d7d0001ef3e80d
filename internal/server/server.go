// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it loads configuration, opens the work
// item store, and injects it into the tools. No business logic lives
// here, only wiring.
package server

import (
	"fmt"
	"log"

	"github.com/agentplan/agentplan/internal/config"
	"github.com/agentplan/agentplan/internal/plan"
	"github.com/agentplan/agentplan/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools registered.
// This is the single place where all dependencies are resolved.
//
// The returned cleanup function closes the store's database connection
// and must be called on shutdown (typically via defer). It is always
// non-nil and safe to call.
func New(configPath string) (*server.MCPServer, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, noop, fmt.Errorf("loading config: %w", err)
	}

	store, err := plan.New(plan.Config{
		DataDir:        cfg.DataDir,
		SearchLimit:    cfg.SearchLimit,
		ChangelogLimit: cfg.ChangelogLimit,
	})
	if err != nil {
		return nil, noop, fmt.Errorf("opening work item store: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Printf("WARNING: work item store close: %v", err)
		}
	}

	s := server.NewMCPServer(
		"agentplan",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// ─── Register tools ───

	projectIDTool := tools.NewProjectIDTool()
	s.AddTool(projectIDTool.Definition(), projectIDTool.Handle)

	workPlanTool := tools.NewWorkPlanTool(store)
	s.AddTool(workPlanTool.Definition(), workPlanTool.Handle)

	createTool := tools.NewCreateItemTool(store)
	s.AddTool(createTool.Definition(), createTool.Handle)

	updateTool := tools.NewUpdateItemTool(store)
	s.AddTool(updateTool.Definition(), updateTool.Handle)

	completeTool := tools.NewCompleteItemTool(store)
	s.AddTool(completeTool.Definition(), completeTool.Handle)

	searchTool := tools.NewSearchItemsTool(store)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	changelogTool := tools.NewChangelogTool(store)
	s.AddTool(changelogTool.Definition(), changelogTool.Handle)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used when initialization fails
// before the store is opened.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use agentplan effectively.
func serverInstructions() string {
	return `You have access to agentplan, a hierarchical work planning MCP server.

## What agentplan is for

agentplan tracks long-running project plans as a tree of work items:
project → phase → task → subtask. It is built for coding agents that
work across many sessions: the plan persists on disk, and the rolling
work plan keeps your context small by collapsing finished work into
one-line summaries.

## Getting started

1. Call get_project_id with a short description of the workspace
   (e.g. the repository path or project name). The returned project_id
   is deterministic — the same description always yields the same ID —
   so use the same description every session.
2. Call get_current_work_plan with that project_id to see where things
   stand. Do this at the START of every session before planning work.

## Building a plan

- Create exactly one item of type "project" per project_id. It is the
  root of the tree and takes no parent_id.
- Nesting rules: phase under project; task under project or phase;
  subtask under phase or task. The tree is at most four levels deep.
- Every non-project item needs a parent_id. Items are ordered among
  siblings by order_index; new items go last by default.

## Working the plan

- Mark an item in_progress (update_work_item) when you start it and
  call complete_item when you finish. completed items can be reopened
  to in_progress if more work turns up.
- The rolling work plan collapses fully-completed subtrees into
  summaries like "3 of 3 tasks completed", so keep statuses accurate —
  that is what keeps the plan readable.
- Use search_items to find an item by title or description text when
  you do not have its ID; matches include a breadcrumb of ancestors.
- Use get_changelog to review the history of a project or a single
  item. Every create, field change and completion is recorded.

## Important rules

- Always pass the project_id on every call — items are scoped to one
  project and are invisible outside it.
- Do not invent item IDs; take them from create_work_item results,
  the work plan, or search_items.
- Keep titles short and put detail in description and notes.`
}
