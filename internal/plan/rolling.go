package plan

import (
	"fmt"
	"sort"
)

// PlanNode is one node of the rolling work plan tree. A collapsed node
// carries only identity, status and a summary line; an expanded node
// carries its full detail and children.
type PlanNode struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Type        ItemType    `json:"type"`
	Status      Status      `json:"status"`
	Description string      `json:"description,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	Summary     string      `json:"summary,omitempty"`
	Children    []*PlanNode `json:"children,omitempty"`
}

// WorkPlan is the derived rolling view of one project's hierarchy:
// incomplete work shown in full, fully-completed subtrees collapsed into
// summaries, and items with unresolvable parents kept in a synthetic
// unassigned bucket so no work silently disappears.
type WorkPlan struct {
	ProjectID  string      `json:"project_id"`
	Items      []*PlanNode `json:"items"`
	Unassigned []*PlanNode `json:"unassigned,omitempty"`
}

// BuildWorkPlan derives the rolling work plan from the raw item list of
// one project. It is a pure computation: the same input always produces
// an identical tree.
//
// Rules: project roots are always included; a node whose entire subtree
// is completed collapses to a summary; a node with any non-completed
// descendant stays expanded even when the node itself is completed, so
// unfinished work is never hidden. Siblings sort by order_index
// ascending, ties broken by id.
func BuildWorkPlan(projectID string, items []WorkItem) *WorkPlan {
	b := &planBuilder{
		byID:     make(map[int64]*WorkItem, len(items)),
		children: make(map[int64][]*WorkItem, len(items)),
	}
	for i := range items {
		b.byID[items[i].ID] = &items[i]
	}

	var roots, orphans []*WorkItem
	for i := range items {
		it := &items[i]
		switch {
		case it.ParentID == nil && it.Type == TypeProject:
			roots = append(roots, it)
		case it.ParentID == nil:
			// Non-project item without a parent: raw state the validator
			// would reject, surfaced rather than dropped.
			orphans = append(orphans, it)
		case b.byID[*it.ParentID] == nil:
			orphans = append(orphans, it)
		default:
			b.children[*it.ParentID] = append(b.children[*it.ParentID], it)
		}
	}
	sortSiblings(roots)
	sortSiblings(orphans)
	for id := range b.children {
		sortSiblings(b.children[id])
	}

	plan := &WorkPlan{ProjectID: projectID, Items: []*PlanNode{}}
	for _, r := range roots {
		plan.Items = append(plan.Items, b.render(r))
	}
	for _, o := range orphans {
		plan.Unassigned = append(plan.Unassigned, b.render(o))
	}
	return plan
}

type planBuilder struct {
	byID     map[int64]*WorkItem
	children map[int64][]*WorkItem
}

// render produces the plan node for an item: a summary when the whole
// subtree is completed, an expanded node otherwise.
func (b *planBuilder) render(it *WorkItem) *PlanNode {
	if b.subtreeDone(it) {
		return &PlanNode{
			ID:      it.ID,
			Title:   it.Title,
			Type:    it.Type,
			Status:  it.Status,
			Summary: summaryText(b.children[it.ID]),
		}
	}

	node := &PlanNode{
		ID:          it.ID,
		Title:       it.Title,
		Type:        it.Type,
		Status:      it.Status,
		Description: derefString(it.Description),
		Notes:       derefString(it.Notes),
	}
	for _, child := range b.children[it.ID] {
		node.Children = append(node.Children, b.render(child))
	}
	return node
}

// subtreeDone reports whether the item and every descendant is completed.
func (b *planBuilder) subtreeDone(it *WorkItem) bool {
	if it.Status != StatusCompleted {
		return false
	}
	for _, child := range b.children[it.ID] {
		if !b.subtreeDone(child) {
			return false
		}
	}
	return true
}

// summaryText renders the completion line for a collapsed subtree. All
// children are completed when this is called.
func summaryText(children []*WorkItem) string {
	if len(children) == 0 {
		return "completed"
	}
	return fmt.Sprintf("%d of %d %s completed", len(children), len(children), childNoun(children))
}

// childNoun picks the plural noun for a summary line: the children's
// common type when they share one, "items" for a mixed set.
func childNoun(children []*WorkItem) string {
	typ := children[0].Type
	for _, c := range children[1:] {
		if c.Type != typ {
			return "items"
		}
	}
	return string(typ) + "s"
}

func sortSiblings(items []*WorkItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].OrderIndex != items[j].OrderIndex {
			return items[i].OrderIndex < items[j].OrderIndex
		}
		return items[i].ID < items[j].ID
	})
}
