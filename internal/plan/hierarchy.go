package plan

// allowedParents maps each item type to the parent types it may nest
// under. Projects are roots and take no parent; subtasks are leaves and
// appear as a parent of nothing.
var allowedParents = map[ItemType][]ItemType{
	TypeProject: nil,
	TypePhase:   {TypeProject},
	TypeTask:    {TypeProject, TypePhase},
	TypeSubtask: {TypePhase, TypeTask},
}

// maxDepth is the maximum number of levels from a project root to a leaf.
const maxDepth = 4

// candidate describes the item whose placement is being validated. ID is
// zero for a not-yet-created item and non-zero when an existing item is
// being re-parented.
type candidate struct {
	ID        int64
	ProjectID string
	Type      ItemType
	ParentID  *int64
}

// resolveFunc looks up a work item by id in the current tree state. It
// returns (nil, nil) when no such item exists. The store passes a closure
// bound to the mutation's transaction so validation sees a consistent
// snapshot.
type resolveFunc func(id int64) (*WorkItem, error)

// validateHierarchy enforces the structural rules on a candidate
// placement. Checks run in order: nesting table, parent existence and
// project scope, then a bounded walk up the parent chain that must reach
// a parent-less project item within maxDepth levels. The walk's bound
// also rejects any would-be cycle (a chain through the candidate itself
// can never reach a root within the bound).
func validateHierarchy(c candidate, resolve resolveFunc) error {
	if c.ParentID == nil {
		if c.Type != TypeProject {
			return hierarchyErr(ReasonBadNesting, "%s items require a parent", c.Type)
		}
		return nil
	}
	if c.Type == TypeProject {
		return hierarchyErr(ReasonBadNesting, "project items cannot have a parent")
	}

	parent, err := resolve(*c.ParentID)
	if err != nil {
		return storagef(err, "resolving parent %d", *c.ParentID)
	}
	if parent == nil {
		return hierarchyErr(ReasonMissingParent, "parent item %d does not exist", *c.ParentID)
	}
	if parent.ProjectID != c.ProjectID {
		return hierarchyErr(ReasonCrossProject,
			"parent item %d belongs to a different project", parent.ID)
	}
	if !nestingAllowed(c.Type, parent.Type) {
		return hierarchyErr(ReasonBadNesting,
			"%s items cannot be children of %s items", c.Type, parent.Type)
	}

	// Bounded walk: the candidate occupies one level, each ancestor one
	// more. The chain must end at a parent-less project within maxDepth.
	depth := 1
	cur := parent
	for {
		depth++
		if depth > maxDepth {
			return hierarchyErr(ReasonDepthExceeded,
				"hierarchy exceeds the maximum depth of %d levels", maxDepth)
		}
		if cur.ParentID == nil {
			if cur.Type != TypeProject {
				return hierarchyErr(ReasonBadNesting,
					"root item %d is a %s, not a project", cur.ID, cur.Type)
			}
			return nil
		}
		next, err := resolve(*cur.ParentID)
		if err != nil {
			return storagef(err, "resolving ancestor %d", *cur.ParentID)
		}
		if next == nil {
			return hierarchyErr(ReasonMissingParent,
				"ancestor item %d does not exist", *cur.ParentID)
		}
		cur = next
	}
}

func nestingAllowed(child, parent ItemType) bool {
	for _, t := range allowedParents[child] {
		if t == parent {
			return true
		}
	}
	return false
}
