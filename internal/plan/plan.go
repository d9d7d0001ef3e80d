// Package plan implements the hierarchical work-item engine for agentplan.
//
// It owns the SQLite-backed item store, the hierarchy validation rules,
// the rolling work plan projection, the project-scoped search, and the
// changelog audit trail. All state lives in a single database file; every
// mutation runs in one transaction together with its changelog entries,
// and every operation is scoped to exactly one project.
package plan

// ItemType is the kind of a work item in the hierarchy.
type ItemType string

// Work item types, ordered from root to leaf.
const (
	TypeProject ItemType = "project"
	TypePhase   ItemType = "phase"
	TypeTask    ItemType = "task"
	TypeSubtask ItemType = "subtask"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	switch t {
	case TypeProject, TypePhase, TypeTask, TypeSubtask:
		return true
	}
	return false
}

// Status is the completion state of a work item.
type Status string

// Work item statuses.
const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// WorkItem is one node of a project's hierarchy as persisted by the store.
type WorkItem struct {
	ID          int64    `json:"id"`
	ProjectID   string   `json:"project_id"`
	Type        ItemType `json:"type"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Status      Status   `json:"status"`
	ParentID    *int64   `json:"parent_id,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	OrderIndex  float64  `json:"order_index"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// ChangelogEntry is one immutable audit record. Entries are written by the
// store inside the same transaction as the mutation they describe and are
// never updated or deleted.
type ChangelogEntry struct {
	ID         int64  `json:"id"`
	WorkItemID int64  `json:"work_item_id"`
	ProjectID  string `json:"project_id"`
	Action     string `json:"action"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

// Changelog actions.
const (
	ActionCreate      = "create"
	ActionUpdate      = "update"
	ActionComplete    = "complete"
	ActionFieldChange = "field-change"
)

// CreateParams holds the input for creating a new work item.
type CreateParams struct {
	ProjectID   string   `json:"project_id"`
	Type        ItemType `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	ParentID    *int64   `json:"parent_id,omitempty"`
}

// UpdateFields enumerates the mutable fields of a work item. A nil field
// is left untouched. The identity fields (id, project_id, type) are not
// representable here, so an update cannot change them by construction.
type UpdateFields struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Status      *Status  `json:"status,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	ParentID    *int64   `json:"parent_id,omitempty"`
	OrderIndex  *float64 `json:"order_index,omitempty"`
}

// isEmpty reports whether no field is set.
func (f UpdateFields) isEmpty() bool {
	return f.Title == nil && f.Description == nil && f.Status == nil &&
		f.Notes == nil && f.ParentID == nil && f.OrderIndex == nil
}

// SearchMatch pairs a matching work item with its ancestor breadcrumb:
// the chain of titles from the root project down to the item's immediate
// parent. The breadcrumb is partial when an ancestor cannot be resolved.
type SearchMatch struct {
	Item       WorkItem `json:"item"`
	Breadcrumb []string `json:"breadcrumb"`
}
