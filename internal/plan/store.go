package plan

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Config holds item store configuration.
type Config struct {
	DataDir        string
	SearchLimit    int
	ChangelogLimit int
}

// DefaultConfig returns the default configuration for the item store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:        filepath.Join(home, ".agentplan"),
		SearchLimit:    50,
		ChangelogLimit: 100,
	}
}

// Store is the durable item store backed by SQLite. It is the single
// source of truth for work items and changelog entries: every mutation
// runs in one transaction together with its audit records, so either
// both are durable or neither is. The database's transactional isolation
// is the only serialization point — the store holds no in-memory locks.
type Store struct {
	db  *sql.DB
	cfg Config
}

// dbtx is the subset of *sql.DB and *sql.Tx the store's helpers need, so
// reads and writes can run against either.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// New creates a Store with the given configuration. It creates the data
// directory if needed, opens SQLite with WAL mode, and runs the
// idempotent schema migration.
func New(cfg Config) (*Store, error) {
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = DefaultConfig().SearchLimit
	}
	if cfg.ChangelogLimit <= 0 {
		cfg.ChangelogLimit = DefaultConfig().ChangelogLimit
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, storagef(err, "create data dir")
	}

	dbPath := filepath.Join(cfg.DataDir, "tasks.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, storagef(err, "open database")
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, storagef(err, "pragma %q", p)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		return nil, storagef(err, "migration")
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS work_items (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id  TEXT NOT NULL,
			type        TEXT NOT NULL CHECK (type IN ('project', 'phase', 'task', 'subtask')),
			title       TEXT NOT NULL,
			description TEXT,
			status      TEXT NOT NULL DEFAULT 'not_started'
				CHECK (status IN ('not_started', 'in_progress', 'completed')),
			parent_id   INTEGER REFERENCES work_items(id),
			notes       TEXT,
			order_index REAL NOT NULL DEFAULT 1.0,
			created_at  TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_items_project ON work_items(project_id);
		CREATE INDEX IF NOT EXISTS idx_items_parent  ON work_items(parent_id);
		CREATE INDEX IF NOT EXISTS idx_items_status  ON work_items(status);

		CREATE TABLE IF NOT EXISTS changelog (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			work_item_id INTEGER NOT NULL,
			project_id   TEXT NOT NULL,
			action       TEXT NOT NULL,
			details      TEXT NOT NULL,
			created_at   TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_changelog_item    ON changelog(work_item_id);
		CREATE INDEX IF NOT EXISTS idx_changelog_project ON changelog(project_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

const itemColumns = "id, project_id, type, title, description, status, parent_id, notes, order_index, created_at, updated_at"

// ─── Mutations ───────────────────────────────────────────────────────────────

// Create validates and inserts a new work item. The order index is
// assigned as max(sibling order) + 10, or 1.0 when the item has no
// siblings — the gap leaves room for fractional reordering without
// rewriting siblings. The insert and its changelog entry commit
// atomically.
func (s *Store) Create(p CreateParams) (*WorkItem, error) {
	if strings.TrimSpace(p.ProjectID) == "" {
		return nil, invalidArgf("project_id is required")
	}
	if !p.Type.Valid() {
		return nil, invalidArgf("invalid item type %q", p.Type)
	}
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, invalidArgf("title must be non-empty")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, storagef(err, "begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	c := candidate{ProjectID: p.ProjectID, Type: p.Type, ParentID: p.ParentID}
	if err := validateHierarchy(c, txResolver(tx)); err != nil {
		return nil, err
	}

	orderIndex, err := nextOrderIndex(tx, p.ProjectID, p.ParentID)
	if err != nil {
		return nil, storagef(err, "assigning order index")
	}

	res, err := tx.Exec(`
		INSERT INTO work_items (project_id, type, title, description, status, parent_id, notes, order_index)
		VALUES (?, ?, ?, ?, 'not_started', ?, ?, ?)`,
		p.ProjectID, p.Type, title,
		nullableString(p.Description), p.ParentID, nullableString(p.Notes), orderIndex,
	)
	if err != nil {
		return nil, storagef(err, "inserting work item")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, storagef(err, "reading new item id")
	}

	item, err := getItem(tx, id, p.ProjectID)
	if err != nil {
		return nil, err
	}

	if err := appendChangelog(tx, id, p.ProjectID, ActionCreate, map[string]any{
		"type":      p.Type,
		"title":     title,
		"parent_id": p.ParentID,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, storagef(err, "commit create")
	}
	return item, nil
}

// Update applies a partial set of mutable fields to a work item. The
// hierarchy is re-validated when the parent changes, and one field-change
// changelog entry is written per changed field, capturing old and new
// values. Supplied values equal to the current ones are ignored.
func (s *Store) Update(id int64, projectID string, f UpdateFields) (*WorkItem, error) {
	if f.isEmpty() {
		return nil, invalidArgf("no updatable fields provided")
	}
	if f.Title != nil && strings.TrimSpace(*f.Title) == "" {
		return nil, invalidArgf("title must be non-empty")
	}
	if f.Status != nil && !f.Status.Valid() {
		return nil, invalidArgf("invalid status %q", *f.Status)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, storagef(err, "begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	existing, err := getItem(tx, id, projectID)
	if err != nil {
		return nil, err
	}

	if f.Status != nil {
		if err := validateTransition(existing.Status, *f.Status); err != nil {
			return nil, err
		}
	}
	if f.ParentID != nil {
		c := candidate{ID: id, ProjectID: projectID, Type: existing.Type, ParentID: f.ParentID}
		if err := validateHierarchy(c, txResolver(tx)); err != nil {
			return nil, err
		}
	}

	changes := fieldChanges(existing, f)
	if len(changes) == 0 {
		return existing, nil
	}

	set := make([]string, 0, len(changes)+1)
	args := make([]any, 0, len(changes)+2)
	for _, c := range changes {
		set = append(set, c.field+" = ?")
		args = append(args, c.value)
	}
	set = append(set, "updated_at = datetime('now')")
	args = append(args, id, projectID)

	if _, err := tx.Exec(
		"UPDATE work_items SET "+strings.Join(set, ", ")+" WHERE id = ? AND project_id = ?",
		args...,
	); err != nil {
		return nil, storagef(err, "updating work item %d", id)
	}

	for _, c := range changes {
		if err := appendChangelog(tx, id, projectID, ActionFieldChange, map[string]any{
			"field": c.field,
			"old":   c.old,
			"new":   c.new,
		}); err != nil {
			return nil, err
		}
	}

	item, err := getItem(tx, id, projectID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, storagef(err, "commit update")
	}
	return item, nil
}

// Complete marks a work item as completed. It records both the status
// field change and a dedicated complete changelog action. Completing an
// already-completed item is a no-op.
func (s *Store) Complete(id int64, projectID string) (*WorkItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, storagef(err, "begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	existing, err := getItem(tx, id, projectID)
	if err != nil {
		return nil, err
	}
	if existing.Status == StatusCompleted {
		return existing, nil
	}

	if _, err := tx.Exec(`
		UPDATE work_items SET status = ?, updated_at = datetime('now')
		WHERE id = ? AND project_id = ?`,
		StatusCompleted, id, projectID,
	); err != nil {
		return nil, storagef(err, "completing work item %d", id)
	}

	if err := appendChangelog(tx, id, projectID, ActionFieldChange, map[string]any{
		"field": "status",
		"old":   existing.Status,
		"new":   StatusCompleted,
	}); err != nil {
		return nil, err
	}
	if err := appendChangelog(tx, id, projectID, ActionComplete, map[string]any{
		"title": existing.Title,
	}); err != nil {
		return nil, err
	}

	item, err := getItem(tx, id, projectID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, storagef(err, "commit complete")
	}
	return item, nil
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// Get retrieves a work item scoped to a project. Items belonging to
// another project are reported as not found, preserving isolation.
func (s *Store) Get(id int64, projectID string) (*WorkItem, error) {
	return getItem(s.db, id, projectID)
}

// ListByProject returns every work item of a project ordered by
// order_index ascending, ties broken by id. This is the raw input for
// the rolling work plan.
func (s *Store) ListByProject(projectID string) ([]WorkItem, error) {
	rows, err := s.db.Query(
		"SELECT "+itemColumns+" FROM work_items WHERE project_id = ? ORDER BY order_index ASC, id ASC",
		projectID,
	)
	if err != nil {
		return nil, storagef(err, "listing project items")
	}
	return scanItems(rows)
}

// WorkPlan derives the rolling work plan for a project from the current
// store state.
func (s *Store) WorkPlan(projectID string) (*WorkPlan, error) {
	items, err := s.ListByProject(projectID)
	if err != nil {
		return nil, err
	}
	return BuildWorkPlan(projectID, items), nil
}

// Search finds work items whose title or description contains the query,
// case-insensitively, scoped to one project. Each match carries a
// breadcrumb of ancestor titles from the root project down to the item's
// immediate parent; the breadcrumb is partial when the chain does not
// fully resolve.
func (s *Store) Search(projectID, query string) ([]SearchMatch, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, invalidArgf("search query cannot be empty")
	}

	pattern := "%" + escapeLike(q) + "%"
	rows, err := s.db.Query(`
		SELECT `+itemColumns+` FROM work_items
		WHERE project_id = ?
		  AND (title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')
		ORDER BY order_index ASC, id ASC
		LIMIT ?`,
		projectID, pattern, pattern, s.cfg.SearchLimit,
	)
	if err != nil {
		return nil, storagef(err, "searching project items")
	}
	found, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}

	all, err := s.ListByProject(projectID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]WorkItem, len(all))
	for _, it := range all {
		byID[it.ID] = it
	}

	matches := make([]SearchMatch, 0, len(found))
	for _, it := range found {
		matches = append(matches, SearchMatch{Item: it, Breadcrumb: breadcrumb(it, byID)})
	}
	return matches, nil
}

// breadcrumb walks parent links collecting ancestor titles, root first.
// The walk stops at the first unresolvable ancestor and is bounded by the
// hierarchy depth limit, so malformed raw state cannot loop it.
func breadcrumb(it WorkItem, byID map[int64]WorkItem) []string {
	var titles []string
	cur := it
	for hops := 0; cur.ParentID != nil && hops < maxDepth; hops++ {
		parent, ok := byID[*cur.ParentID]
		if !ok {
			break
		}
		titles = append(titles, parent.Title)
		cur = parent
	}
	for i, j := 0, len(titles)-1; i < j; i, j = i+1, j-1 {
		titles[i], titles[j] = titles[j], titles[i]
	}
	return titles
}

// ─── Changelog ───────────────────────────────────────────────────────────────

// ChangelogForItem returns the audit trail of one work item, oldest
// first, ties broken by id for a stable order. The trail is scoped to
// the given project: entries for an item in another project are
// invisible, like the item itself.
func (s *Store) ChangelogForItem(workItemID int64, projectID string) ([]ChangelogEntry, error) {
	return s.queryChangelog(
		"SELECT id, work_item_id, project_id, action, details, created_at FROM changelog WHERE work_item_id = ? AND project_id = ? ORDER BY created_at ASC, id ASC",
		workItemID, projectID,
	)
}

// ChangelogForProject returns a project's audit trail, oldest first. A
// non-positive limit falls back to the configured default.
func (s *Store) ChangelogForProject(projectID string, limit int) ([]ChangelogEntry, error) {
	if limit <= 0 {
		limit = s.cfg.ChangelogLimit
	}
	return s.queryChangelog(
		"SELECT id, work_item_id, project_id, action, details, created_at FROM changelog WHERE project_id = ? ORDER BY created_at ASC, id ASC LIMIT ?",
		projectID, limit,
	)
}

func (s *Store) queryChangelog(query string, args ...any) ([]ChangelogEntry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storagef(err, "querying changelog")
	}
	defer func() { _ = rows.Close() }()

	var entries []ChangelogEntry
	for rows.Next() {
		var e ChangelogEntry
		if err := rows.Scan(&e.ID, &e.WorkItemID, &e.ProjectID, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			return nil, storagef(err, "scanning changelog entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storagef(err, "reading changelog rows")
	}
	return entries, nil
}

// appendChangelog writes one audit record inside the caller's
// transaction. It is never exposed outside store mutations.
func appendChangelog(q dbtx, itemID int64, projectID, action string, details any) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return storagef(err, "encoding changelog details")
	}
	if _, err := q.Exec(
		"INSERT INTO changelog (work_item_id, project_id, action, details) VALUES (?, ?, ?, ?)",
		itemID, projectID, action, string(payload),
	); err != nil {
		return storagef(err, "appending changelog entry")
	}
	return nil
}

// ─── Status transitions ──────────────────────────────────────────────────────

// statusTransitions lists the permitted next statuses per current status.
// Staying in the same status is always a no-op.
var statusTransitions = map[Status][]Status{
	StatusNotStarted: {StatusInProgress, StatusCompleted},
	StatusInProgress: {StatusNotStarted, StatusCompleted},
	StatusCompleted:  {StatusInProgress},
}

func validateTransition(cur, next Status) error {
	if cur == next {
		return nil
	}
	for _, allowed := range statusTransitions[cur] {
		if next == allowed {
			return nil
		}
	}
	return invalidArgf("invalid status transition from %q to %q", cur, next)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// txResolver returns a resolveFunc bound to the mutation's transaction,
// so hierarchy validation sees the same snapshot the write will use.
func txResolver(q dbtx) resolveFunc {
	return func(id int64) (*WorkItem, error) {
		row := q.QueryRow("SELECT "+itemColumns+" FROM work_items WHERE id = ?", id)
		it, err := scanItem(row)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return it, nil
	}
}

func getItem(q dbtx, id int64, projectID string) (*WorkItem, error) {
	row := q.QueryRow(
		"SELECT "+itemColumns+" FROM work_items WHERE id = ? AND project_id = ?",
		id, projectID,
	)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, notFoundf("work item %d not found in project %s", id, projectID)
	}
	if err != nil {
		return nil, storagef(err, "reading work item %d", id)
	}
	return it, nil
}

func scanItem(row *sql.Row) (*WorkItem, error) {
	var it WorkItem
	if err := row.Scan(
		&it.ID, &it.ProjectID, &it.Type, &it.Title, &it.Description,
		&it.Status, &it.ParentID, &it.Notes, &it.OrderIndex,
		&it.CreatedAt, &it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &it, nil
}

func scanItems(rows *sql.Rows) ([]WorkItem, error) {
	defer func() { _ = rows.Close() }()

	var items []WorkItem
	for rows.Next() {
		var it WorkItem
		if err := rows.Scan(
			&it.ID, &it.ProjectID, &it.Type, &it.Title, &it.Description,
			&it.Status, &it.ParentID, &it.Notes, &it.OrderIndex,
			&it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, storagef(err, "scanning work item")
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, storagef(err, "reading work item rows")
	}
	return items, nil
}

// nextOrderIndex computes the order index for a new sibling: 1.0 for the
// first child, max + 10 afterwards.
func nextOrderIndex(q dbtx, projectID string, parentID *int64) (float64, error) {
	var (
		count    int
		maxOrder float64
	)
	var row *sql.Row
	if parentID == nil {
		row = q.QueryRow(
			"SELECT COUNT(*), COALESCE(MAX(order_index), 0) FROM work_items WHERE project_id = ? AND parent_id IS NULL",
			projectID,
		)
	} else {
		row = q.QueryRow(
			"SELECT COUNT(*), COALESCE(MAX(order_index), 0) FROM work_items WHERE project_id = ? AND parent_id = ?",
			projectID, *parentID,
		)
	}
	if err := row.Scan(&count, &maxOrder); err != nil {
		return 0, err
	}
	if count == 0 {
		return 1.0, nil
	}
	return maxOrder + 10, nil
}

// change records one mutated field for the audit trail. The field name
// doubles as the column name.
type change struct {
	field    string
	value    any
	old, new any
}

// fieldChanges compares the requested fields against the current row and
// returns only the ones that actually change.
func fieldChanges(existing *WorkItem, f UpdateFields) []change {
	var changes []change

	if f.Title != nil {
		title := strings.TrimSpace(*f.Title)
		if title != existing.Title {
			changes = append(changes, change{"title", title, existing.Title, title})
		}
	}
	if f.Description != nil && *f.Description != derefString(existing.Description) {
		changes = append(changes, change{
			"description", nullableString(*f.Description),
			derefString(existing.Description), *f.Description,
		})
	}
	if f.Status != nil && *f.Status != existing.Status {
		changes = append(changes, change{"status", *f.Status, existing.Status, *f.Status})
	}
	if f.Notes != nil && *f.Notes != derefString(existing.Notes) {
		changes = append(changes, change{
			"notes", nullableString(*f.Notes),
			derefString(existing.Notes), *f.Notes,
		})
	}
	if f.ParentID != nil && (existing.ParentID == nil || *existing.ParentID != *f.ParentID) {
		changes = append(changes, change{"parent_id", *f.ParentID, existing.ParentID, *f.ParentID})
	}
	if f.OrderIndex != nil && *f.OrderIndex != existing.OrderIndex {
		changes = append(changes, change{"order_index", *f.OrderIndex, existing.OrderIndex, *f.OrderIndex})
	}
	return changes
}

// escapeLike escapes LIKE wildcards so user queries match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
