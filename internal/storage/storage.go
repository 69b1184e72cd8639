package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"taskflow/internal/task"
)

const selectTasksQuery = `
SELECT
  t.id, t.title, t.completed, t.priority, t.due_date, t.category_id,
  t.created_at, t.sort_order,
  c.name AS category_name
FROM tasks t
LEFT JOIN categories c ON c.id = t.category_id`

const selectCategoriesQuery = `
SELECT
  c.id, c.name, c.color,
  (SELECT COUNT(*) FROM tasks t WHERE t.category_id = c.id) AS task_count
FROM categories c`

type taskRow struct {
	ID           int64          `db:"id"`
	Title        string         `db:"title"`
	Completed    bool           `db:"completed"`
	Priority     string         `db:"priority"`
	DueDate      sql.NullString `db:"due_date"`
	CategoryID   sql.NullInt64  `db:"category_id"`
	CreatedAt    string         `db:"created_at"`
	SortOrder    int64          `db:"sort_order"`
	CategoryName sql.NullString `db:"category_name"`
}

type categoryRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	Color     string `db:"color"`
	TaskCount int    `db:"task_count"`
}

type Store struct {
	db  *sqlx.DB
	log *zap.Logger
	now func() time.Time
}

func Open(dbPath string, logger *zap.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sqlx.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: logger, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	color TEXT NOT NULL DEFAULT '` + task.DefaultColor + `'
);
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	priority TEXT NOT NULL DEFAULT 'medium',
	due_date TEXT DEFAULT NULL,
	category_id INTEGER DEFAULT NULL,
	created_at TEXT NOT NULL,
	sort_order INTEGER NOT NULL DEFAULT 0
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	return s.ensureTaskColumns()
}

// ensureTaskColumns upgrades databases created before a column existed.
func (s *Store) ensureTaskColumns() error {
	required := map[string]string{
		"category_id": "ALTER TABLE tasks ADD COLUMN category_id INTEGER DEFAULT NULL;",
		"sort_order":  "ALTER TABLE tasks ADD COLUMN sort_order INTEGER NOT NULL DEFAULT 0;",
	}
	var cols []struct {
		CID     int            `db:"cid"`
		Name    string         `db:"name"`
		Type    string         `db:"type"`
		NotNull int            `db:"notnull"`
		Default sql.NullString `db:"dflt_value"`
		PK      int            `db:"pk"`
	}
	if err := s.db.Select(&cols, `PRAGMA table_info(tasks);`); err != nil {
		return err
	}
	existing := map[string]struct{}{}
	for _, c := range cols {
		existing[c.Name] = struct{}{}
	}
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.Exec(alter); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ListTasks(ctx context.Context) ([]task.Task, error) {
	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, selectTasksQuery+` ORDER BY t.sort_order, t.id;`); err != nil {
		return nil, err
	}
	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, mapTaskRow(row))
	}
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, id int64) (task.Task, error) {
	return getTask(ctx, s.db, id)
}

func getTask(ctx context.Context, q sqlx.QueryerContext, id int64) (task.Task, error) {
	var row taskRow
	err := sqlx.GetContext(ctx, q, &row, selectTasksQuery+` WHERE t.id = ?;`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, task.ErrTaskNotFound
	}
	if err != nil {
		return task.Task{}, err
	}
	return mapTaskRow(row), nil
}

func (s *Store) CreateTask(ctx context.Context, in task.NewTask) (task.Task, error) {
	if err := in.Validate(); err != nil {
		return task.Task{}, err
	}
	now := s.now()
	var out task.Task
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if in.CategoryID != nil {
			if err := categoryExists(ctx, tx, *in.CategoryID); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (title, completed, priority, due_date, category_id, created_at, sort_order) VALUES (?, 0, ?, ?, ?, ?, ?);`,
			in.Title, string(in.Priority), formatDue(in.DueDate), nullInt(in.CategoryID), now.UTC().Format(time.RFC3339Nano), now.UnixMilli())
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		out, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return task.Task{}, err
	}
	s.log.Debug("task created", zap.Int64("task_id", out.ID))
	return out, nil
}

func (s *Store) UpdateTask(ctx context.Context, id int64, p task.Patch) (task.Task, error) {
	if err := p.Validate(); err != nil {
		return task.Task{}, err
	}
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, *p.Completed)
	}
	if p.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, string(*p.Priority))
	}
	if p.DueDateSet {
		sets = append(sets, "due_date = ?")
		args = append(args, formatDue(p.DueDate))
	}
	if p.CategoryIDSet {
		sets = append(sets, "category_id = ?")
		args = append(args, nullInt(p.CategoryID))
	}
	if p.Order != nil {
		sets = append(sets, "sort_order = ?")
		args = append(args, *p.Order)
	}
	args = append(args, id)

	var out task.Task
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if p.CategoryIDSet && p.CategoryID != nil {
			if err := categoryExists(ctx, tx, *p.CategoryID); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?;`, args...)
		if err != nil {
			return err
		}
		if err := expectRow(res, task.ErrTaskNotFound); err != nil {
			return err
		}
		out, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return task.Task{}, err
	}
	s.log.Debug("task updated", zap.Int64("task_id", id))
	return out, nil
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	if err := expectRow(res, task.ErrTaskNotFound); err != nil {
		return err
	}
	s.log.Debug("task deleted", zap.Int64("task_id", id))
	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]task.Category, error) {
	var rows []categoryRow
	if err := s.db.SelectContext(ctx, &rows, selectCategoriesQuery+` ORDER BY c.name;`); err != nil {
		return nil, err
	}
	out := make([]task.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapCategoryRow(row))
	}
	return out, nil
}

func getCategory(ctx context.Context, q sqlx.QueryerContext, id int64) (task.Category, error) {
	var row categoryRow
	err := sqlx.GetContext(ctx, q, &row, selectCategoriesQuery+` WHERE c.id = ?;`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Category{}, task.ErrCategoryNotFound
	}
	if err != nil {
		return task.Category{}, err
	}
	return mapCategoryRow(row), nil
}

func (s *Store) CreateCategory(ctx context.Context, in task.NewCategory) (task.Category, error) {
	if err := in.Validate(); err != nil {
		return task.Category{}, err
	}
	var out task.Category
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO categories (name, color) VALUES (?, ?);`, in.Name, in.Color)
		if err != nil {
			return uniqueName(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		out, err = getCategory(ctx, tx, id)
		return err
	})
	if err != nil {
		return task.Category{}, err
	}
	return out, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id int64, p task.CategoryPatch) (task.Category, error) {
	if err := p.Validate(); err != nil {
		return task.Category{}, err
	}
	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Color != nil {
		color := strings.TrimSpace(*p.Color)
		if color == "" {
			color = task.DefaultColor
		}
		sets = append(sets, "color = ?")
		args = append(args, color)
	}
	args = append(args, id)

	var out task.Category
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE categories SET `+strings.Join(sets, ", ")+` WHERE id = ?;`, args...)
		if err != nil {
			return uniqueName(err)
		}
		if err := expectRow(res, task.ErrCategoryNotFound); err != nil {
			return err
		}
		out, err = getCategory(ctx, tx, id)
		return err
	})
	if err != nil {
		return task.Category{}, err
	}
	return out, nil
}

// DeleteCategory removes the category and clears the reference on its tasks.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET category_id = NULL WHERE category_id = ?;`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?;`, id)
		if err != nil {
			return err
		}
		return expectRow(res, task.ErrCategoryNotFound)
	})
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	return tx.Commit()
}

func categoryExists(ctx context.Context, q sqlx.QueryerContext, id int64) error {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, `SELECT COUNT(*) FROM categories WHERE id = ?;`, id); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("category %d: %w", id, task.ErrCategoryNotFound)
	}
	return nil
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func uniqueName(err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return task.ErrCategoryExists
	}
	return err
}

func mapTaskRow(row taskRow) task.Task {
	t := task.Task{
		ID:        row.ID,
		Title:     row.Title,
		Completed: row.Completed,
		Priority:  task.Priority(row.Priority),
		Order:     row.SortOrder,
	}
	if t.Priority == "" {
		t.Priority = task.Medium
	}
	if row.DueDate.Valid {
		t.DueDate = task.ParseDueDate(row.DueDate.String)
	}
	if row.CategoryID.Valid {
		id := row.CategoryID.Int64
		t.CategoryID = &id
	}
	if row.CategoryName.Valid {
		t.Category = row.CategoryName.String
	}
	if created, err := time.Parse(time.RFC3339Nano, row.CreatedAt); err == nil {
		t.CreatedAt = created
	}
	return t
}

func mapCategoryRow(row categoryRow) task.Category {
	c := task.Category{
		ID:        row.ID,
		Name:      row.Name,
		Color:     row.Color,
		TaskCount: row.TaskCount,
	}
	if c.Color == "" {
		c.Color = task.DefaultColor
	}
	return c
}

// formatDue stores date-only values when the due time is local midnight so
// the calendar day survives a timezone change.
func formatDue(due *time.Time) sql.NullString {
	if due == nil {
		return sql.NullString{}
	}
	local := due.In(time.Local)
	if local.Hour() == 0 && local.Minute() == 0 && local.Second() == 0 && local.Nanosecond() == 0 {
		return sql.NullString{String: local.Format("2006-01-02"), Valid: true}
	}
	return sql.NullString{String: due.UTC().Format(time.RFC3339), Valid: true}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
