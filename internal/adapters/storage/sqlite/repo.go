package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/actionboard/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository stores devserver tasks.
type Repository struct {
	db *sql.DB
}

// Open opens (and migrates) the database at path.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a process-shared in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate ensures the schema exists.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			task TEXT NOT NULL,
			assignee TEXT,
			due_date TEXT,
			confidence REAL,
			status TEXT NOT NULL DEFAULT 'To Do',
			job_name TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// CreateTask inserts t and returns it with its assigned id and timestamps.
func (r *Repository) CreateTask(ctx context.Context, t domain.Task, now time.Time) (domain.Task, error) {
	if strings.TrimSpace(t.Task) == "" {
		return domain.Task{}, domain.ErrInvalidTaskText
	}
	if t.Status == "" {
		t.Status = domain.StatusTodo
	}
	if !t.Status.Valid() {
		return domain.Task{}, domain.ErrInvalidStatus
	}
	stamp := ts(now)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks(task, assignee, due_date, confidence, status, job_name, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Task, nullableString(t.Assignee), nullableString(t.DueDate), nullableFloat(t.Confidence), string(t.Status), t.JobName, stamp, stamp)
	if err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Task{}, fmt.Errorf("task id: %w", err)
	}
	t.ID = id
	t.CreatedAt = stamp
	t.UpdatedAt = stamp
	return t, nil
}

// GetTask loads one task.
func (r *Repository) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx, selectTaskColumns+` WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return task, err
}

// ListTasks returns tasks newest first, optionally filtered by exact status.
func (r *Repository) ListTasks(ctx context.Context, status domain.Status) ([]domain.Task, error) {
	query := selectTaskColumns
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

// UpdateTaskStatus sets one task status and returns the stored task.
func (r *Repository) UpdateTaskStatus(ctx context.Context, id int64, status domain.Status, now time.Time) (domain.Task, error) {
	if !status.Valid() {
		return domain.Task{}, domain.ErrInvalidStatus
	}
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`, string(status), ts(now), id)
	if err != nil {
		return domain.Task{}, fmt.Errorf("update task status: %w", err)
	}
	if err := translateNoRows(res); err != nil {
		return domain.Task{}, err
	}
	return r.GetTask(ctx, id)
}

// DeleteTask removes one task.
func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return translateNoRows(res)
}

const selectTaskColumns = `SELECT id, task, assignee, due_date, confidence, status, job_name, created_at, updated_at FROM tasks`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (domain.Task, error) {
	var (
		task       domain.Task
		assignee   sql.NullString
		dueDate    sql.NullString
		confidence sql.NullFloat64
		status     string
	)
	if err := s.Scan(&task.ID, &task.Task, &assignee, &dueDate, &confidence, &status, &task.JobName, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return domain.Task{}, err
	}
	task.Status = domain.Status(status)
	if assignee.Valid {
		task.Assignee = &assignee.String
	}
	if dueDate.Valid {
		task.DueDate = &dueDate.String
	}
	if confidence.Valid {
		task.Confidence = &confidence.Float64
	}
	return task, nil
}

// translateNoRows maps zero affected rows to ErrTaskNotFound.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
