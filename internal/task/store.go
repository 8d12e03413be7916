package task

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	_ "modernc.org/sqlite"
)

// Store persists tasks in a single SQLite file.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the task database at path and runs the
// schema migration. A nil logger falls back to slog.Default.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create db directory")
		}
	}

	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}

	// WAL for one writer + many readers; busy_timeout avoids "database is
	// locked" flakiness under concurrent local use.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "set pragma")
		}
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			project TEXT NOT NULL DEFAULT '',
			done INTEGER NOT NULL DEFAULT 0,
			created_at_unixms INTEGER NOT NULL,
			completed_at_unixms INTEGER,
			seconds INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_done ON tasks(done, created_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st); err != nil {
			return errors.Wrap(err, "migrate")
		}
	}
	return nil
}

// Add inserts a new open task and returns it.
func (s *Store) Add(ctx context.Context, title, project string) (Task, error) {
	t := Task{
		ID:        uuid.NewString(),
		Title:     title,
		Project:   project,
		CreatedAt: time.Now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, project, done, created_at_unixms, seconds)
		 VALUES (?, ?, ?, 0, ?, 0)`,
		t.ID, t.Title, t.Project, t.CreatedAt.UnixMilli())
	if err != nil {
		return Task{}, errors.Wrap(err, "insert task")
	}
	s.logger.Debug("task added", "id", t.ID, "title", t.Title)
	return t, nil
}

// List returns all tasks, open ones first, oldest first within each group.
func (s *Store) List(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, project, done, created_at_unixms, completed_at_unixms, seconds
		 FROM tasks ORDER BY done ASC, created_at_unixms ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "list tasks")
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, errors.Wrap(rows.Err(), "list tasks")
}

// Get returns one task by id.
func (s *Store) Get(ctx context.Context, id string) (Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, project, done, created_at_unixms, completed_at_unixms, seconds
		 FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// Toggle flips a task between open and done, stamping or clearing the
// completion time, and returns the updated task.
func (s *Store) Toggle(ctx context.Context, id string) (Task, error) {
	now := time.Now().UnixMilli()
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET
			done = 1 - done,
			completed_at_unixms = CASE WHEN done = 0 THEN ? ELSE NULL END
		 WHERE id = ?`, now, id)
	if err != nil {
		return Task{}, errors.Wrap(err, "toggle task")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Task{}, errors.Errorf("toggle task: no task %s", id)
	}
	return s.Get(ctx, id)
}

// Delete removes a task.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete task")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Errorf("delete task: no task %s", id)
	}
	return nil
}

// AddSeconds books elapsed timer seconds against a task.
func (s *Store) AddSeconds(ctx context.Context, id string, seconds int64) error {
	if seconds <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET seconds = seconds + ? WHERE id = ?`, seconds, id)
	return errors.Wrap(err, "book time")
}

// Projects aggregates open/done counts per project name. Tasks without a
// project land under the empty name.
func (s *Store) Projects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT project,
			SUM(CASE WHEN done = 0 THEN 1 ELSE 0 END),
			SUM(CASE WHEN done = 1 THEN 1 ELSE 0 END)
		 FROM tasks GROUP BY project ORDER BY project`)
	if err != nil {
		return nil, errors.Wrap(err, "list projects")
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.Name, &p.Open, &p.Done); err != nil {
			return nil, errors.Wrap(err, "scan project")
		}
		out = append(out, p)
	}
	return out, errors.Wrap(rows.Err(), "list projects")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var t Task
	var done int
	var created int64
	var completed sql.NullInt64
	if err := row.Scan(&t.ID, &t.Title, &t.Project, &done, &created, &completed, &t.Seconds); err != nil {
		return Task{}, errors.Wrap(err, "scan task")
	}
	t.Done = done != 0
	t.CreatedAt = time.UnixMilli(created)
	if completed.Valid {
		t.CompletedAt = time.UnixMilli(completed.Int64)
	}
	return t, nil
}
