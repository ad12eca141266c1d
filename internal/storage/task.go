package storage

import "database/sql"

const tasksDDL = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	completed BOOLEAN NOT NULL DEFAULT 0
);`

var taskColumns = map[string]string{
	"description": "TEXT",
	"completed":   "BOOLEAN NOT NULL DEFAULT 0",
}

// Task is a to-do item. ID is zero until the task has been saved.
type Task struct {
	ID          int64
	Title       string
	Description sql.NullString
	Completed   bool
}

func NewTask(title, description string) Task {
	t := Task{Title: title}
	if description != "" {
		t.Description = sql.NullString{String: description, Valid: true}
	}
	return t
}

func (t *Task) InsertStatement() (string, []any) {
	return `INSERT INTO tasks (title, description, completed) VALUES (?, ?, ?);`,
		[]any{t.Title, t.Description, boolToInt(t.Completed)}
}

func (t *Task) UpdateStatement() (string, []any) {
	return `UPDATE tasks SET title = ?, description = ?, completed = ? WHERE id = ?;`,
		[]any{t.Title, t.Description, boolToInt(t.Completed), t.ID}
}

// SelectAllSQL orders newest first so freshly added tasks surface at the top.
func (t *Task) SelectAllSQL() string {
	return `SELECT id, title, description, completed FROM tasks ORDER BY id DESC;`
}

func (t *Task) DeleteSQL() string {
	return `DELETE FROM tasks WHERE id = ?;`
}

func (t *Task) Persisted() bool { return t.ID != 0 }

func (t *Task) SetID(id int64) { t.ID = id }

func (t *Task) Scan(row Scanner) error {
	var completed int
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &completed); err != nil {
		return err
	}
	t.Completed = completed == 1
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
