package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Logger = zerolog.Nop()
	os.Exit(m.Run())
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func titles(tasks []Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestOpenCreatesDataDirAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "tasks.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()
	assert.FileExists(t, path)
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.EnsureSchema(ctx))
}

func TestSaveAssignsID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	task := NewTask("Buy milk", "")
	assert.False(t, task.Persisted())
	require.NoError(t, store.Save(ctx, &task))
	assert.True(t, task.Persisted())

	got, err := GetAll[Task](ctx, store)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, task.ID, got[0].ID)
	assert.Equal(t, "Buy milk", got[0].Title)
	assert.False(t, got[0].Completed)
	assert.False(t, got[0].Description.Valid)
}

func TestSaveRejectsPersistedRecord(t *testing.T) {
	store := openTestStore(t)
	task := Task{ID: 7, Title: "x"}
	assert.ErrorIs(t, store.Save(context.Background(), &task), ErrAlreadyPersisted)
}

func TestGetAllNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for _, title := range []string{"A", "B", "C"} {
		task := NewTask(title, "")
		require.NoError(t, store.Save(ctx, &task))
	}

	got, err := GetAll[Task](ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, titles(got))
}

func TestGetAllOnEmptyStore(t *testing.T) {
	got, err := GetAll[Task](context.Background(), openTestStore(t))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDescriptionRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	task := NewTask("X", "Y")
	require.NoError(t, store.Save(ctx, &task))

	got, err := GetAll[Task](ctx, store)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sql.NullString{String: "Y", Valid: true}, got[0].Description)
}

func TestUpdate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	task := NewTask("draft", "")
	require.NoError(t, store.Save(ctx, &task))

	task.Title = "final"
	task.Completed = true
	require.NoError(t, store.Update(ctx, &task))

	got, err := GetAll[Task](ctx, store)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "final", got[0].Title)
	assert.True(t, got[0].Completed)
}

func TestUpdateRequiresID(t *testing.T) {
	store := openTestStore(t)
	task := NewTask("new", "")
	assert.ErrorIs(t, store.Update(context.Background(), &task), ErrNotPersisted)
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	keep := NewTask("keep", "")
	drop := NewTask("drop", "")
	require.NoError(t, store.Save(ctx, &keep))
	require.NoError(t, store.Save(ctx, &drop))

	require.NoError(t, Delete[Task](ctx, store, drop.ID))

	got, err := GetAll[Task](ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, titles(got))
}

func TestDeleteMissingIDIsNoop(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, Delete[Task](context.Background(), store, 42))
}

func TestReopenKeepsTasks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	ctx := context.Background()

	first, err := Open(path)
	require.NoError(t, err)
	task := NewTask("persisted", "")
	require.NoError(t, first.Save(ctx, &task))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()
	got, err := GetAll[Task](ctx, second)
	require.NoError(t, err)
	assert.Equal(t, []string{"persisted"}, titles(got))
}

func TestEnsureSchemaAddsMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	db, err := sql.Open("sqlite", sqliteDSN(path))
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE tasks (id INTEGER PRIMARY KEY, title TEXT NOT NULL);`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO tasks (title) VALUES ('old');`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := GetAll[Task](context.Background(), store)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "old", got[0].Title)
	assert.False(t, got[0].Completed)
	assert.False(t, got[0].Description.Valid)
}

func TestOperationsFailAfterClose(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	task := NewTask("late", "")
	assert.Error(t, store.Save(context.Background(), &task))
	_, err = GetAll[Task](context.Background(), store)
	assert.Error(t, err)
}
