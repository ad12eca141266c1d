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

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

var (
	ErrEmptyPath        = errors.New("storage: db path is empty")
	ErrNotPersisted     = errors.New("storage: record has no id")
	ErrAlreadyPersisted = errors.New("storage: record already has an id")
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Storable is the contract a record type fulfils to be saved, listed,
// updated and deleted by a Store. The store never looks at the record's
// fields; it only executes the statements the record hands it.
type Storable interface {
	InsertStatement() (string, []any)
	UpdateStatement() (string, []any)
	SelectAllSQL() string
	DeleteSQL() string
	Persisted() bool
	SetID(id int64)
	Scan(row Scanner) error
}

// storablePtr lets GetAll and Delete build zero values of T.
type storablePtr[T any] interface {
	*T
	Storable
}

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, ErrEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	log.Debug().Str("path", dbPath).Msg("database opened")
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// EnsureSchema creates missing tables and columns. Safe to call on every
// start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, tasksDDL); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	return s.ensureColumns(ctx, "tasks", taskColumns)
}

// ensureColumns adds columns that databases created by older builds lack.
func (s *Store) ensureColumns(ctx context.Context, table string, required map[string]string) error {
	existing := map[string]struct{}{}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s);`, table))
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			rows.Close()
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for col, def := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		alter := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s;`, table, col, def)
		if _, err := s.db.ExecContext(ctx, alter); err != nil {
			return fmt.Errorf("add column %s.%s: %w", table, col, err)
		}
		log.Info().Str("table", table).Str("column", col).Msg("added missing column")
	}
	return nil
}

// Save inserts rec and records the identity the database assigned to it.
func (s *Store) Save(ctx context.Context, rec Storable) error {
	if rec.Persisted() {
		return ErrAlreadyPersisted
	}
	query, args := rec.InsertStatement()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert: read id: %w", err)
	}
	rec.SetID(id)
	log.Debug().Int64("id", id).Msg("record saved")
	return nil
}

func (s *Store) Update(ctx context.Context, rec Storable) error {
	if !rec.Persisted() {
		return ErrNotPersisted
	}
	query, args := rec.UpdateStatement()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

// GetAll runs T's select statement and returns every row in the order the
// statement defines.
func GetAll[T any, P storablePtr[T]](ctx context.Context, s *Store) ([]T, error) {
	var zero T
	rows, err := s.db.QueryContext(ctx, P(&zero).SelectAllSQL())
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var item T
		if err := P(&item).Scan(rows); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the T with the given id. A missing id is not an error.
func Delete[T any, P storablePtr[T]](ctx context.Context, s *Store, id int64) error {
	var zero T
	if _, err := s.db.ExecContext(ctx, P(&zero).DeleteSQL(), id); err != nil {
		return fmt.Errorf("delete %d: %w", id, err)
	}
	log.Debug().Int64("id", id).Msg("record deleted")
	return nil
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
		Path:   filepath.ToSlash(path),
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
