package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS scripts (
    id         TEXT PRIMARY KEY,
    source     TEXT NOT NULL,
    updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps scripts in a single table of a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &IOError{Op: "open", ID: path, Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &IOError{Op: "open", ID: path, Err: err}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, &IOError{Op: "migrate", ID: path, Err: err}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, updated_at, length(CAST(source AS BLOB)) FROM scripts ORDER BY id`)
	if err != nil {
		return nil, &IOError{Op: "list", Err: err}
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var (
			entry   Entry
			updated int64
		)
		if err := rows.Scan(&entry.ID, &updated, &entry.Size); err != nil {
			return nil, &IOError{Op: "list", Err: err}
		}
		entry.ModTime = time.Unix(0, updated)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, &IOError{Op: "list", Err: err}
	}
	return out, nil
}

func (s *SQLiteStore) Stat(ctx context.Context, id string) (Entry, error) {
	if err := ValidateID(id); err != nil {
		return Entry{}, err
	}
	entry := Entry{ID: id}
	var updated int64
	err := s.db.QueryRowContext(ctx,
		`SELECT updated_at, length(CAST(source AS BLOB)) FROM scripts WHERE id = ?`, id,
	).Scan(&updated, &entry.Size)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, notFound(id)
	}
	if err != nil {
		return Entry{}, &IOError{Op: "stat", ID: id, Err: err}
	}
	entry.ModTime = time.Unix(0, updated)
	return entry, nil
}

func (s *SQLiteStore) Read(ctx context.Context, id string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}
	var source string
	err := s.db.QueryRowContext(ctx, `SELECT source FROM scripts WHERE id = ?`, id).Scan(&source)
	if errors.Is(err, sql.ErrNoRows) {
		return "", notFound(id)
	}
	if err != nil {
		return "", &IOError{Op: "read", ID: id, Err: err}
	}
	return source, nil
}

func (s *SQLiteStore) Write(ctx context.Context, id, source string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO scripts (id, source, updated_at) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET source = excluded.source, updated_at = excluded.updated_at`,
		id, source, s.now().UnixNano())
	if err != nil {
		return &IOError{Op: "write", ID: id, Err: err}
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM scripts WHERE id = ?`, id)
	if err != nil {
		return &IOError{Op: "delete", ID: id, Err: err}
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound(id)
	}
	return nil
}
