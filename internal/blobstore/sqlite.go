package blobstore

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE IF NOT EXISTS objects (
	key          TEXT PRIMARY KEY,
	content_type TEXT NOT NULL,
	data         BLOB NOT NULL,
	created_at   INTEGER NOT NULL
);
`

// SQLite stores objects in a single database file. Access is serialized
// over one connection.
type SQLite struct {
	mu   sync.Mutex
	conn *sqlite.Conn
}

// OpenSQLite opens or creates the database at path. ":memory:" gives a
// private in-memory database.
func OpenSQLite(path string) (*SQLite, error) {
	flags := []sqlite.OpenFlags{sqlite.OpenReadWrite, sqlite.OpenCreate}
	if path == ":memory:" {
		flags = append(flags, sqlite.OpenMemory)
	} else {
		flags = append(flags, sqlite.OpenWAL)
	}
	conn, err := sqlite.OpenConn(path, flags...)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// with runs fn holding the connection, interrupting it when ctx is done.
func (s *SQLite) with(ctx context.Context, fn func(conn *sqlite.Conn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(nil)
	return fn(s.conn)
}

func (s *SQLite) Put(ctx context.Context, key, contentType string, data []byte) error {
	err := s.with(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			`INSERT INTO objects (key, content_type, data, created_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET content_type = excluded.content_type,
			 data = excluded.data, created_at = excluded.created_at`,
			&sqlitex.ExecOptions{Args: []any{key, contentType, data, time.Now().UnixMilli()}})
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, key string) (*Object, error) {
	var obj *Object
	err := s.with(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			`SELECT content_type, data, created_at FROM objects WHERE key = ?`,
			&sqlitex.ExecOptions{
				Args: []any{key},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					data, err := io.ReadAll(stmt.ColumnReader(1))
					if err != nil {
						return err
					}
					obj = &Object{
						Key:         key,
						ContentType: stmt.ColumnText(0),
						Data:        data,
						CreatedAt:   time.UnixMilli(stmt.ColumnInt64(2)),
					}
					return nil
				},
			})
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	if obj == nil {
		return nil, ErrNotFound
	}
	return obj, nil
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	var changed int
	err := s.with(ctx, func(conn *sqlite.Conn) error {
		if err := sqlitex.Execute(conn, `DELETE FROM objects WHERE key = ?`,
			&sqlitex.ExecOptions{Args: []any{key}}); err != nil {
			return err
		}
		changed = conn.Changes()
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	if changed == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) List(ctx context.Context) ([]Info, error) {
	out := []Info{}
	err := s.with(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			`SELECT key, content_type, length(data), created_at FROM objects`,
			&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
				out = append(out, Info{
					Key:         stmt.ColumnText(0),
					ContentType: stmt.ColumnText(1),
					Size:        stmt.ColumnInt64(2),
					CreatedAt:   time.UnixMilli(stmt.ColumnInt64(3)),
				})
				return nil
			}})
	})
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	sortInfos(out)
	return out, nil
}

func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}
