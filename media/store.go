// Package media keeps attachment metadata in a SQLite database and imports
// it from an uploads directory, deriving the named size variants on the way.
package media

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"wbc/render"
)

const schema = `
CREATE TABLE IF NOT EXISTS attachments (
	id      INTEGER PRIMARY KEY,
	url     TEXT NOT NULL,
	alt     TEXT NOT NULL DEFAULT '',
	caption TEXT NOT NULL DEFAULT '',
	mime    TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS attachment_sizes (
	attachment_id INTEGER NOT NULL REFERENCES attachments(id) ON DELETE CASCADE,
	size          TEXT NOT NULL,
	url           TEXT NOT NULL,
	width         INTEGER NOT NULL DEFAULT 0,
	height        INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (attachment_id, size)
);
`

// Record is one attachment row with its size variants.
type Record struct {
	ID      int
	URL     string
	Alt     string
	Caption string
	MIME    string
	Sizes   map[string]string
}

// Store is a SQLite backed attachment catalog. A single connection guarded
// by a mutex is plenty for the lookup rates involved.
type Store struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	log  *zap.Logger
}

// Open opens or creates the catalog database at path. Use ":memory:" for an
// ephemeral store.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	flags := sqlite.OpenReadWrite | sqlite.OpenCreate | sqlite.OpenWAL
	if path == ":memory:" {
		flags = sqlite.OpenReadWrite | sqlite.OpenMemory
	}
	conn, err := sqlite.OpenConn(path, flags)
	if err != nil {
		return nil, fmt.Errorf("unable to open media database %s: %w", path, err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare media schema: %w", err)
	}
	return &Store{conn: conn, log: log.Named("media")}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Attachment implements render.MediaResolver. An unknown ID returns
// (nil, nil), the converter degrades such misses on its own.
func (s *Store) Attachment(ctx context.Context, id int) (*render.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var att *render.Attachment
	err := sqlitex.Execute(s.conn, `SELECT url, alt, caption, mime FROM attachments WHERE id=?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				att = &render.Attachment{
					URL:     stmt.ColumnText(0),
					Alt:     stmt.ColumnText(1),
					Caption: stmt.ColumnText(2),
					MIME:    stmt.ColumnText(3),
					Sizes:   map[string]string{},
				}
				return nil
			}})
	if err != nil {
		return nil, fmt.Errorf("attachment %d lookup: %w", id, err)
	}
	if att == nil {
		return nil, nil
	}

	err = sqlitex.Execute(s.conn, `SELECT size, url FROM attachment_sizes WHERE attachment_id=?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				att.Sizes[stmt.ColumnText(0)] = stmt.ColumnText(1)
				return nil
			}})
	if err != nil {
		return nil, fmt.Errorf("attachment %d sizes lookup: %w", id, err)
	}
	return att, nil
}

// Put inserts or replaces one attachment record together with its size rows.
func (s *Store) Put(ctx context.Context, rec *Record) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	release := sqlitex.Save(s.conn)
	defer release(&err)

	err = sqlitex.Execute(s.conn,
		`INSERT OR REPLACE INTO attachments (id, url, alt, caption, mime) VALUES (?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{rec.ID, rec.URL, rec.Alt, rec.Caption, rec.MIME}})
	if err != nil {
		return fmt.Errorf("unable to store attachment %d: %w", rec.ID, err)
	}

	err = sqlitex.Execute(s.conn, `DELETE FROM attachment_sizes WHERE attachment_id=?`,
		&sqlitex.ExecOptions{Args: []any{rec.ID}})
	if err != nil {
		return fmt.Errorf("unable to reset sizes for attachment %d: %w", rec.ID, err)
	}

	for size, url := range rec.Sizes {
		err = sqlitex.Execute(s.conn,
			`INSERT INTO attachment_sizes (attachment_id, size, url) VALUES (?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{rec.ID, size, url}})
		if err != nil {
			return fmt.Errorf("unable to store size %s for attachment %d: %w", size, rec.ID, err)
		}
	}
	return nil
}

// Count reports the number of cataloged attachments.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	err := sqlitex.Execute(s.conn, `SELECT COUNT(*) FROM attachments`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt(0)
			return nil
		}})
	if err != nil {
		return 0, fmt.Errorf("attachment count: %w", err)
	}
	return count, nil
}

// joinURL builds the public URL of an uploads file from the base URL and a
// slash separated relative path.
func joinURL(base, rel string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(rel, "/")
}
