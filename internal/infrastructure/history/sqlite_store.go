// Package history persists submitted lines across sessions. The primary store
// is a SQLite database; a JSON-lines file takes over when the database cannot
// be opened.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/pkg/filesystem"
	"github.com/doeshing/aicmd-go/internal/ports"
)

const schema = `CREATE TABLE IF NOT EXISTS history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	session_id TEXT,
	kind TEXT,
	input TEXT NOT NULL,
	backend TEXT,
	success INTEGER,
	exit_code INTEGER,
	duration_ms INTEGER
);`

// DefaultPath is ~/.aicmd/history.db.
func DefaultPath() string {
	return filesystem.AppPath("history.db")
}

// Open returns a SQLite store at path, or a FileStore next to it when the
// database is unusable. maxEntries bounds how many records are kept.
func Open(path string, maxEntries int, logger ports.Logger) ports.HistoryStore {
	if path == "" {
		path = DefaultPath()
	}
	path = filesystem.ExpandHome(path)

	store, err := NewSQLiteStore(path, maxEntries)
	if err == nil {
		return store
	}
	fallback := strings.TrimSuffix(path, filepath.Ext(path)) + ".jsonl"
	if logger != nil {
		logger.Warn("sqlite history unavailable, using jsonl file", map[string]interface{}{
			"path":     path,
			"fallback": fallback,
			"error":    err.Error(),
		})
	}
	return NewFileStore(fallback, maxEntries)
}

// SQLiteStore persists history in a SQLite database.
type SQLiteStore struct {
	db         *sql.DB
	path       string
	maxEntries int
	mu         sync.Mutex
}

// NewSQLiteStore creates (or opens) the database at path.
func NewSQLiteStore(path string, maxEntries int) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialise history schema: %w", err)
	}
	if maxEntries <= 0 {
		maxEntries = domain.DefaultHistoryMaxEntries
	}
	return &SQLiteStore{db: db, path: path, maxEntries: maxEntries}, nil
}

// Append inserts a record and prunes the oldest rows beyond maxEntries.
func (s *SQLiteStore) Append(ctx context.Context, record domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO history
		(timestamp, session_id, kind, input, backend, success, exit_code, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Timestamp.UTC().Format(time.RFC3339Nano),
		record.SessionID,
		string(record.Kind),
		record.Input,
		record.Backend,
		boolToInt(record.Success),
		record.ExitCode,
		record.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM history WHERE id NOT IN (SELECT id FROM history ORDER BY id DESC LIMIT ?)`,
		s.maxEntries)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	return s.query(ctx, "", limit)
}

// Search returns records whose input contains term, newest first.
func (s *SQLiteStore) Search(ctx context.Context, term string, limit int) ([]domain.HistoryRecord, error) {
	return s.query(ctx, term, limit)
}

func (s *SQLiteStore) query(ctx context.Context, term string, limit int) ([]domain.HistoryRecord, error) {
	builder := strings.Builder{}
	builder.WriteString("SELECT timestamp, session_id, kind, input, backend, success, exit_code, duration_ms FROM history")
	var args []interface{}
	if term != "" {
		builder.WriteString(" WHERE input LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(term)+"%")
	}
	builder.WriteString(" ORDER BY id DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var (
			rec     domain.HistoryRecord
			ts      string
			kind    string
			success int
		)
		if err := rows.Scan(&ts, &rec.SessionID, &kind, &rec.Input, &rec.Backend, &success, &rec.ExitCode, &rec.DurationMS); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			rec.Timestamp = t.Local()
		}
		rec.Kind = domain.TurnKind(kind)
		rec.Success = success == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM history")
	return err
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.HistoryStore = (*SQLiteStore)(nil)
