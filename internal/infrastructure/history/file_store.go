package history

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/ports"
)

// FileStore appends history records to a jsonl file.
type FileStore struct {
	path       string
	maxEntries int
	mu         sync.Mutex
}

// NewFileStore keeps at most maxEntries records in the file at path.
func NewFileStore(path string, maxEntries int) *FileStore {
	if maxEntries <= 0 {
		maxEntries = domain.DefaultHistoryMaxEntries
	}
	return &FileStore{path: path, maxEntries: maxEntries}
}

// Append writes one line and rewrites the file once it outgrows maxEntries.
func (f *FileStore) Append(_ context.Context, record domain.HistoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.SecureFilePermissions)
	if err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		file.Close()
		return err
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return f.prune()
}

func (f *FileStore) prune() error {
	records, err := f.load()
	if err != nil || len(records) <= f.maxEntries {
		return err
	}
	var buf bytes.Buffer
	for _, rec := range records[len(records)-f.maxEntries:] {
		data, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return os.WriteFile(f.path, buf.Bytes(), domain.SecureFilePermissions)
}

// Recent returns up to limit records, newest first.
func (f *FileStore) Recent(_ context.Context, limit int) ([]domain.HistoryRecord, error) {
	return f.filter("", limit)
}

// Search returns records whose input contains term, newest first.
func (f *FileStore) Search(_ context.Context, term string, limit int) ([]domain.HistoryRecord, error) {
	return f.filter(term, limit)
}

func (f *FileStore) filter(term string, limit int) ([]domain.HistoryRecord, error) {
	f.mu.Lock()
	records, err := f.load()
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var out []domain.HistoryRecord
	for i := len(records) - 1; i >= 0; i-- {
		if term != "" && !strings.Contains(records[i].Input, term) {
			continue
		}
		out = append(out, records[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// load reads all entries in file order, skipping lines that do not decode.
func (f *FileStore) load() ([]domain.HistoryRecord, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var records []domain.HistoryRecord
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var rec domain.HistoryRecord
		if err := json.Unmarshal(line, &rec); err == nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Clear removes the history file.
func (f *FileStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

var _ ports.HistoryStore = (*FileStore)(nil)
