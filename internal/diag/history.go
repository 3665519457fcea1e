package diag

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// ErrHistoryClosed is returned when operations are attempted on a closed
// history.
var ErrHistoryClosed = errors.New("history is closed")

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	QtcompatSchemaVersion int   `json:"qtcompat_schema_version"`
	CreatedAt             int64 `json:"created_at"`
}

// History persists resolution reports to a JSONL file, newest last.
type History struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// NewHistory opens the report history at path, creating file and parent
// directories if needed.
func NewHistory(path string) (*History, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	h := &History{
		path: path,
		file: file,
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if err := h.writeHeader(); err != nil {
			file.Close()
			return nil, err
		}
	}

	return h, nil
}

// writeHeader writes the schema version header to the file.
func (h *History) writeHeader() error {
	header := schemaHeader{
		QtcompatSchemaVersion: SchemaVersion,
		CreatedAt:             time.Now().Unix(),
	}
	data, err := json.Marshal(header)
	if err != nil {
		return err
	}
	_, err = h.file.Write(append(data, '\n'))
	return err
}

// Load reads all reports, oldest first. Malformed lines are skipped.
func (h *History) Load() ([]Report, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loadLocked()
}

func (h *History) loadLocked() ([]Report, error) {
	if h.closed || h.file == nil {
		return nil, ErrHistoryClosed
	}

	if _, err := h.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", h.path, err)
	}

	var reports []Report
	scanner := bufio.NewScanner(h.file)

	// Reports with long traces produce long lines
	const maxLineSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if lineNum == 1 {
			var header schemaHeader
			if err := json.Unmarshal(line, &header); err == nil && header.QtcompatSchemaVersion > 0 {
				if header.QtcompatSchemaVersion > SchemaVersion {
					return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
						header.QtcompatSchemaVersion, SchemaVersion)
				}
				continue
			}
			// Headerless file, fall through and try the line as a report
		}

		var r Report
		if err := json.Unmarshal(line, &r); err != nil {
			continue
		}
		if r.ID != "" {
			reports = append(reports, r)
		}
	}

	if err := scanner.Err(); err != nil {
		return reports, fmt.Errorf("error reading file: %w", err)
	}

	if _, err := h.file.Seek(0, io.SeekEnd); err != nil {
		return reports, err
	}

	return reports, nil
}

// Append adds a report to the history.
func (h *History) Append(r Report) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.file == nil {
		return ErrHistoryClosed
	}

	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if _, err := h.file.Write(append(data, '\n')); err != nil {
		return err
	}
	return h.file.Sync()
}

// Rewrite replaces the entire history file (used after prune/clear).
func (h *History) Rewrite(reports []Report) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rewriteLocked(reports)
}

func (h *History) rewriteLocked(reports []Report) error {
	if h.closed {
		return ErrHistoryClosed
	}

	if h.file != nil {
		if err := h.file.Close(); err != nil {
			return err
		}
		h.file = nil
	}

	backupPath := h.path + ".bak"
	if err := os.Rename(h.path, backupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	file, err := os.OpenFile(h.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		os.Rename(backupPath, h.path)
		return fmt.Errorf("failed to create new file: %w", err)
	}
	h.file = file

	if err := h.writeHeader(); err != nil {
		return err
	}

	for _, r := range reports {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := h.file.Write(append(data, '\n')); err != nil {
			return err
		}
	}

	if err := h.file.Sync(); err != nil {
		return err
	}

	os.Remove(backupPath)
	return nil
}

// Retain applies the retention rules: reports older than maxAge go first,
// then at most maxReports of the newest remainder are kept. Zero disables
// the respective limit. Kept reports come back oldest first.
func Retain(reports []Report, maxAge time.Duration, maxReports int) (kept, removed []Report) {
	if maxAge > 0 {
		cutoff := time.Now().Add(-maxAge)
		for _, r := range reports {
			if r.GeneratedAt.After(cutoff) {
				kept = append(kept, r)
			} else {
				removed = append(removed, r)
			}
		}
	} else {
		kept = append(kept, reports...)
	}

	if maxReports > 0 && len(kept) > maxReports {
		sort.SliceStable(kept, func(i, j int) bool {
			return kept[i].GeneratedAt.Before(kept[j].GeneratedAt)
		})
		removed = append(removed, kept[:len(kept)-maxReports]...)
		kept = kept[len(kept)-maxReports:]
	}

	return kept, removed
}

// Prune drops reports per the retention rules and returns the number of
// reports removed.
func (h *History) Prune(maxAge time.Duration, maxReports int) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	reports, err := h.loadLocked()
	if err != nil {
		return 0, err
	}

	kept, removed := Retain(reports, maxAge, maxReports)
	if len(removed) == 0 {
		return 0, nil
	}
	if err := h.rewriteLocked(kept); err != nil {
		return 0, err
	}
	return len(removed), nil
}

// Clear removes all stored reports.
func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rewriteLocked(nil)
}

// Close releases file handles and resources.
func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if h.file != nil {
		err := h.file.Close()
		h.file = nil
		return err
	}
	return nil
}
