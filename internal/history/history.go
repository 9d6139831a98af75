// Package history records submitted searches so the TUI can offer them
// back, newest first.
//
// Entries live in an append-only JSONL file under the config directory.
// Several jlawgrep processes may run at once, so writes take an exclusive
// flock on a sidecar lock file; reads take a shared one.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/srndpty/j-law-grep/internal/api"
	apperrors "github.com/srndpty/j-law-grep/internal/errors"
)

// Entry is one submitted search.
type Entry struct {
	Query   string            `json:"query"`
	Mode    api.Mode          `json:"mode"`
	Filters map[string]string `json:"filters,omitempty"`
	At      time.Time         `json:"at"`
}

// Store reads and appends search history.
type Store struct {
	path string
	max  int
}

// NewStore creates a store backed by the given JSONL file.
// max bounds the number of entries kept on disk; 0 means no bound.
func NewStore(path string, max int) *Store {
	return &Store{path: path, max: max}
}

func (s *Store) lock() *flock.Flock {
	return flock.New(s.path + ".lock")
}

// Append records a submitted request. Failures are reported as warnings;
// callers are expected to log and continue, never to fail a search over
// history bookkeeping.
func (s *Store) Append(req api.SearchRequest) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return apperrors.HistoryError("failed to create history directory", err)
	}

	lk := s.lock()
	if err := lk.Lock(); err != nil {
		return apperrors.HistoryError("failed to lock history file", err)
	}
	defer func() { _ = lk.Unlock() }()

	entry := Entry{
		Query:   req.Q,
		Mode:    req.Mode,
		Filters: req.Filters,
		At:      time.Now().UTC(),
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return apperrors.HistoryError("failed to encode history entry", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return apperrors.HistoryError("failed to open history file", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return apperrors.HistoryError("failed to write history entry", err)
	}
	if err := f.Close(); err != nil {
		return apperrors.HistoryError("failed to close history file", err)
	}

	return s.compactLocked()
}

// Recent returns up to n entries, newest first, deduplicated by query
// text (the newest occurrence wins). n <= 0 returns everything.
func (s *Store) Recent(n int) ([]Entry, error) {
	lk := s.lock()
	if err := lk.RLock(); err != nil {
		return nil, apperrors.HistoryError("failed to lock history file", err)
	}
	defer func() { _ = lk.Unlock() }()

	entries, err := s.readLocked()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(entries))
	var out []Entry
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if seen[e.Query] {
			continue
		}
		seen[e.Query] = true
		out = append(out, e)
		if n > 0 && len(out) >= n {
			break
		}
	}
	return out, nil
}

// readLocked parses the JSONL file, skipping corrupt lines (a crash mid
// append leaves at most one).
func (s *Store) readLocked() ([]Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.HistoryError("failed to open history file", err)
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.HistoryError("failed to read history file", err)
	}
	return entries, nil
}

// compactLocked rewrites the file when it exceeds the bound, keeping the
// newest max entries. Must be called with the exclusive lock held.
func (s *Store) compactLocked() error {
	if s.max <= 0 {
		return nil
	}
	entries, err := s.readLocked()
	if err != nil {
		return err
	}
	if len(entries) <= s.max {
		return nil
	}

	keep := entries[len(entries)-s.max:]
	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return apperrors.HistoryError("failed to compact history", err)
	}
	w := bufio.NewWriter(f)
	for _, e := range keep {
		line, err := json.Marshal(e)
		if err != nil {
			_ = f.Close()
			return apperrors.HistoryError("failed to encode history entry", err)
		}
		_, _ = w.Write(line)
		_ = w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return apperrors.HistoryError("failed to compact history", err)
	}
	if err := f.Close(); err != nil {
		return apperrors.HistoryError("failed to compact history", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return apperrors.HistoryError("failed to replace history file", err)
	}
	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// String implements fmt.Stringer for log output.
func (e Entry) String() string {
	return fmt.Sprintf("%s (%s)", e.Query, e.Mode)
}
