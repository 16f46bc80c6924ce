/*************************************************************************
 * Copyright 2026 the servicenow-agent authors. All rights reserved.
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package history persists the record of submitted queries across sessions.
//
// The store is a single JSON file holding entries most-recent-first. Every
// append rewrites the whole file atomically; a missing or malformed file
// loads as an empty history rather than an error.
package history

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Ciscokidok/servicenow-agent/clilog"
	json "github.com/goccy/go-json"
	"github.com/gofrs/flock"
	"github.com/google/renameio"
)

const (
	// DefaultFileName is the history file name under the config directory.
	DefaultFileName = "history.json"

	configSubdir = "snowcli"
)

// Entry is one recorded query. Entries are never mutated after creation.
type Entry struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

// New stamps a fresh Entry for the given query.
func New(query string) Entry {
	return Entry{Query: query, Timestamp: time.Now()}
}

// Store owns the on-disk history file. A single Store instance expects to be
// the only writer within the process; cross-process writes are serialized by
// an advisory file lock.
type Store struct {
	path       string
	maxEntries int // 0 = unlimited
	lk         *flock.Flock

	mu      sync.Mutex
	entries []Entry
}

// NewStore returns a Store over the file at path. maxEntries caps retained
// history (oldest trimmed on append); 0 retains everything.
func NewStore(path string, maxEntries int) *Store {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &Store{
		path:       path,
		maxEntries: maxEntries,
		lk:         flock.New(path + ".lock"),
	}
}

// DefaultPath returns the per-user history file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configSubdir, DefaultFileName), nil
}

// Load seeds the in-memory sequence from disk. Absence and malformed data
// both yield an empty history; only I/O errors other than non-existence are
// returned.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.entries = nil
			return nil
		}
		return err
	}
	var entries []Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		clilog.Writer.Warnf("discarding malformed history file %v: %v", s.path, err)
		s.entries = nil
		return nil
	}
	s.entries = entries
	return nil
}

// Entries returns a copy of the in-memory sequence, most-recent-first.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Append prepends e and persists the full sequence. Prior entries keep their
// relative order; if a retention cap is set, the oldest entries beyond it are
// dropped before the write.
func (s *Store) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]Entry, 0, len(s.entries)+1)
	updated = append(updated, e)
	updated = append(updated, s.entries...)
	if s.maxEntries > 0 && len(updated) > s.maxEntries {
		updated = updated[:s.maxEntries]
	}

	if err := s.persist(updated); err != nil {
		return err
	}
	s.entries = updated
	return nil
}

// persist rewrites the history file. Caller holds s.mu.
func (s *Store) persist(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	if err := s.lk.Lock(); err != nil {
		return err
	}
	defer s.lk.Unlock()

	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	// write-then-rename so a crash mid-write cannot clobber prior history
	return renameio.WriteFile(s.path, b, 0o600)
}
