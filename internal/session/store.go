// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/lowchat/internal/util"
)

// IDPrefix starts every session id.
const IDPrefix = "sess_"

// NewID returns a fresh session id: the prefix followed by the first eight
// characters of a random UUID.
func NewID() string {
	return IDPrefix + uuid.NewString()[:8]
}

// ValidID reports whether id looks like a session id this package produced.
func ValidID(id string) bool {
	return strings.HasPrefix(id, IDPrefix) && len(id) > len(IDPrefix)
}

// record is the on-disk representation.
type record struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Store loads, persists and rotates the session id. It is safe for
// concurrent use.
type Store struct {
	path    string
	persist bool
	newID   func() string
	now     func() time.Time

	mu        sync.Mutex
	id        string
	createdAt time.Time
}

// NewStore creates a store backed by path. When persist is false the id
// lives in memory only and path is ignored.
func NewStore(path string, persist bool) *Store {
	return &Store{
		path:    path,
		persist: persist && path != "",
		newID:   NewID,
		now:     time.Now,
	}
}

// Path returns the backing file path, or "" for an in-memory store.
func (s *Store) Path() string {
	if !s.persist {
		return ""
	}
	return s.path
}

// Load returns the current session id. On first use it reads the backing
// file; if the file is missing or unreadable a new id is created and saved.
func (s *Store) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id != "" {
		return s.id, nil
	}

	if s.persist {
		rec, err := s.read()
		switch {
		case err == nil:
			s.id, s.createdAt = rec.SessionID, rec.CreatedAt
			log.Debug().Str("session_id", s.id).Msg("session loaded")
			return s.id, nil
		case !errors.Is(err, os.ErrNotExist):
			log.Warn().Err(err).Str("path", s.path).Msg("discarding unreadable session file")
		}
	}

	return s.replaceLocked()
}

// Current returns the id in memory without touching the disk. It is empty
// before the first Load.
func (s *Store) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// CreatedAt returns when the current id was generated.
func (s *Store) CreatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createdAt
}

// Rotate discards the current id and persists a fresh one.
func (s *Store) Rotate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.id
	id, err := s.replaceLocked()
	log.Info().Str("old_session_id", old).Str("session_id", id).Msg("session rotated")
	return id, err
}

// replaceLocked generates and saves a new id. The new id is kept in memory
// even when saving fails.
func (s *Store) replaceLocked() (string, error) {
	s.id = s.newID()
	s.createdAt = s.now().UTC()

	if !s.persist {
		return s.id, nil
	}
	if err := s.write(); err != nil {
		return s.id, fmt.Errorf("failed to save session: %w", err)
	}
	return s.id, nil
}

func (s *Store) read() (record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return record{}, err
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return record{}, fmt.Errorf("failed to parse session file: %w", err)
	}
	if !ValidID(rec.SessionID) {
		return record{}, fmt.Errorf("invalid session id %q", rec.SessionID)
	}
	return rec, nil
}

func (s *Store) write() error {
	data, err := json.MarshalIndent(record{SessionID: s.id, CreatedAt: s.createdAt}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return util.AtomicWriteFile(s.path, data, 0600)
}
