// Package favorites keeps the user's favorite movies: an ordered list of
// ids and a parallel list of the full records, persisted together.
package favorites

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sync"

	"charm.land/log/v2"

	"github.com/Gaurav-Gosain/reelscout/movie"
	"github.com/Gaurav-Gosain/reelscout/storage"
)

// Storage keys for the two persisted collections.
const (
	IDsKey     = "favoriteMovies"
	DetailsKey = "favoriteMoviesData"
)

// Store is the favorites collection. Every mutation is written through to
// the backing storage before it returns.
type Store struct {
	mu      sync.Mutex
	kv      storage.Store
	logger  *log.Logger
	ids     []string
	details []movie.Record
}

// Open loads the favorites from kv. Unreadable or malformed payloads are
// logged and treated as empty.
func Open(kv storage.Store, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Store{kv: kv, logger: logger}

	s.ids = loadJSON[[]string](s, IDsKey)
	s.details = loadJSON[[]movie.Record](s, DetailsKey)
	return s
}

func loadJSON[T any](s *Store, key string) T {
	var out T
	raw, ok, err := s.kv.GetItem(key)
	if err != nil {
		s.logger.Error("Error loading favorites", "key", key, "err", err)
		return out
	}
	if !ok || raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.logger.Error("Error loading favorites", "key", key, "err", err)
		var zero T
		return zero
	}
	return out
}

// IsFavorite reports whether id is in the favorite-id list.
func (s *Store) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.ids, id)
}

// IDs returns a copy of the favorite ids in insertion order.
func (s *Store) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Entries returns a copy of the stored favorite records in insertion order.
func (s *Store) Entries() []movie.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]movie.Record, len(s.details))
	for i, r := range s.details {
		out[i] = r.Clone()
	}
	return out
}

// Movies returns the stored favorites normalized for display.
func (s *Store) Movies() []movie.Movie {
	return movie.NormalizeAll(s.Entries())
}

// Len returns the number of favorite ids.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Toggle flips the favorite status of id. Adding appends id and, unless an
// entry with the same id is already stored, a copy of rec. Removing drops
// id and every stored entry with that id. It reports the new status. When
// the save fails nothing changes and the previous status is returned.
func (s *Store) Toggle(id string, rec movie.Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.ids, id) {
		ids, details := s.withoutLocked(id)
		if err := s.commitLocked(ids, details); err != nil {
			return true, err
		}
		return false, nil
	}

	ids := append(slices.Clip(s.ids), id)
	details := s.details
	if !s.hasDetailsLocked(id) {
		details = append(slices.Clip(s.details), rec.Clone())
	}
	if err := s.commitLocked(ids, details); err != nil {
		return false, err
	}
	return true, nil
}

// Remove drops id from both collections.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(s.withoutLocked(id))
}

// Clear empties both collections.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(nil, nil)
}

// withoutLocked returns new slices with id removed; s is left untouched.
func (s *Store) withoutLocked(id string) ([]string, []movie.Record) {
	ids := make([]string, 0, len(s.ids))
	for _, existing := range s.ids {
		if existing != id {
			ids = append(ids, existing)
		}
	}
	details := make([]movie.Record, 0, len(s.details))
	for _, r := range s.details {
		if movie.IDOf(r) != id {
			details = append(details, r)
		}
	}
	return ids, details
}

func (s *Store) hasDetailsLocked(id string) bool {
	return slices.ContainsFunc(s.details, func(r movie.Record) bool {
		return movie.IDOf(r) == id
	})
}

// commitLocked writes both collections in one batch and installs them in
// memory only once the write succeeded.
func (s *Store) commitLocked(ids []string, details []movie.Record) error {
	if ids == nil {
		ids = []string{}
	}
	if details == nil {
		details = []movie.Record{}
	}

	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode favorite ids: %w", err)
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode favorite details: %w", err)
	}

	if err := s.kv.SetItems(map[string]string{
		IDsKey:     string(idsJSON),
		DetailsKey: string(detailsJSON),
	}); err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}

	s.ids = ids
	s.details = details
	return nil
}
