package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cory-johannsen/arena/internal/game/rating"
)

// RatingStore holds one rating record per character.
type RatingStore struct {
	mu      sync.RWMutex
	records map[string]rating.Record
}

// NewRatingStore returns an empty RatingStore.
func NewRatingStore() *RatingStore {
	return &RatingStore{records: make(map[string]rating.Record)}
}

// Load returns the record and true, or nil and false when none exists.
func (s *RatingStore) Load(_ context.Context, characterID string) (*rating.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[characterID]
	if !ok {
		return nil, false, nil
	}
	return &rec, true, nil
}

// Save upserts rec.
func (s *RatingStore) Save(_ context.Context, rec rating.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.CharacterID] = rec
	return nil
}

// SaveResult upserts both records of a finished match under one lock.
func (s *RatingStore) SaveResult(_ context.Context, winner, loser rating.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[winner.CharacterID] = winner
	s.records[loser.CharacterID] = loser
	return nil
}

// Top returns up to limit records of season, highest rating first.
func (s *RatingStore) Top(_ context.Context, season string, limit int) ([]rating.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []rating.Record
	for _, rec := range s.records {
		if rec.Season == season {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].CharacterID < out[j].CharacterID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
