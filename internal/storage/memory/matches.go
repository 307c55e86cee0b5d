package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cory-johannsen/arena/internal/game/pvp"
)

// MatchStore holds PvP matches and enforces one open match per pair.
type MatchStore struct {
	mu      sync.RWMutex
	matches map[string]*pvp.Match
}

// NewMatchStore returns an empty MatchStore.
func NewMatchStore() *MatchStore {
	return &MatchStore{matches: make(map[string]*pvp.Match)}
}

func (s *MatchStore) openLocked(a, b string) *pvp.Match {
	key := pvp.PairKey(a, b)
	for _, m := range s.matches {
		if m.Status.Open() && pvp.PairKey(m.ChallengerID, m.OpponentID) == key {
			return m
		}
	}
	return nil
}

// Create stores m, or returns pvp.ErrDuplicateMatch when the pair has an open match.
func (s *MatchStore) Create(_ context.Context, m *pvp.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.Status.Open() && s.openLocked(m.ChallengerID, m.OpponentID) != nil {
		return pvp.ErrDuplicateMatch
	}
	s.matches[m.ID] = m.Clone()
	return nil
}

// Load returns a copy of the match, or pvp.ErrMatchNotFound.
func (s *MatchStore) Load(_ context.Context, id string) (*pvp.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, pvp.ErrMatchNotFound)
	}
	return m.Clone(), nil
}

// Save replaces the stored match.
func (s *MatchStore) Save(_ context.Context, m *pvp.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[m.ID]; !ok {
		return fmt.Errorf("match %s: %w", m.ID, pvp.ErrMatchNotFound)
	}
	s.matches[m.ID] = m.Clone()
	return nil
}

// FindOpen returns the open match between a and b, or pvp.ErrMatchNotFound.
func (s *MatchStore) FindOpen(_ context.Context, a, b string) (*pvp.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m := s.openLocked(a, b); m != nil {
		return m.Clone(), nil
	}
	return nil, pvp.ErrMatchNotFound
}

// ListOpen returns the open matches involving characterID, oldest first.
func (s *MatchStore) ListOpen(_ context.Context, characterID string) ([]*pvp.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*pvp.Match
	for _, m := range s.matches {
		if m.Status.Open() && m.IsParticipant(characterID) {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
