// Package memory provides in-process implementations of every arena store
// and sink. They are safe for concurrent use and intended for tests, the
// CLI simulator, and single-process deployments.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cory-johannsen/arena/internal/game/character"
)

// CharacterStore holds characters in a map.
type CharacterStore struct {
	mu    sync.RWMutex
	chars map[string]character.Character
}

// NewCharacterStore returns a store seeded with chars.
func NewCharacterStore(chars ...*character.Character) *CharacterStore {
	s := &CharacterStore{chars: make(map[string]character.Character, len(chars))}
	for _, c := range chars {
		s.chars[c.ID] = *c
	}
	return s
}

// Put inserts or replaces c.
func (s *CharacterStore) Put(c *character.Character) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chars[c.ID] = *c
}

// Load returns a copy of the character, or character.ErrNotFound.
func (s *CharacterStore) Load(_ context.Context, id string) (*character.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chars[id]
	if !ok {
		return nil, fmt.Errorf("character %s: %w", id, character.ErrNotFound)
	}
	return &c, nil
}

// Save applies u to the stored character.
func (s *CharacterStore) Save(_ context.Context, id string, u character.Update) error {
	if err := u.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chars[id]
	if !ok {
		return fmt.Errorf("character %s: %w", id, character.ErrNotFound)
	}
	u.Apply(&c)
	s.chars[id] = c
	return nil
}
