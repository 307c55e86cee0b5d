package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cory-johannsen/arena/internal/game/boss"
	"github.com/cory-johannsen/arena/internal/game/pve"
)

// BattleStore holds PvE battle records.
type BattleStore struct {
	mu      sync.RWMutex
	battles map[string]*pve.Battle
}

// NewBattleStore returns an empty BattleStore.
func NewBattleStore() *BattleStore {
	return &BattleStore{battles: make(map[string]*pve.Battle)}
}

// Create stores b, or returns pve.ErrBattleExists when its id is taken.
func (s *BattleStore) Create(_ context.Context, b *pve.Battle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.battles[b.ID]; ok {
		return fmt.Errorf("battle %s: %w", b.ID, pve.ErrBattleExists)
	}
	s.battles[b.ID] = b.Clone()
	return nil
}

// Load returns a copy of the battle, or pve.ErrBattleNotFound.
func (s *BattleStore) Load(_ context.Context, id string) (*pve.Battle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.battles[id]
	if !ok {
		return nil, fmt.Errorf("battle %s: %w", id, pve.ErrBattleNotFound)
	}
	return b.Clone(), nil
}

// Save replaces the stored battle.
func (s *BattleStore) Save(_ context.Context, b *pve.Battle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.battles[b.ID]; !ok {
		return fmt.Errorf("battle %s: %w", b.ID, pve.ErrBattleNotFound)
	}
	s.battles[b.ID] = b.Clone()
	return nil
}

// BossStateStore holds in-progress boss encounters.
type BossStateStore struct {
	mu     sync.RWMutex
	states map[string]*boss.BattleState
}

// NewBossStateStore returns an empty BossStateStore.
func NewBossStateStore() *BossStateStore {
	return &BossStateStore{states: make(map[string]*boss.BattleState)}
}

// Create stores st, or returns pve.ErrBattleExists when its id is taken.
func (s *BossStateStore) Create(_ context.Context, st *boss.BattleState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.states[st.ID]; ok {
		return fmt.Errorf("boss battle %s: %w", st.ID, pve.ErrBattleExists)
	}
	s.states[st.ID] = st.Clone()
	return nil
}

// Load returns a copy of the state, or pve.ErrBattleNotFound.
func (s *BossStateStore) Load(_ context.Context, id string) (*boss.BattleState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[id]
	if !ok {
		return nil, fmt.Errorf("boss battle %s: %w", id, pve.ErrBattleNotFound)
	}
	return st.Clone(), nil
}

// Save replaces the stored state.
func (s *BossStateStore) Save(_ context.Context, st *boss.BattleState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.states[st.ID]; !ok {
		return fmt.Errorf("boss battle %s: %w", st.ID, pve.ErrBattleNotFound)
	}
	s.states[st.ID] = st.Clone()
	return nil
}

// Delete removes the state. Deleting an unknown id is not an error.
func (s *BossStateStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, id)
	return nil
}
