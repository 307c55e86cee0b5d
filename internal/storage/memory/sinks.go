package memory

import (
	"context"
	"sync"

	"github.com/cory-johannsen/arena/internal/game/quest"
)

// Wallet records granted gold and items per character.
type Wallet struct {
	mu    sync.Mutex
	gold  map[string]int
	items map[string]map[string]int
	// Fail, when non-nil, is returned by every grant.
	Fail error
}

// NewWallet returns an empty Wallet.
func NewWallet() *Wallet {
	return &Wallet{gold: make(map[string]int), items: make(map[string]map[string]int)}
}

// GrantGold adds amount to the character's gold.
func (w *Wallet) GrantGold(_ context.Context, characterID string, amount int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Fail != nil {
		return w.Fail
	}
	w.gold[characterID] += amount
	return nil
}

// GrantItem adds one of itemID to the character's inventory.
func (w *Wallet) GrantItem(_ context.Context, characterID, itemID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Fail != nil {
		return w.Fail
	}
	if w.items[characterID] == nil {
		w.items[characterID] = make(map[string]int)
	}
	w.items[characterID][itemID]++
	return nil
}

// Gold returns the character's gold.
func (w *Wallet) Gold(characterID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gold[characterID]
}

// Items returns a copy of the character's item counts.
func (w *Wallet) Items(characterID string) map[string]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]int, len(w.items[characterID]))
	for k, v := range w.items[characterID] {
		out[k] = v
	}
	return out
}

// QuestLog tracks quest assignments and advances kill objectives.
type QuestLog struct {
	mu          sync.Mutex
	assignments map[string][]quest.Assignment
	kills       []Kill
}

// Kill is one recorded NotifyKill call.
type Kill struct {
	CharacterID string
	Target      string
	Count       int
}

// NewQuestLog returns an empty QuestLog.
func NewQuestLog() *QuestLog {
	return &QuestLog{assignments: make(map[string][]quest.Assignment)}
}

// Assign gives a quest to a character.
func (q *QuestLog) Assign(a quest.Assignment) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.assignments[a.CharacterID] = append(q.assignments[a.CharacterID], a)
}

// NotifyKill advances every matching in-progress kill objective of the character.
func (q *QuestLog) NotifyKill(_ context.Context, characterID, target string, count int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.kills = append(q.kills, Kill{CharacterID: characterID, Target: target, Count: count})
	list := q.assignments[characterID]
	for i, a := range list {
		if next, ok := quest.ApplyKill(a, target, count); ok {
			list[i] = next
		}
	}
	return nil
}

// Assignments returns a copy of the character's assignments.
func (q *QuestLog) Assignments(characterID string) []quest.Assignment {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]quest.Assignment(nil), q.assignments[characterID]...)
}

// Kills returns every NotifyKill call received.
func (q *QuestLog) Kills() []Kill {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Kill(nil), q.kills...)
}
