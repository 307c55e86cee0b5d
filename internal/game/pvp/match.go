// Package pvp coordinates ranked player-versus-player duels.
package pvp

import (
	"context"
	"errors"
	"time"

	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/rating"
	"github.com/cory-johannsen/arena/internal/game/skill"
)

var (
	// ErrMatchNotFound is returned by match stores for unknown ids or when no open match exists.
	ErrMatchNotFound = errors.New("match not found")
	// ErrSelfChallenge is returned when a character challenges itself.
	ErrSelfChallenge = errors.New("cannot challenge yourself")
	// ErrDuplicateMatch is returned when the pair already has a PENDING or ACTIVE match.
	ErrDuplicateMatch = errors.New("match already exists between these characters")
	// ErrMatchNotPending is returned when accepting a match that is not PENDING.
	ErrMatchNotPending = errors.New("match is not pending")
	// ErrMatchNotActive is returned for turns or forfeits on a match that is not ACTIVE.
	ErrMatchNotActive = errors.New("match is not active")
	// ErrNotParticipant is returned when the acting character is not in the match.
	ErrNotParticipant = errors.New("character is not part of this match")
	// ErrInvalidAction is returned for actions other than attack or skill.
	ErrInvalidAction = errors.New("invalid match action")
)

// Status is a match's lifecycle state.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusActive   Status = "ACTIVE"
	StatusFinished Status = "FINISHED"
)

// Open reports whether s blocks a new match between the same pair.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusActive
}

// Side is one participant's in-match resources.
type Side struct {
	HP int `json:"hp"`
	MP int `json:"mp"`
}

// Match is a ranked duel.
//
// Invariant: ChallengerID != OpponentID.
type Match struct {
	ID           string    `json:"id"`
	ChallengerID string    `json:"challengerId"`
	OpponentID   string    `json:"opponentId"`
	Status       Status    `json:"status"`
	Round        int       `json:"round"`
	Log          []string  `json:"log"`
	Challenger   Side      `json:"challenger"`
	Opponent     Side      `json:"opponent"`
	WinnerID     string    `json:"winnerId,omitempty"`
	RatingDelta  int       `json:"ratingDelta"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of m.
func (m *Match) Clone() *Match {
	c := *m
	c.Log = append([]string(nil), m.Log...)
	return &c
}

// IsParticipant reports whether characterID is one of the two sides.
func (m *Match) IsParticipant(characterID string) bool {
	return characterID == m.ChallengerID || characterID == m.OpponentID
}

// Other returns the participant opposite characterID.
//
// Precondition: m.IsParticipant(characterID).
func (m *Match) Other(characterID string) string {
	if characterID == m.ChallengerID {
		return m.OpponentID
	}
	return m.ChallengerID
}

// side returns the resources of characterID.
func (m *Match) side(characterID string) *Side {
	if characterID == m.ChallengerID {
		return &m.Challenger
	}
	return &m.Opponent
}

// PairKey identifies the unordered pair {a, b}.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// TurnResult describes one resolved duel turn.
type TurnResult struct {
	Match      *Match
	AttackerID string
	DefenderID string
	Skill      skill.Skill
	Damage     int
	Crit       bool
	MPUsed     int
	// NotEnoughMP is set when the skill costs more MP than the attacker has;
	// the match is unchanged.
	NotEnoughMP bool
	Message     string
	// Outcome is set when this turn finished the match.
	Outcome *Outcome
}

// Outcome is the rating result of a finished match.
type Outcome struct {
	WinnerID string
	LoserID  string
	Change   rating.Change
	Winner   rating.Record
	Loser    rating.Record
}

// CharacterStore loads characters.
type CharacterStore interface {
	// Load returns character.ErrNotFound for unknown ids.
	Load(ctx context.Context, id string) (*character.Character, error)
}

// MatchStore persists matches.
type MatchStore interface {
	// Create returns ErrDuplicateMatch if the pair already has an open match.
	Create(ctx context.Context, m *Match) error
	// Load returns ErrMatchNotFound for unknown ids.
	Load(ctx context.Context, id string) (*Match, error)
	Save(ctx context.Context, m *Match) error
	// FindOpen returns the PENDING or ACTIVE match between a and b in either
	// order, or ErrMatchNotFound.
	FindOpen(ctx context.Context, a, b string) (*Match, error)
	// ListOpen returns every PENDING or ACTIVE match involving characterID.
	ListOpen(ctx context.Context, characterID string) ([]*Match, error)
}

// RatingStore persists rating records.
type RatingStore interface {
	// Load returns ok == false when the character has no record yet.
	Load(ctx context.Context, characterID string) (rec *rating.Record, ok bool, err error)
	// SaveResult writes both records of a finished match as one unit: either
	// both are stored or neither is.
	SaveResult(ctx context.Context, winner, loser rating.Record) error
	// Top returns up to limit records of season ordered by rating descending.
	Top(ctx context.Context, season string, limit int) ([]rating.Record, error)
}
