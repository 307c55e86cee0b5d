// Package rating implements the Elo-style ranked duel rating model.
package rating

import (
	"math"

	"github.com/cory-johannsen/arena/internal/config"
)

const (
	// DefaultKFactor bounds the rating change of a single result.
	DefaultKFactor = 32.0
	// DefaultRating is assigned to a character on its first ranked result.
	DefaultRating = 1000
)

// Record is a character's ranked standing for a season.
type Record struct {
	CharacterID string `json:"characterId"`
	Rating      int    `json:"rating"`
	Season      string `json:"season"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
}

// Change is the signed rating delta for both sides of one result.
type Change struct {
	Winner int
	Loser  int
}

// Model holds the rating parameters.
type Model struct {
	K       float64
	Default int
	Season  string
}

// NewModel builds a Model from the rating configuration.
//
// Postcondition: K > 0; a non-positive configured K falls back to DefaultKFactor.
func NewModel(cfg config.RatingConfig) *Model {
	m := &Model{K: cfg.KFactor, Default: cfg.Default, Season: cfg.Season}
	if m.K <= 0 {
		m.K = DefaultKFactor
	}
	if m.Default < 0 {
		m.Default = DefaultRating
	}
	return m
}

// DefaultModel returns the model with K = 32 and default rating 1000.
func DefaultModel() *Model {
	return NewModel(config.Default().Game.Rating)
}

// Expected is the logistic expected score of a against b.
//
// Postcondition: 0 < result < 1 and Expected(a, b) + Expected(b, a) == 1.
func Expected(a, b int) float64 {
	return 1 / (1 + math.Pow(10, float64(b-a)/400))
}

// Calculate returns the rating change for winner beating loser.
//
// Postcondition: result.Winner >= 0, result.Loser <= 0, and
// result.Winner == -result.Loser.
func (m *Model) Calculate(winner, loser int) Change {
	ew := Expected(winner, loser)
	// The loser's expectation is the complement of the winner's so both
	// deltas round from the same magnitude.
	el := 1 - ew
	return Change{
		Winner: int(math.Round(m.K * (1 - ew))),
		Loser:  int(math.Round(m.K * (0 - el))),
	}
}

// Apply returns the record after one result. A nil prev, or a prev from an
// earlier season, starts from the model's default rating with zeroed counters
// in the model's season.
//
// Postcondition: Rating >= 0; Season == m.Season; exactly one of Wins or
// Losses is one greater than in the carried record.
func (m *Model) Apply(prev *Record, characterID string, delta int, won bool) Record {
	rec := Record{CharacterID: characterID, Rating: m.Default, Season: m.Season}
	if m.inSeason(prev) {
		rec = *prev
		rec.CharacterID = characterID
		rec.Season = m.Season
	}
	rec.Rating += delta
	if rec.Rating < 0 {
		rec.Rating = 0
	}
	if won {
		rec.Wins++
	} else {
		rec.Losses++
	}
	return rec
}

// Current returns prev's rating, or the default when prev is nil or from an
// earlier season.
func (m *Model) Current(prev *Record) int {
	if !m.inSeason(prev) {
		return m.Default
	}
	return prev.Rating
}

// inSeason reports whether prev carries into the model's season. Records
// without a season count as current.
func (m *Model) inSeason(prev *Record) bool {
	return prev != nil && (prev.Season == "" || prev.Season == m.Season)
}
