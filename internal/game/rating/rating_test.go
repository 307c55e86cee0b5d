package rating_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/rating"
)

func TestExpected_EvenMatch(t *testing.T) {
	assert.InDelta(t, 0.5, rating.Expected(1200, 1200), 1e-9)
}

func TestCalculate_EvenMatchIsHalfK(t *testing.T) {
	m := rating.DefaultModel()
	c := m.Calculate(1000, 1000)
	assert.Equal(t, 16, c.Winner)
	assert.Equal(t, -16, c.Loser)
}

func TestCalculate_UpsetPaysMore(t *testing.T) {
	m := rating.DefaultModel()
	upset := m.Calculate(1000, 1400)
	expected := m.Calculate(1400, 1000)
	assert.Greater(t, upset.Winner, expected.Winner)
}

func TestApply_FirstResultStartsAtDefault(t *testing.T) {
	m := rating.DefaultModel()
	rec := m.Apply(nil, "c1", 16, true)
	assert.Equal(t, 1016, rec.Rating)
	assert.Equal(t, 1, rec.Wins)
	assert.Equal(t, 0, rec.Losses)
	assert.Equal(t, "c1", rec.CharacterID)
	assert.Equal(t, m.Season, rec.Season)
}

func TestApply_EarlierSeasonRollsOver(t *testing.T) {
	m := &rating.Model{K: 32, Default: 1000, Season: "s2"}
	prev := &rating.Record{CharacterID: "c1", Rating: 1400, Season: "s1", Wins: 9, Losses: 2}

	assert.Equal(t, 1000, m.Current(prev))
	rec := m.Apply(prev, "c1", 16, true)
	assert.Equal(t, rating.Record{CharacterID: "c1", Rating: 1016, Season: "s2", Wins: 1}, rec)
}

func TestApply_CurrentSeasonCarriesOver(t *testing.T) {
	m := &rating.Model{K: 32, Default: 1000, Season: "s2"}
	prev := &rating.Record{CharacterID: "c1", Rating: 1400, Season: "s2", Wins: 9, Losses: 2}

	assert.Equal(t, 1400, m.Current(prev))
	rec := m.Apply(prev, "c1", -10, false)
	assert.Equal(t, rating.Record{CharacterID: "c1", Rating: 1390, Season: "s2", Wins: 9, Losses: 3}, rec)
}

func TestApply_FloorsAtZero(t *testing.T) {
	m := rating.DefaultModel()
	rec := m.Apply(&rating.Record{CharacterID: "c1", Rating: 5, Losses: 3}, "c1", -20, false)
	assert.Equal(t, 0, rec.Rating)
	assert.Equal(t, 4, rec.Losses)
}

func TestProperty_Calculate_SymmetricAndSigned(t *testing.T) {
	m := rating.DefaultModel()
	rapid.Check(t, func(rt *rapid.T) {
		w := rapid.IntRange(0, 3000).Draw(rt, "winner")
		l := rapid.IntRange(0, 3000).Draw(rt, "loser")
		c := m.Calculate(w, l)
		if c.Winner < 0 || c.Loser > 0 {
			rt.Fatalf("wrong signs: %+v", c)
		}
		if c.Winner != -c.Loser {
			rt.Fatalf("magnitudes differ: %+v", c)
		}
	})
}

func TestProperty_Calculate_StrictlySignedWithinRange(t *testing.T) {
	m := rating.DefaultModel()
	rapid.Check(t, func(rt *rapid.T) {
		w := rapid.IntRange(500, 2000).Draw(rt, "winner")
		gap := rapid.IntRange(-400, 400).Draw(rt, "gap")
		c := m.Calculate(w, w+gap)
		if c.Winner <= 0 || c.Loser >= 0 {
			rt.Fatalf("expected strict signs for gap %d: %+v", gap, c)
		}
	})
}

func TestProperty_CloserRatingsGiveSmallerWinnerDelta(t *testing.T) {
	m := rating.DefaultModel()
	rapid.Check(t, func(rt *rapid.T) {
		w := rapid.IntRange(800, 2000).Draw(rt, "winner")
		near := rapid.IntRange(0, 100).Draw(rt, "near")
		far := rapid.IntRange(near+200, 800).Draw(rt, "far")
		close := m.Calculate(w, w+near)
		lopsided := m.Calculate(w, w+far)
		if close.Winner >= lopsided.Winner {
			rt.Fatalf("close %d >= lopsided %d", close.Winner, lopsided.Winner)
		}
	})
}
