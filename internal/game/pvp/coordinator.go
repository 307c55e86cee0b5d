package pvp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/keylock"
	"github.com/cory-johannsen/arena/internal/game/rating"
	"github.com/cory-johannsen/arena/internal/game/skill"
)

// Deps are the collaborators of a Coordinator. Characters, Matches and
// Ratings are required.
type Deps struct {
	Characters CharacterStore
	Matches    MatchStore
	Ratings    RatingStore
	Model      *rating.Model
	Dice       dice.Source
	Locks      *keylock.Map
	Logger     *zap.Logger
	Now        func() time.Time
}

// Coordinator runs ranked duels.
type Coordinator struct {
	characters CharacterStore
	matches    MatchStore
	ratings    RatingStore
	model      *rating.Model
	src        dice.Source
	locks      *keylock.Map
	logger     *zap.Logger
	now        func() time.Time
}

// NewCoordinator builds a Coordinator from d.
//
// Precondition: d.Characters, d.Matches and d.Ratings must be non-nil.
func NewCoordinator(d Deps) (*Coordinator, error) {
	if d.Characters == nil || d.Matches == nil || d.Ratings == nil {
		return nil, errors.New("pvp: characters, matches and ratings stores are required")
	}
	c := &Coordinator{
		characters: d.Characters,
		matches:    d.Matches,
		ratings:    d.Ratings,
		model:      d.Model,
		src:        d.Dice,
		locks:      d.Locks,
		logger:     d.Logger,
		now:        d.Now,
	}
	if c.model == nil {
		c.model = rating.DefaultModel()
	}
	if c.src == nil {
		c.src = dice.NewCryptoSource()
	}
	if c.locks == nil {
		c.locks = keylock.New()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// CreateMatch opens a PENDING challenge from challengerID to opponentID.
//
// Postcondition: Returns ErrSelfChallenge when the ids are equal and
// ErrDuplicateMatch when the pair already has an open match.
func (c *Coordinator) CreateMatch(ctx context.Context, challengerID, opponentID string) (*Match, error) {
	if challengerID == opponentID {
		return nil, ErrSelfChallenge
	}

	unlock := c.locks.Lock("pair:" + PairKey(challengerID, opponentID))
	defer unlock()

	for _, id := range []string{challengerID, opponentID} {
		if _, err := c.characters.Load(ctx, id); err != nil {
			return nil, fmt.Errorf("loading character %s: %w", id, err)
		}
	}

	existing, err := c.matches.FindOpen(ctx, challengerID, opponentID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", ErrDuplicateMatch, existing.ID)
	case !errors.Is(err, ErrMatchNotFound):
		return nil, fmt.Errorf("checking open matches: %w", err)
	}

	now := c.now()
	m := &Match{
		ID:           uuid.NewString(),
		ChallengerID: challengerID,
		OpponentID:   opponentID,
		Status:       StatusPending,
		Round:        1,
		Log:          []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := c.matches.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("creating match: %w", err)
	}
	c.logger.Info("match created",
		zap.String("match_id", m.ID),
		zap.String("challenger_id", challengerID),
		zap.String("opponent_id", opponentID),
	)
	return m, nil
}

// AcceptMatch moves a PENDING match to ACTIVE and loads both sides' hp and mp.
//
// Postcondition: Returns ErrMatchNotPending unless the match was PENDING.
func (c *Coordinator) AcceptMatch(ctx context.Context, matchID string) (*Match, error) {
	unlock := c.locks.Lock(matchID)
	defer unlock()

	m, err := c.matches.Load(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("loading match %s: %w", matchID, err)
	}
	if m.Status != StatusPending {
		return nil, fmt.Errorf("match %s is %s: %w", matchID, m.Status, ErrMatchNotPending)
	}

	challenger, opponent, err := c.loadPair(ctx, m.ChallengerID, m.OpponentID)
	if err != nil {
		return nil, err
	}

	next := m.Clone()
	next.Status = StatusActive
	next.Challenger = Side{HP: int(challenger.Stats.HP), MP: int(challenger.Stats.MP)}
	next.Opponent = Side{HP: int(opponent.Stats.HP), MP: int(opponent.Stats.MP)}
	next.Log = append(next.Log, "Match accepted! Battle begins!")
	next.UpdatedAt = c.now()
	if err := c.matches.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("saving match %s: %w", matchID, err)
	}
	c.logger.Info("match accepted", zap.String("match_id", matchID))
	return next, nil
}

// TakeTurn resolves one strike by characterID against the other participant.
// Turns do not alternate; either participant may act. When the defender's hp
// reaches 0 the match finishes and both ratings are updated once.
//
// Precondition: action is attack or skill, and skill names a skillID;
// otherwise ErrInvalidAction.
// Postcondition: Returns ErrMatchNotActive unless ACTIVE and ErrNotParticipant
// for outsiders. An unaffordable skill returns NotEnoughMP with the match unchanged.
func (c *Coordinator) TakeTurn(ctx context.Context, matchID, characterID string, action combat.Action, skillID string) (*TurnResult, error) {
	if action != combat.ActionAttack && action != combat.ActionSkill {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	if action == combat.ActionSkill && skillID == "" {
		return nil, fmt.Errorf("%w: skill requires a skill id", ErrInvalidAction)
	}

	unlock := c.locks.Lock(matchID)
	defer unlock()

	m, err := c.matches.Load(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("loading match %s: %w", matchID, err)
	}
	if m.Status != StatusActive {
		return nil, fmt.Errorf("match %s is %s: %w", matchID, m.Status, ErrMatchNotActive)
	}
	if !m.IsParticipant(characterID) {
		return nil, fmt.Errorf("match %s: %w", matchID, ErrNotParticipant)
	}

	defenderID := m.Other(characterID)
	attacker, defender, err := c.loadPair(ctx, characterID, defenderID)
	if err != nil {
		return nil, err
	}

	sk := skill.Neutral("attack")
	if action == combat.ActionSkill {
		sk = skill.Lookup(attacker.Class, skillID)
	}
	res := &TurnResult{Match: m, AttackerID: characterID, DefenderID: defenderID, Skill: sk}
	if m.side(characterID).MP < sk.MPCost {
		res.NotEnoughMP = true
		res.Message = "Not enough MP"
		return res, nil
	}

	next := m.Clone()
	res.Match = next
	res.MPUsed = sk.MPCost
	res.Crit = combat.IsCriticalHit(c.src, attacker.Stats.CritChance+sk.CritBonus)
	res.Damage = combat.CalculateDamage(attacker.Stats, defender.Stats, sk.DamageMultiplier, res.Crit)

	next.side(characterID).MP -= sk.MPCost
	def := next.side(defenderID)
	def.HP = combat.ApplyDamage(def.HP, res.Damage)

	line := fmt.Sprintf("%s attacks %s for %d damage!", attacker.DisplayName(), defender.DisplayName(), res.Damage)
	if action == combat.ActionSkill {
		line = fmt.Sprintf("%s uses %s on %s for %d damage!", attacker.DisplayName(), sk.Name, defender.DisplayName(), res.Damage)
	}
	if res.Crit {
		line += " (Critical Hit!)"
	}
	next.Log = append(next.Log, line)
	next.Round++
	next.UpdatedAt = c.now()

	if def.HP > 0 {
		if err := c.matches.Save(ctx, next); err != nil {
			return nil, fmt.Errorf("saving match %s: %w", matchID, err)
		}
		return res, nil
	}

	next.Log = append(next.Log, fmt.Sprintf("%s is defeated! %s wins!", defender.DisplayName(), attacker.DisplayName()))
	outcome, err := c.finish(ctx, m, next, characterID, defenderID)
	if err != nil {
		return nil, err
	}
	res.Outcome = outcome
	return res, nil
}

// ForfeitMatch ends an ACTIVE match with characterID conceding; the other
// participant wins and ratings are updated once.
//
// Postcondition: Returns ErrMatchNotActive unless ACTIVE and ErrNotParticipant for outsiders.
func (c *Coordinator) ForfeitMatch(ctx context.Context, matchID, characterID string) (*Match, *Outcome, error) {
	unlock := c.locks.Lock(matchID)
	defer unlock()

	m, err := c.matches.Load(ctx, matchID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading match %s: %w", matchID, err)
	}
	if m.Status != StatusActive {
		return nil, nil, fmt.Errorf("match %s is %s: %w", matchID, m.Status, ErrMatchNotActive)
	}
	if !m.IsParticipant(characterID) {
		return nil, nil, fmt.Errorf("match %s: %w", matchID, ErrNotParticipant)
	}

	loser, err := c.characters.Load(ctx, characterID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading character %s: %w", characterID, err)
	}

	next := m.Clone()
	next.Log = append(next.Log, fmt.Sprintf("%s forfeited the match!", loser.DisplayName()))
	next.UpdatedAt = c.now()
	outcome, err := c.finish(ctx, m, next, m.Other(characterID), characterID)
	if err != nil {
		return nil, nil, err
	}
	return next, outcome, nil
}

// finish marks m FINISHED for winnerID, saves it, and applies the rating change.
// Both rating records are locked in sorted order for the read-modify-write.
// When the ratings cannot be stored the match is put back to prev so the
// finishing turn or forfeit can be retried.
func (c *Coordinator) finish(ctx context.Context, prev, m *Match, winnerID, loserID string) (*Outcome, error) {
	unlock := c.locks.LockAll("rating:"+winnerID, "rating:"+loserID)
	defer unlock()

	var winPrev, losePrev *rating.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rec, _, err := c.ratings.Load(gctx, winnerID)
		winPrev = rec
		return err
	})
	g.Go(func() error {
		rec, _, err := c.ratings.Load(gctx, loserID)
		losePrev = rec
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading ratings: %w", err)
	}

	change := c.model.Calculate(c.model.Current(winPrev), c.model.Current(losePrev))
	out := &Outcome{
		WinnerID: winnerID,
		LoserID:  loserID,
		Change:   change,
		Winner:   c.model.Apply(winPrev, winnerID, change.Winner, true),
		Loser:    c.model.Apply(losePrev, loserID, change.Loser, false),
	}

	m.Status = StatusFinished
	m.WinnerID = winnerID
	m.RatingDelta = change.Winner
	if err := c.matches.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("saving match %s: %w", m.ID, err)
	}

	if err := c.ratings.SaveResult(ctx, out.Winner, out.Loser); err != nil {
		err = fmt.Errorf("saving ratings for match %s: %w", m.ID, err)
		if rerr := c.matches.Save(ctx, prev); rerr != nil {
			return nil, errors.Join(err, fmt.Errorf("restoring match %s: %w", m.ID, rerr))
		}
		return nil, err
	}

	c.logger.Info("match finished",
		zap.String("match_id", m.ID),
		zap.String("winner_id", winnerID),
		zap.String("loser_id", loserID),
		zap.Int("winner_delta", change.Winner),
		zap.Int("loser_delta", change.Loser),
	)
	return out, nil
}

func (c *Coordinator) loadPair(ctx context.Context, aID, bID string) (*character.Character, *character.Character, error) {
	var a, b *character.Character
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if a, err = c.characters.Load(gctx, aID); err != nil {
			return fmt.Errorf("loading character %s: %w", aID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if b, err = c.characters.Load(gctx, bID); err != nil {
			return fmt.Errorf("loading character %s: %w", bID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// GetMatch returns the stored match.
func (c *Coordinator) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	return c.matches.Load(ctx, matchID)
}

// ActiveMatches lists the PENDING and ACTIVE matches involving characterID.
func (c *Coordinator) ActiveMatches(ctx context.Context, characterID string) ([]*Match, error) {
	return c.matches.ListOpen(ctx, characterID)
}

// IsParticipant reports whether characterID takes part in matchID. Unknown
// matches report false.
func (c *Coordinator) IsParticipant(ctx context.Context, matchID, characterID string) (bool, error) {
	m, err := c.matches.Load(ctx, matchID)
	if errors.Is(err, ErrMatchNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.IsParticipant(characterID), nil
}

// CharacterRating returns the character's record, or a default record with
// no results when none exists yet in the current season.
func (c *Coordinator) CharacterRating(ctx context.Context, characterID string) (rating.Record, error) {
	rec, ok, err := c.ratings.Load(ctx, characterID)
	if err != nil {
		return rating.Record{}, err
	}
	if !ok || (rec.Season != "" && rec.Season != c.model.Season) {
		return rating.Record{CharacterID: characterID, Rating: c.model.Default, Season: c.model.Season}, nil
	}
	return *rec, nil
}

// Leaderboard returns the top limit records of the current season.
func (c *Coordinator) Leaderboard(ctx context.Context, limit int) ([]rating.Record, error) {
	if limit <= 0 {
		limit = 100
	}
	return c.ratings.Top(ctx, c.model.Season, limit)
}
