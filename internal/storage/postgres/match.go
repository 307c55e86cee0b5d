package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/arena/internal/game/pvp"
)

// MatchRepository stores ranked matches. A partial unique index on the
// unordered pair rejects a second open match between the same characters.
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository creates a MatchRepository backed by the given pool.
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create inserts m.
//
// Postcondition: Returns nil or pvp.ErrDuplicateMatch when the pair already has an open match.
func (r *MatchRepository) Create(ctx context.Context, m *pvp.Match) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding match: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO matches (id, challenger_id, opponent_id, status, winner_id, rating_delta, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.ChallengerID, m.OpponentID, string(m.Status), nullable(m.WinnerID), m.RatingDelta, body, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return pvp.ErrDuplicateMatch
		}
		return fmt.Errorf("inserting match: %w", err)
	}
	return nil
}

// Load retrieves a match by id.
//
// Postcondition: Returns the Match or an error wrapping pvp.ErrMatchNotFound.
func (r *MatchRepository) Load(ctx context.Context, id string) (*pvp.Match, error) {
	return r.scanOne(r.db.QueryRow(ctx, `SELECT body FROM matches WHERE id = $1`, id), id)
}

// Save replaces the stored match.
//
// Postcondition: Returns nil or an error wrapping pvp.ErrMatchNotFound.
func (r *MatchRepository) Save(ctx context.Context, m *pvp.Match) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding match: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE matches
		SET status = $2, winner_id = $3, rating_delta = $4, body = $5, updated_at = $6
		WHERE id = $1`,
		m.ID, string(m.Status), nullable(m.WinnerID), m.RatingDelta, body, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("match %s: %w", m.ID, pvp.ErrMatchNotFound)
	}
	return nil
}

// FindOpen returns the PENDING or ACTIVE match between a and b in either role.
//
// Postcondition: Returns the Match or pvp.ErrMatchNotFound.
func (r *MatchRepository) FindOpen(ctx context.Context, a, b string) (*pvp.Match, error) {
	row := r.db.QueryRow(ctx, `
		SELECT body FROM matches
		WHERE LEAST(challenger_id, opponent_id) = LEAST($1::text, $2::text)
		  AND GREATEST(challenger_id, opponent_id) = GREATEST($1::text, $2::text)
		  AND status IN ('PENDING', 'ACTIVE')`,
		a, b,
	)
	return r.scanOne(row, pvp.PairKey(a, b))
}

// ListOpen returns the open matches involving characterID, oldest first.
func (r *MatchRepository) ListOpen(ctx context.Context, characterID string) ([]*pvp.Match, error) {
	rows, err := r.db.Query(ctx, `
		SELECT body FROM matches
		WHERE (challenger_id = $1 OR opponent_id = $1)
		  AND status IN ('PENDING', 'ACTIVE')
		ORDER BY created_at ASC`,
		characterID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	defer rows.Close()

	out := make([]*pvp.Match, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning match row: %w", err)
		}
		var m pvp.Match
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, fmt.Errorf("decoding match: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *MatchRepository) scanOne(row pgx.Row, key string) (*pvp.Match, error) {
	var body []byte
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("match %s: %w", key, pvp.ErrMatchNotFound)
		}
		return nil, fmt.Errorf("querying match: %w", err)
	}
	var m pvp.Match
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("decoding match %s: %w", key, err)
	}
	return &m, nil
}
