package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/arena/internal/game/rating"
)

// RatingRepository stores one ranked record per character.
type RatingRepository struct {
	db *pgxpool.Pool
}

// NewRatingRepository creates a RatingRepository backed by the given pool.
func NewRatingRepository(db *pgxpool.Pool) *RatingRepository {
	return &RatingRepository{db: db}
}

// Load returns the character's record and true, or nil and false when none exists.
func (r *RatingRepository) Load(ctx context.Context, characterID string) (*rating.Record, bool, error) {
	var rec rating.Record
	err := r.db.QueryRow(ctx, `
		SELECT character_id, rating, season, wins, losses
		FROM ratings WHERE character_id = $1`,
		characterID,
	).Scan(&rec.CharacterID, &rec.Rating, &rec.Season, &rec.Wins, &rec.Losses)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("querying rating: %w", err)
	}
	return &rec, true, nil
}

const upsertRating = `
		INSERT INTO ratings (character_id, rating, season, wins, losses)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (character_id) DO UPDATE
		SET rating = EXCLUDED.rating, season = EXCLUDED.season,
		    wins = EXCLUDED.wins, losses = EXCLUDED.losses, updated_at = NOW()`

// Save upserts rec.
func (r *RatingRepository) Save(ctx context.Context, rec rating.Record) error {
	if _, err := r.db.Exec(ctx, upsertRating,
		rec.CharacterID, rec.Rating, rec.Season, rec.Wins, rec.Losses,
	); err != nil {
		return fmt.Errorf("upserting rating: %w", err)
	}
	return nil
}

// SaveResult upserts the winner and loser records of a finished match in a
// single transaction.
//
// Postcondition: Either both records are written or neither is.
func (r *RatingRepository) SaveResult(ctx context.Context, winner, loser rating.Record) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, rec := range []rating.Record{winner, loser} {
			if _, err := tx.Exec(ctx, upsertRating,
				rec.CharacterID, rec.Rating, rec.Season, rec.Wins, rec.Losses,
			); err != nil {
				return fmt.Errorf("upserting rating %s: %w", rec.CharacterID, err)
			}
		}
		return nil
	})
}

// Top returns up to limit records of season, highest rating first.
//
// Precondition: limit > 0.
func (r *RatingRepository) Top(ctx context.Context, season string, limit int) ([]rating.Record, error) {
	rows, err := r.db.Query(ctx, `
		SELECT character_id, rating, season, wins, losses
		FROM ratings WHERE season = $1
		ORDER BY rating DESC, character_id ASC
		LIMIT $2`,
		season, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing ratings: %w", err)
	}
	defer rows.Close()

	out := make([]rating.Record, 0)
	for rows.Next() {
		var rec rating.Record
		if err := rows.Scan(&rec.CharacterID, &rec.Rating, &rec.Season, &rec.Wins, &rec.Losses); err != nil {
			return nil, fmt.Errorf("scanning rating row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
