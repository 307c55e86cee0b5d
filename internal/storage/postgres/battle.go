package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/arena/internal/game/pve"
)

// BattleRepository stores PvE battle records. The full record is kept as
// JSONB with the result and score copied into columns for reporting.
type BattleRepository struct {
	db *pgxpool.Pool
}

// NewBattleRepository creates a BattleRepository backed by the given pool.
func NewBattleRepository(db *pgxpool.Pool) *BattleRepository {
	return &BattleRepository{db: db}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create inserts b.
//
// Postcondition: Returns nil or an error wrapping pve.ErrBattleExists.
func (r *BattleRepository) Create(ctx context.Context, b *pve.Battle) error {
	body, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding battle: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO battles (id, character_id, boss_id, result, score, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.CharacterID, nullable(b.BossID), string(b.Result), b.Score, body, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("battle %s: %w", b.ID, pve.ErrBattleExists)
		}
		return fmt.Errorf("inserting battle: %w", err)
	}
	return nil
}

// Load retrieves a battle by id.
//
// Postcondition: Returns the Battle or an error wrapping pve.ErrBattleNotFound.
func (r *BattleRepository) Load(ctx context.Context, id string) (*pve.Battle, error) {
	var body []byte
	err := r.db.QueryRow(ctx, `SELECT body FROM battles WHERE id = $1`, id).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("battle %s: %w", id, pve.ErrBattleNotFound)
		}
		return nil, fmt.Errorf("querying battle: %w", err)
	}
	var b pve.Battle
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, fmt.Errorf("decoding battle %s: %w", id, err)
	}
	return &b, nil
}

// Save replaces the stored battle.
//
// Postcondition: Returns nil or an error wrapping pve.ErrBattleNotFound.
func (r *BattleRepository) Save(ctx context.Context, b *pve.Battle) error {
	body, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding battle: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE battles SET result = $2, score = $3, body = $4, updated_at = $5
		WHERE id = $1`,
		b.ID, string(b.Result), b.Score, body, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating battle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("battle %s: %w", b.ID, pve.ErrBattleNotFound)
	}
	return nil
}

// History returns the character's most recent battles, newest first.
//
// Precondition: limit > 0.
func (r *BattleRepository) History(ctx context.Context, characterID string, limit int) ([]*pve.Battle, error) {
	rows, err := r.db.Query(ctx, `
		SELECT body FROM battles WHERE character_id = $1
		ORDER BY created_at DESC LIMIT $2`,
		characterID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing battles: %w", err)
	}
	defer rows.Close()

	out := make([]*pve.Battle, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning battle row: %w", err)
		}
		var b pve.Battle
		if err := json.Unmarshal(body, &b); err != nil {
			return nil, fmt.Errorf("decoding battle: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}
