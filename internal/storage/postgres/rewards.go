package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/arena/internal/game/character"
)

// RewardRepository credits gold and items to characters.
type RewardRepository struct {
	db *pgxpool.Pool
}

// NewRewardRepository creates a RewardRepository backed by the given pool.
func NewRewardRepository(db *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{db: db}
}

// GrantGold adds amount to the character's gold.
//
// Postcondition: Returns an error wrapping character.ErrNotFound for unknown ids.
func (r *RewardRepository) GrantGold(ctx context.Context, characterID string, amount int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE characters SET gold = gold + $2, updated_at = NOW() WHERE id = $1`,
		characterID, amount,
	)
	if err != nil {
		return fmt.Errorf("granting gold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("character %s: %w", characterID, character.ErrNotFound)
	}
	return nil
}

// GrantItem adds one of itemID to the character's items.
func (r *RewardRepository) GrantItem(ctx context.Context, characterID, itemID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO character_items (character_id, item_id, quantity)
		VALUES ($1, $2, 1)
		ON CONFLICT (character_id, item_id)
		DO UPDATE SET quantity = character_items.quantity + 1`,
		characterID, itemID,
	)
	if err != nil {
		return fmt.Errorf("granting item %s: %w", itemID, err)
	}
	return nil
}

// Gold returns the character's gold.
func (r *RewardRepository) Gold(ctx context.Context, characterID string) (int, error) {
	var gold int
	if err := r.db.QueryRow(ctx, `SELECT gold FROM characters WHERE id = $1`, characterID).Scan(&gold); err != nil {
		return 0, fmt.Errorf("querying gold: %w", err)
	}
	return gold, nil
}

// Items returns the character's item counts keyed by item id.
func (r *RewardRepository) Items(ctx context.Context, characterID string) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT item_id, quantity FROM character_items WHERE character_id = $1`,
		characterID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := make(map[string]int)
	for rows.Next() {
		var id string
		var qty int
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		items[id] = qty
	}
	return items, rows.Err()
}
