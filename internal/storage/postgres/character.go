package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/arena/internal/game/character"
)

// ErrCharacterExists is returned when creating a character whose id is taken.
var ErrCharacterExists = errors.New("character already exists")

// CharacterRepository provides character persistence operations.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Create inserts a new character.
//
// Precondition: c.ID and c.Name must be non-empty and c.Class valid.
// Postcondition: Returns nil or ErrCharacterExists on a duplicate id.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) error {
	stats, err := json.Marshal(c.Stats)
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO characters (id, name, class, level, xp, stats)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Class.String(), c.Level, c.XP, stats,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrCharacterExists
		}
		return fmt.Errorf("inserting character: %w", err)
	}
	return nil
}

// Load retrieves a character by id.
//
// Postcondition: Returns the Character or an error wrapping character.ErrNotFound.
func (r *CharacterRepository) Load(ctx context.Context, id string) (*character.Character, error) {
	var (
		c     character.Character
		class string
		stats []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, name, class, level, xp, stats
		FROM characters WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &class, &c.Level, &c.XP, &stats)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("character %s: %w", id, character.ErrNotFound)
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	if c.Class, err = character.ParseClass(class); err != nil {
		return nil, fmt.Errorf("character %s: %w", id, err)
	}
	if err := json.Unmarshal(stats, &c.Stats); err != nil {
		return nil, fmt.Errorf("decoding stats for character %s: %w", id, err)
	}
	return &c, nil
}

// Save applies u to the stored character in a single statement so a level
// change lands together with its xp and stats.
//
// Precondition: u.Validate() == nil.
// Postcondition: Returns nil, ErrInconsistentUpdate, or an error wrapping character.ErrNotFound.
func (r *CharacterRepository) Save(ctx context.Context, id string, u character.Update) error {
	if err := u.Validate(); err != nil {
		return err
	}
	var stats any
	if u.Stats != nil {
		b, err := json.Marshal(u.Stats)
		if err != nil {
			return fmt.Errorf("encoding stats: %w", err)
		}
		stats = b
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE characters
		SET level = COALESCE($2, level),
		    xp = COALESCE($3, xp),
		    stats = COALESCE($4::jsonb, stats),
		    updated_at = NOW()
		WHERE id = $1`,
		id, u.Level, u.XP, stats,
	)
	if err != nil {
		return fmt.Errorf("updating character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("character %s: %w", id, character.ErrNotFound)
	}
	return nil
}
