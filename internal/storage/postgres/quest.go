package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/arena/internal/game/quest"
)

// QuestRepository stores quest assignments and advances kill objectives.
type QuestRepository struct {
	db *pgxpool.Pool
}

// NewQuestRepository creates a QuestRepository backed by the given pool.
func NewQuestRepository(db *pgxpool.Pool) *QuestRepository {
	return &QuestRepository{db: db}
}

// Assign inserts or replaces an assignment.
func (r *QuestRepository) Assign(ctx context.Context, a quest.Assignment) error {
	obj, err := json.Marshal(a.Objective)
	if err != nil {
		return fmt.Errorf("encoding objective: %w", err)
	}
	if a.Progress == nil {
		a.Progress = quest.Progress{}
	}
	progress, err := json.Marshal(a.Progress)
	if err != nil {
		return fmt.Errorf("encoding progress: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO quest_assignments (character_id, quest_id, status, objective, progress)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (character_id, quest_id) DO UPDATE
		SET status = EXCLUDED.status, objective = EXCLUDED.objective, progress = EXCLUDED.progress`,
		a.CharacterID, a.QuestID, string(a.Status), obj, progress,
	)
	if err != nil {
		return fmt.Errorf("upserting quest assignment: %w", err)
	}
	return nil
}

// Assignments returns the character's assignments ordered by quest id.
func (r *QuestRepository) Assignments(ctx context.Context, characterID string) ([]quest.Assignment, error) {
	return r.list(ctx, r.db, characterID, false)
}

// NotifyKill advances every matching in-progress kill objective of the
// character inside one transaction.
func (r *QuestRepository) NotifyKill(ctx context.Context, characterID, target string, count int) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		list, err := r.list(ctx, tx, characterID, true)
		if err != nil {
			return err
		}
		for _, a := range list {
			next, ok := quest.ApplyKill(a, target, count)
			if !ok {
				continue
			}
			progress, err := json.Marshal(next.Progress)
			if err != nil {
				return fmt.Errorf("encoding progress: %w", err)
			}
			if _, err := tx.Exec(ctx, `
				UPDATE quest_assignments SET progress = $3
				WHERE character_id = $1 AND quest_id = $2`,
				characterID, a.QuestID, progress,
			); err != nil {
				return fmt.Errorf("updating quest %s: %w", a.QuestID, err)
			}
		}
		return nil
	})
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *QuestRepository) list(ctx context.Context, q querier, characterID string, inProgressForUpdate bool) ([]quest.Assignment, error) {
	sql := `SELECT quest_id, status, objective, progress FROM quest_assignments
		WHERE character_id = $1 ORDER BY quest_id`
	if inProgressForUpdate {
		sql = `SELECT quest_id, status, objective, progress FROM quest_assignments
			WHERE character_id = $1 AND status = 'IN_PROGRESS' ORDER BY quest_id FOR UPDATE`
	}
	rows, err := q.Query(ctx, sql, characterID)
	if err != nil {
		return nil, fmt.Errorf("listing quest assignments: %w", err)
	}
	defer rows.Close()

	out := make([]quest.Assignment, 0)
	for rows.Next() {
		var (
			a             quest.Assignment
			status        string
			obj, progress []byte
		)
		if err := rows.Scan(&a.QuestID, &status, &obj, &progress); err != nil {
			return nil, fmt.Errorf("scanning quest row: %w", err)
		}
		a.CharacterID = characterID
		a.Status = quest.Status(status)
		if err := json.Unmarshal(obj, &a.Objective); err != nil {
			return nil, fmt.Errorf("decoding objective: %w", err)
		}
		if err := json.Unmarshal(progress, &a.Progress); err != nil {
			return nil, fmt.Errorf("decoding progress: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
