package pve

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/leveling"
	"github.com/cory-johannsen/arena/internal/game/npc"
)

// deliver grants gold, experience and items for a saved WIN. The character is
// reloaded under its own lock so concurrent wins do not overwrite each other's xp.
//
// Postcondition: A level-up saves level, xp and stats in one update; otherwise only xp is saved.
func (c *Coordinator) deliver(ctx context.Context, characterID string, reward npc.Reward) (*leveling.Result, error) {
	unlock := c.locks.Lock("character:" + characterID)
	defer unlock()

	ch, err := c.characters.Load(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("reloading character: %w", err)
	}

	if c.rewards != nil && reward.Gold > 0 {
		if err := c.rewards.GrantGold(ctx, characterID, reward.Gold); err != nil {
			return nil, fmt.Errorf("granting gold: %w", err)
		}
	}

	res := c.curve.AddXP(ch.Level, ch.XP, reward.XP, ch.Class, ch.Stats)
	u := character.Update{XP: &res.TotalXP}
	if res.LeveledUp() {
		u.Level = &res.NewLevel
		u.Stats = res.NewStats
	}
	if err := c.characters.Save(ctx, characterID, u); err != nil {
		return nil, fmt.Errorf("saving experience: %w", err)
	}
	if res.LeveledUp() {
		c.logger.Info("level up",
			zap.String("character_id", characterID),
			zap.Int("old_level", res.OldLevel),
			zap.Int("new_level", res.NewLevel),
		)
	}

	if c.rewards != nil {
		for _, item := range reward.Items {
			for i := 0; i < item.Quantity; i++ {
				if err := c.rewards.GrantItem(ctx, characterID, item.ItemID); err != nil {
					return &res, fmt.Errorf("granting item %s: %w", item.ItemID, err)
				}
			}
		}
	}
	return &res, nil
}

// notifyKill tells the quest sink about one kill. Failures are logged only.
func (c *Coordinator) notifyKill(ctx context.Context, characterID, target string) {
	if c.quests == nil {
		return
	}
	if err := c.quests.NotifyKill(ctx, characterID, target, 1); err != nil {
		c.logger.Error("quest progress update failed",
			zap.String("character_id", characterID),
			zap.String("target", target),
			zap.Error(err),
		)
	}
}
