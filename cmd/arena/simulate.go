package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/pve"
	"github.com/cory-johannsen/arena/internal/game/pvp"
)

// maxTurns stops a simulation that cannot finish, e.g. when neither side can hurt the other.
const maxTurns = 500

var (
	heroClass  string
	heroLevel  int
	useSkill   string
	enemyType  string
	enemyLevel int
	bossID     string
	rivalClass string
)

// plan returns the action for the next turn: the configured skill while it
// is affordable, otherwise a plain attack.
func plan(mp, cost int) (combat.Action, string) {
	if useSkill != "" && mp >= cost {
		return combat.ActionSkill, useSkill
	}
	return combat.ActionAttack, ""
}

func printLog(lines []string) {
	for _, l := range lines {
		fmt.Println("  " + l)
	}
}

var skirmishCmd = &cobra.Command{
	Use:   "skirmish",
	Short: "Fight one enemy until the battle resolves",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		hero, err := a.newCharacter(ctx, uuid.NewString(), "Hero", heroClass, heroLevel)
		if err != nil {
			return err
		}
		b, err := a.pve.StartBattle(ctx, hero.ID, enemyType, enemyLevel)
		if err != nil {
			return err
		}
		fmt.Printf("%s (level %d %s) vs %s (level %d)\n", hero.Name, hero.Level, hero.Class, b.Enemy.Name, b.Enemy.Level)

		cost := 0
		for i := 0; i < maxTurns; i++ {
			action, skillID := plan(b.State.CharacterMP, cost)
			res, err := a.pve.TakeTurn(ctx, b.ID, action, skillID)
			if err != nil && !errors.Is(err, pve.ErrRewardDelivery) {
				return err
			}
			if res.NotEnoughMP {
				cost = res.Skill.MPCost
				continue
			}
			cost = res.Skill.MPCost
			b = res.Battle
			if res.Result.Resolved() {
				printLog(b.State.Log)
				fmt.Printf("Result: %s (score %d)\n", res.Result, b.Score)
				if res.Rewards != nil {
					fmt.Printf("Rewards: %d xp, %d gold, %d item(s)\n", res.Rewards.XP, res.Rewards.Gold, len(res.Rewards.Items))
				}
				if res.LevelUp != nil && res.LevelUp.LeveledUp() {
					fmt.Printf("Level up! %d -> %d\n", res.LevelUp.OldLevel, res.LevelUp.NewLevel)
				}
				return err
			}
		}
		return fmt.Errorf("battle %s did not resolve within %d turns", b.ID, maxTurns)
	},
}

var bossCmd = &cobra.Command{
	Use:   "boss",
	Short: "Challenge a boss until the encounter completes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		hero, err := a.newCharacter(ctx, uuid.NewString(), "Hero", heroClass, heroLevel)
		if err != nil {
			return err
		}
		st, err := a.pve.StartBossBattle(ctx, hero.ID, bossID)
		if err != nil {
			return err
		}
		fmt.Printf("%s (level %d %s) vs %s\n", hero.Name, hero.Level, hero.Class, st.BossName)

		cost := 0
		for i := 0; i < maxTurns; i++ {
			action, skillID := plan(st.CharacterMP, cost)
			res, err := a.pve.TakeBossTurn(ctx, st.ID, action, skillID)
			if err != nil && !errors.Is(err, pve.ErrRewardDelivery) {
				return err
			}
			cost = res.Strike.Skill.MPCost
			if res.NotEnoughMP {
				continue
			}
			st = res.State
			if res.Battle != nil {
				printLog(st.Log)
				fmt.Printf("Result: %s after %d turns (score %d)\n", res.Result, st.Turn-1, res.Battle.Score)
				if res.Rewards != nil {
					fmt.Printf("Rewards: %d xp, %d gold, %d item(s)\n", res.Rewards.XP, res.Rewards.Gold, len(res.Rewards.Items))
				}
				return err
			}
		}
		return fmt.Errorf("boss battle %s did not complete within %d turns", st.ID, maxTurns)
	},
}

var duelCmd = &cobra.Command{
	Use:   "duel",
	Short: "Run a ranked duel between two fresh characters",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		left, err := a.newCharacter(ctx, uuid.NewString(), "Challenger", heroClass, heroLevel)
		if err != nil {
			return err
		}
		right, err := a.newCharacter(ctx, uuid.NewString(), "Rival", rivalClass, heroLevel)
		if err != nil {
			return err
		}
		m, err := a.pvp.CreateMatch(ctx, left.ID, right.ID)
		if err != nil {
			return err
		}
		if m, err = a.pvp.AcceptMatch(ctx, m.ID); err != nil {
			return err
		}

		names := map[string]string{left.ID: left.Name, right.ID: right.Name}
		return runDuel(ctx, a.pvp, m, left.ID, names)
	},
}

// runDuel alternates attacks starting with first until the match finishes.
func runDuel(ctx context.Context, coord *pvp.Coordinator, m *pvp.Match, first string, names map[string]string) error {
	actor := first
	for i := 0; i < maxTurns; i++ {
		res, err := coord.TakeTurn(ctx, m.ID, actor, combat.ActionAttack, "")
		if err != nil {
			return err
		}
		if res.Outcome != nil {
			printLog(res.Match.Log)
			o := res.Outcome
			fmt.Printf("Winner: %s\n", names[o.WinnerID])
			fmt.Printf("Ratings: winner %d (%+d), loser %d (%+d)\n", o.Winner.Rating, o.Change.Winner, o.Loser.Rating, o.Change.Loser)
			return nil
		}
		actor = res.DefenderID
	}
	return fmt.Errorf("match %s did not finish within %d rounds", m.ID, maxTurns)
}

func init() {
	for _, c := range []*cobra.Command{skirmishCmd, bossCmd, duelCmd} {
		c.Flags().StringVar(&heroClass, "class", "warrior", "character class: warrior, mage or rogue")
		c.Flags().IntVar(&heroLevel, "level", 1, "character level")
	}
	for _, c := range []*cobra.Command{skirmishCmd, bossCmd} {
		c.Flags().StringVar(&useSkill, "skill", "", "skill id to use while mp allows")
	}
	skirmishCmd.Flags().StringVar(&enemyType, "enemy", "goblin", "enemy type")
	skirmishCmd.Flags().IntVar(&enemyLevel, "enemy-level", 0, "enemy level; 0 picks one near the character")
	bossCmd.Flags().StringVar(&bossID, "boss", "goblin_chief", "boss id")
	duelCmd.Flags().StringVar(&rivalClass, "rival-class", "rogue", "rival's class")
}
