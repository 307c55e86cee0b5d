package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/arena/internal/game/boss"
	"github.com/cory-johannsen/arena/internal/game/leveling"
	"github.com/cory-johannsen/arena/internal/game/npc"
)

var (
	curveMax     int
	enemiesLevel int
)

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Print the experience curve",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		curve, err := leveling.NewCurve(cfg.Game.Leveling)
		if err != nil {
			return err
		}
		top := curve.MaxLevel
		if curveMax > 0 && curveMax < top {
			top = curveMax
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LEVEL\tTO NEXT\tCUMULATIVE")
		for level := 1; level <= top; level++ {
			next := leveling.XPForLevel(level)
			if curve.IsMaxLevel(level) {
				next = 0
			}
			fmt.Fprintf(w, "%d\t%d\t%d\n", level, next, leveling.CumulativeXP(level))
		}
		return w.Flush()
	},
}

var enemiesCmd = &cobra.Command{
	Use:   "enemies",
	Short: "List enemy templates, or the spawn entries near --level",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		if enemiesLevel > 0 {
			spawns, err := npc.LoadSpawnTable(cfg.Game.Content.SpawnFile)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "TYPE\tLEVEL\tAREA\tCHANCE")
			for _, s := range spawns.Available(enemiesLevel) {
				fmt.Fprintf(w, "%s\t%d\t%s\t%.2f\n", s.Type, s.Level, s.Area, s.Chance)
			}
			return w.Flush()
		}
		reg, err := npc.LoadRegistry(cfg.Game.Content.NPCsDir)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tNAME\tHP\tATK\tDEF\tXP")
		for _, t := range reg.All() {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n", t.ID, t.Name, t.HP, t.Attack, t.Defense, t.XPReward)
		}
		return w.Flush()
	},
}

var bossesCmd = &cobra.Command{
	Use:   "bosses",
	Short: "List the boss roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		roster, err := boss.LoadRoster(cfg.Game.Content.BossesDir)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tLEVEL\tHP\tENRAGE\tSKILLS")
		for _, t := range roster.All() {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.0f%%\t%d\n", t.ID, t.Name, t.Level, t.MaxHP, t.EnrageThreshold*100, len(t.Skills))
		}
		return w.Flush()
	},
}

func init() {
	curveCmd.Flags().IntVar(&curveMax, "max", 0, "highest level to print; 0 prints to the ceiling")
	enemiesCmd.Flags().IntVar(&enemiesLevel, "level", 0, "character level for spawn availability")
}
