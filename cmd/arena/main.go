// Package main provides the arena command: a simulator for skirmishes, boss
// encounters and ranked duels, plus content inspection commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	seed       uint64
	storeKind  string
)

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Turn-based combat and progression simulator",
	Long: `arena runs PvE skirmishes, boss encounters and ranked PvP duels against
in-memory stores or the PostgreSQL and Redis backends.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file; empty uses defaults")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "dice seed for reproducible runs; 0 uses crypto/rand")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", storeMemory, "storage backend: memory or durable (postgres + redis)")

	rootCmd.AddCommand(skirmishCmd)
	rootCmd.AddCommand(bossCmd)
	rootCmd.AddCommand(duelCmd)
	rootCmd.AddCommand(curveCmd)
	rootCmd.AddCommand(enemiesCmd)
	rootCmd.AddCommand(bossesCmd)
}
