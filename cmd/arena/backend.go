package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/game/boss"
	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/keylock"
	"github.com/cory-johannsen/arena/internal/game/leveling"
	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/pve"
	"github.com/cory-johannsen/arena/internal/game/pvp"
	"github.com/cory-johannsen/arena/internal/game/rating"
	"github.com/cory-johannsen/arena/internal/observability"
	"github.com/cory-johannsen/arena/internal/storage/memory"
	"github.com/cory-johannsen/arena/internal/storage/postgres"
	"github.com/cory-johannsen/arena/internal/storage/redisstore"
)

const (
	storeMemory  = "memory"
	storeDurable = "durable"
)

// app is the wired engine for one command invocation.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	curve  *leveling.Curve
	pve    *pve.Coordinator
	pvp    *pvp.Coordinator

	createCharacter func(ctx context.Context, c *character.Character) error
	close           func()
}

func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	curve, err := leveling.NewCurve(cfg.Game.Leveling)
	if err != nil {
		return nil, err
	}
	enemies, err := npc.LoadRegistry(cfg.Game.Content.NPCsDir)
	if err != nil {
		return nil, err
	}
	spawns, err := npc.LoadSpawnTable(cfg.Game.Content.SpawnFile)
	if err != nil {
		return nil, err
	}
	roster, err := boss.LoadRoster(cfg.Game.Content.BossesDir)
	if err != nil {
		return nil, err
	}

	src := dice.NewCryptoSource()
	if seed != 0 {
		src = dice.NewSeededSource(seed)
	}
	src = dice.NewLoggedSource(src, observability.Named(logger, "dice"))
	locks := keylock.New()

	a := &app{cfg: cfg, logger: logger, curve: curve, close: func() { _ = logger.Sync() }}
	pveDeps := pve.Deps{
		Curve: curve, Enemies: enemies, Spawns: spawns, Bosses: roster,
		Dice: src, Locks: locks, Logger: observability.Named(logger, "pve"),
	}
	pvpDeps := pvp.Deps{
		Model: rating.NewModel(cfg.Game.Rating),
		Dice:  src, Locks: locks, Logger: observability.Named(logger, "pvp"),
	}

	switch storeKind {
	case storeMemory:
		chars := memory.NewCharacterStore()
		a.createCharacter = func(_ context.Context, c *character.Character) error {
			chars.Put(c)
			return nil
		}
		pveDeps.Characters, pvpDeps.Characters = chars, chars
		pveDeps.Battles = memory.NewBattleStore()
		pveDeps.BossStates = memory.NewBossStateStore()
		pveDeps.Rewards = memory.NewWallet()
		pveDeps.Quests = memory.NewQuestLog()
		pvpDeps.Matches = memory.NewMatchStore()
		pvpDeps.Ratings = memory.NewRatingStore()

	case storeDurable:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		rdb := redisstore.NewClient(cfg.Redis)
		if err := rdb.Ping(ctx).Err(); err != nil {
			pool.Close()
			return nil, fmt.Errorf("pinging redis: %w", err)
		}
		a.close = func() {
			_ = rdb.Close()
			pool.Close()
			_ = logger.Sync()
		}
		chars := postgres.NewCharacterRepository(pool.DB())
		a.createCharacter = chars.Create
		pveDeps.Characters, pvpDeps.Characters = chars, chars
		pveDeps.Battles = redisstore.NewArchivingBattleStore(
			redisstore.NewBattleStore(rdb, cfg.Redis.BattleTTL),
			postgres.NewBattleRepository(pool.DB()),
		)
		pveDeps.BossStates = redisstore.NewBossStateStore(rdb, cfg.Redis.BattleTTL)
		pveDeps.Rewards = postgres.NewRewardRepository(pool.DB())
		pveDeps.Quests = postgres.NewQuestRepository(pool.DB())
		pvpDeps.Matches = postgres.NewMatchRepository(pool.DB())
		pvpDeps.Ratings = postgres.NewRatingRepository(pool.DB())

	default:
		return nil, fmt.Errorf("unknown store %q: must be %s or %s", storeKind, storeMemory, storeDurable)
	}

	if a.pve, err = pve.NewCoordinator(pveDeps); err != nil {
		a.close()
		return nil, err
	}
	if a.pvp, err = pvp.NewCoordinator(pvpDeps); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// newCharacter creates and persists a fresh character of class at level.
func (a *app) newCharacter(ctx context.Context, id, name, className string, level int) (*character.Character, error) {
	class, err := character.ParseClass(className)
	if err != nil {
		return nil, err
	}
	c := &character.Character{
		ID:    id,
		Name:  name,
		Class: class,
		Level: level,
		XP:    leveling.CumulativeXP(level),
		Stats: a.curve.BaseStats(class, level),
	}
	if err := a.createCharacter(ctx, c); err != nil {
		return nil, fmt.Errorf("creating character %s: %w", name, err)
	}
	return c, nil
}
