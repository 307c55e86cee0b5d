// Package config provides Viper-based configuration loading for the arena engine.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds settings for the active-battle Redis store.
type RedisConfig struct {
	// Addr is the "host:port" of the Redis server.
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// BattleTTL bounds how long an unresolved battle survives without a turn.
	BattleTTL time.Duration `mapstructure:"battle_ttl"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// StatGrowth is a per-level stat increment. Zero fields grant nothing.
type StatGrowth struct {
	HP           float64 `mapstructure:"hp"`
	MP           float64 `mapstructure:"mp"`
	Attack       float64 `mapstructure:"attack"`
	Defense      float64 `mapstructure:"defense"`
	Speed        float64 `mapstructure:"speed"`
	CritChance   float64 `mapstructure:"crit_chance"`
	Strength     int     `mapstructure:"strength"`
	Agility      int     `mapstructure:"agility"`
	Intelligence int     `mapstructure:"intelligence"`
}

// LevelingConfig holds the leveling curve ceiling and growth tables.
type LevelingConfig struct {
	MaxLevel int        `mapstructure:"max_level"`
	PerLevel StatGrowth `mapstructure:"per_level"`
	// ClassBonuses is keyed by lower-case class name: warrior, mage, rogue.
	ClassBonuses map[string]StatGrowth `mapstructure:"class_bonuses"`
}

// RatingConfig holds ranked-duel rating parameters.
type RatingConfig struct {
	KFactor float64 `mapstructure:"k_factor"`
	Default int     `mapstructure:"default"`
	Season  string  `mapstructure:"season"`
}

// ContentConfig points at optional YAML content directories. Empty paths
// select the embedded default content.
type ContentConfig struct {
	NPCsDir   string `mapstructure:"npcs_dir"`
	BossesDir string `mapstructure:"bosses_dir"`
	SpawnFile string `mapstructure:"spawn_file"`
}

// GameConfig groups the tunable game rules.
type GameConfig struct {
	Leveling LevelingConfig `mapstructure:"leveling"`
	Rating   RatingConfig   `mapstructure:"rating"`
	Content  ContentConfig  `mapstructure:"content"`
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Game     GameConfig     `mapstructure:"game"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRedis(c.Redis); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRedis(r RedisConfig) error {
	var errs []string
	if r.Addr == "" {
		errs = append(errs, "redis.addr must not be empty")
	}
	if r.DB < 0 {
		errs = append(errs, fmt.Sprintf("redis.db must be >= 0, got %d", r.DB))
	}
	if r.BattleTTL <= 0 {
		errs = append(errs, "redis.battle_ttl must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.Leveling.MaxLevel < 2 {
		errs = append(errs, fmt.Sprintf("game.leveling.max_level must be >= 2, got %d", g.Leveling.MaxLevel))
	}
	if hasNegativeGrowth(g.Leveling.PerLevel) {
		errs = append(errs, "game.leveling.per_level must not contain negative growth")
	}
	validClasses := map[string]bool{"warrior": true, "mage": true, "rogue": true}
	for name, bonus := range g.Leveling.ClassBonuses {
		if !validClasses[strings.ToLower(name)] {
			errs = append(errs, fmt.Sprintf("game.leveling.class_bonuses has unknown class %q", name))
		}
		if hasNegativeGrowth(bonus) {
			errs = append(errs, fmt.Sprintf("game.leveling.class_bonuses.%s must not contain negative growth", name))
		}
	}
	if g.Rating.KFactor <= 0 {
		errs = append(errs, fmt.Sprintf("game.rating.k_factor must be positive, got %v", g.Rating.KFactor))
	}
	if g.Rating.Default < 0 {
		errs = append(errs, fmt.Sprintf("game.rating.default must be >= 0, got %d", g.Rating.Default))
	}
	if g.Rating.Season == "" {
		errs = append(errs, "game.rating.season must not be empty")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func hasNegativeGrowth(s StatGrowth) bool {
	return s.HP < 0 || s.MP < 0 || s.Attack < 0 || s.Defense < 0 || s.Speed < 0 ||
		s.CritChance < 0 || s.Strength < 0 || s.Agility < 0 || s.Intelligence < 0
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ARENA_ prefix
	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration produced by the defaults alone.
//
// Postcondition: The returned Config passes Validate.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic("config: defaults do not validate: " + err.Error())
	}
	return cfg
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "arena")
	v.SetDefault("database.password", "arena")
	v.SetDefault("database.name", "arena")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.battle_ttl", "24h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("game.leveling.max_level", 50)
	v.SetDefault("game.leveling.per_level.hp", 20)
	v.SetDefault("game.leveling.per_level.mp", 10)
	v.SetDefault("game.leveling.per_level.attack", 2)
	v.SetDefault("game.leveling.per_level.defense", 1.5)
	v.SetDefault("game.leveling.per_level.speed", 0.5)
	v.SetDefault("game.leveling.per_level.crit_chance", 0.002)
	v.SetDefault("game.leveling.class_bonuses", map[string]any{
		"warrior": map[string]any{"strength": 2, "hp": 20},
		"mage":    map[string]any{"intelligence": 2, "mp": 20},
		"rogue":   map[string]any{"agility": 2, "speed": 1.0, "crit_chance": 0.01},
	})

	v.SetDefault("game.rating.k_factor", 32)
	v.SetDefault("game.rating.default", 1000)
	v.SetDefault("game.rating.season", "2025-01")
}
