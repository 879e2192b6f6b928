// Package config provides Viper-based configuration loading for the game
// rules server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/runehall/internal/game/battle"
	"github.com/cory-johannsen/runehall/internal/game/craft"
	"github.com/cory-johannsen/runehall/internal/game/economy"
	"github.com/cory-johannsen/runehall/internal/game/encounter"
	"github.com/cory-johannsen/runehall/internal/game/jail"
	"github.com/cory-johannsen/runehall/internal/game/vault"
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

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig holds the reference-data file locations.
type ContentConfig struct {
	// RacesPath and ClassesPath point at the YAML reference-data files.
	RacesPath   string `mapstructure:"races_path"`
	ClassesPath string `mapstructure:"classes_path"`
	// ItemsPath points at the item definition catalog.
	ItemsPath string `mapstructure:"items_path"`
	// MonstersDir holds one YAML template per monster.
	MonstersDir string `mapstructure:"monsters_dir"`
	// ScriptsDir holds optional operator Lua policy scripts. Empty disables
	// scripting.
	ScriptsDir string `mapstructure:"scripts_dir"`
	// ScriptInstLimit bounds Lua opcodes per hook call; 0 uses the default.
	ScriptInstLimit int `mapstructure:"script_inst_limit"`
}

// SchedulerConfig holds the periodic job intervals.
type SchedulerConfig struct {
	// StockVariationInterval is how often stock prices move.
	StockVariationInterval time.Duration `mapstructure:"stock_variation_interval"`
	// DailyResetInterval is how often the daily counters reset sweep runs.
	DailyResetInterval time.Duration `mapstructure:"daily_reset_interval"`
}

// GameConfig groups every game tunable. Each section is validated by its
// domain package.
type GameConfig struct {
	Battle    battle.Config    `mapstructure:"battle"`
	Vault     vault.Config     `mapstructure:"vault"`
	Jail      jail.Config      `mapstructure:"jail"`
	Economy   economy.Config   `mapstructure:"economy"`
	Craft     craft.Config     `mapstructure:"craft"`
	Encounter encounter.Config `mapstructure:"encounter"`
}

// Validate checks every game tunable.
func (g GameConfig) Validate() error {
	var errs []string
	for name, v := range map[string]interface{ Validate() error }{
		"battle":    g.Battle,
		"vault":     g.Vault,
		"jail":      g.Jail,
		"economy":   g.Economy,
		"craft":     g.Craft,
		"encounter": g.Encounter,
	} {
		if err := v.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("game.%s: %v", name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Content   ContentConfig   `mapstructure:"content"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Game      GameConfig      `mapstructure:"game"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateScheduler(c.Scheduler); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Game.Validate(); err != nil {
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

func validateContent(c ContentConfig) error {
	var errs []string
	if c.RacesPath == "" {
		errs = append(errs, "content.races_path must not be empty")
	}
	if c.ClassesPath == "" {
		errs = append(errs, "content.classes_path must not be empty")
	}
	if c.ItemsPath == "" {
		errs = append(errs, "content.items_path must not be empty")
	}
	if c.MonstersDir == "" {
		errs = append(errs, "content.monsters_dir must not be empty")
	}
	if c.ScriptInstLimit < 0 {
		errs = append(errs, fmt.Sprintf("content.script_inst_limit must be >= 0, got %d", c.ScriptInstLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateScheduler(s SchedulerConfig) error {
	var errs []string
	if s.StockVariationInterval <= 0 {
		errs = append(errs, "scheduler.stock_variation_interval must be positive")
	}
	if s.DailyResetInterval <= 0 {
		errs = append(errs, "scheduler.daily_reset_interval must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with RUNEHALL_ prefix
	v.SetEnvPrefix("RUNEHALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "runehall")
	v.SetDefault("database.password", "runehall")
	v.SetDefault("database.name", "runehall")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("content.races_path", "content/races.yaml")
	v.SetDefault("content.classes_path", "content/classes.yaml")
	v.SetDefault("content.items_path", "content/items.yaml")
	v.SetDefault("content.monsters_dir", "content/monsters")
	v.SetDefault("content.scripts_dir", "")
	v.SetDefault("content.script_inst_limit", 0)

	v.SetDefault("scheduler.stock_variation_interval", "24h")
	v.SetDefault("scheduler.daily_reset_interval", "24h")

	v.SetDefault("game.battle.daily_battle_limit", 10)
	v.SetDefault("game.battle.flee_chance_percent", 50)
	v.SetDefault("game.battle.hit_chance_percent", 85)
	v.SetDefault("game.battle.crit_chance_percent", 10)
	v.SetDefault("game.battle.crit_multiplier", 2.0)
	v.SetDefault("game.battle.defend_reduction_percent", 50)
	v.SetDefault("game.battle.damage_variance", 4)
	v.SetDefault("game.battle.reward_modifier_percent", 0)
	v.SetDefault("game.battle.level_delta_percent", 10)
	v.SetDefault("game.battle.xp_penalty_percent", 10)
	v.SetDefault("game.battle.hp_gain_rand_max", 4)
	v.SetDefault("game.battle.mp_gain_rand_max", 2)
	v.SetDefault("game.battle.skill_points_per_level", 1)
	v.SetDefault("game.battle.heal_cost", 50)
	v.SetDefault("game.battle.resurrect_cost", 200)

	v.SetDefault("game.vault.interest_rate", 0.02)
	v.SetDefault("game.vault.interest_period", "24h")
	v.SetDefault("game.vault.loan_rate", 0.05)
	v.SetDefault("game.vault.loan_period", "24h")
	v.SetDefault("game.vault.loan_max_sum", 5000)
	v.SetDefault("game.vault.warehouse_tax_percent", 5)

	v.SetDefault("game.jail.chance_percent", 40)
	v.SetDefault("game.jail.tiers", []map[string]interface{}{
		{"max_price": 100, "duration": "5m"},
		{"max_price": 300, "duration": "15m"},
		{"max_price": 500, "duration": "30m"},
		{"max_price": 1000, "duration": "1h"},
	})
	v.SetDefault("game.jail.default_duration", "2h")
	v.SetDefault("game.jail.bail_minimum", 500)
	v.SetDefault("game.jail.bail_price_factor", 3)

	v.SetDefault("game.economy.trading_power_percent", 2)
	v.SetDefault("game.economy.trading_cap_percent", 30)
	v.SetDefault("game.economy.shop_tax_percent", 10)
	v.SetDefault("game.economy.daily_theft_limit", 3)
	v.SetDefault("game.economy.daily_stock_trade_limit", 5)
	v.SetDefault("game.economy.quality_price_modifiers", []float64{1.0, 1.15, 1.35, 1.6, 2.0, 2.5, 3.25})

	v.SetDefault("game.craft.daily_work_limit", 5)
	v.SetDefault("game.craft.mining.base_percent", 30)
	v.SetDefault("game.craft.mining.per_level_percent", 5)
	v.SetDefault("game.craft.mining.cap_percent", 90)
	v.SetDefault("game.craft.mining.output_def_id", "iron-ore")
	v.SetDefault("game.craft.stone_cutting.base_percent", 25)
	v.SetDefault("game.craft.stone_cutting.per_level_percent", 5)
	v.SetDefault("game.craft.stone_cutting.cap_percent", 85)
	v.SetDefault("game.craft.stone_cutting.input_def_id", "raw-stone")
	v.SetDefault("game.craft.stone_cutting.output_def_id", "cut-stone")
	v.SetDefault("game.craft.enchanting.base_percent", 20)
	v.SetDefault("game.craft.enchanting.per_level_percent", 5)
	v.SetDefault("game.craft.enchanting.cap_percent", 75)
	v.SetDefault("game.craft.enchanting.material_def_id", "arcane-gem")
	v.SetDefault("game.craft.forging.base_percent", 30)
	v.SetDefault("game.craft.forging.per_level_percent", 4)
	v.SetDefault("game.craft.forging.cap_percent", 95)
	v.SetDefault("game.craft.forging.crit_reserve_percent", 5)

	v.SetDefault("game.encounter.level_window", 2)
}
