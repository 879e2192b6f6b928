// Package battle implements the turn-based battle state machine: session
// lifecycle, turn resolution, element advantage, and victory rewards.
package battle

import (
	"fmt"

	"github.com/cory-johannsen/runehall/internal/game/engine"
)

// State is the battle session lifecycle state.
// NotStarted -> InProgress -> {Won, Lost, Fled}; terminal states are absorbing.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateWon
	StateLost
	StateFled
)

// Terminal reports whether the state accepts no further turns.
func (s State) Terminal() bool {
	return s == StateWon || s == StateLost || s == StateFled
}

// String returns the human-readable state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateInProgress:
		return "in_progress"
	case StateWon:
		return "won"
	case StateLost:
		return "lost"
	case StateFled:
		return "fled"
	default:
		return "unknown"
	}
}

// Action identifies what the player does on their turn.
// The zero value (ActionUnknown) is intentionally invalid.
type Action int

const (
	ActionUnknown Action = iota
	ActionAttack
	ActionDefend
	ActionFlee
)

// String returns the human-readable action name.
func (a Action) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionDefend:
		return "defend"
	case ActionFlee:
		return "flee"
	default:
		return "unknown"
	}
}

// ErrNoActiveBattle is returned when a turn is submitted against a terminal
// or absent session.
var ErrNoActiveBattle = fmt.Errorf("no active battle: %w", engine.ErrStateConflict)

// Element ids.
const (
	ElementFire  = "fire"
	ElementWater = "water"
	ElementEarth = "earth"
	ElementHoly  = "holy"
)

// ElementMultiplier returns the damage multiplier for an attacker element
// versus a defender element. Advantage pairs (water>fire, fire>earth,
// earth>water) deal x1.25; the reverse pairs x0.75; all holy interactions and
// self-matchups x1.0.
func ElementMultiplier(attacker, defender string) float64 {
	if attacker == defender || attacker == ElementHoly || defender == ElementHoly {
		return 1.0
	}
	switch {
	case attacker == ElementWater && defender == ElementFire,
		attacker == ElementFire && defender == ElementEarth,
		attacker == ElementEarth && defender == ElementWater:
		return 1.25
	case attacker == ElementFire && defender == ElementWater,
		attacker == ElementEarth && defender == ElementFire,
		attacker == ElementWater && defender == ElementEarth:
		return 0.75
	}
	return 1.0
}

// Config holds every battle tunable. All values are injected; the engine
// hardcodes none of them.
type Config struct {
	DailyBattleLimit       int     `mapstructure:"daily_battle_limit"`       // max battle starts per character per day
	FleeChancePercent      int     `mapstructure:"flee_chance_percent"`      // chance a flee attempt succeeds
	HitChancePercent       int     `mapstructure:"hit_chance_percent"`       // chance an attack lands
	CritChancePercent      int     `mapstructure:"crit_chance_percent"`      // chance a landed attack crits
	CritMultiplier         float64 `mapstructure:"crit_multiplier"`          // damage scale on crit, e.g. 2.0
	DefendReductionPercent int     `mapstructure:"defend_reduction_percent"` // incoming damage reduction while defending
	DamageVariance         int     `mapstructure:"damage_variance"`          // upper bound of the random damage add
	RewardModifierPercent  int     `mapstructure:"reward_modifier_percent"`  // global reward scale adjustment
	LevelDeltaPercent      int     `mapstructure:"level_delta_percent"`      // reward swing per level of monster-player difference
	XPPenaltyPercent       int     `mapstructure:"xp_penalty_percent"`       // leveling curve penalty
	HPGainRandMax          int     `mapstructure:"hp_gain_rand_max"`         // random HP increment bound on level-up
	MPGainRandMax          int     `mapstructure:"mp_gain_rand_max"`         // random MP increment bound on level-up
	SkillPointsPerLevel    int     `mapstructure:"skill_points_per_level"`
	HealCost               int64   `mapstructure:"heal_cost"`
	ResurrectCost          int64   `mapstructure:"resurrect_cost"`
}

// Validate reports a ConfigurationError for out-of-range tunables.
func (c Config) Validate() error {
	if c.DailyBattleLimit < 1 {
		return engine.Configf("daily battle limit %d must be >= 1", c.DailyBattleLimit)
	}
	for name, v := range map[string]int{
		"flee chance":      c.FleeChancePercent,
		"hit chance":       c.HitChancePercent,
		"crit chance":      c.CritChancePercent,
		"defend reduction": c.DefendReductionPercent,
	} {
		if v < 0 || v > 100 {
			return engine.Configf("%s %d must be in [0,100]", name, v)
		}
	}
	if c.CritMultiplier < 1 {
		return engine.Configf("crit multiplier %.2f must be >= 1", c.CritMultiplier)
	}
	if c.DamageVariance < 0 {
		return engine.Configf("damage variance %d must be >= 0", c.DamageVariance)
	}
	if c.HealCost < 0 || c.ResurrectCost < 0 {
		return engine.Configf("temple costs must be >= 0")
	}
	return nil
}

// Loadout carries the equipment-derived combat contributions the caller
// computes from the character's equipped items.
type Loadout struct {
	WeaponPower int
	ArmorPower  int
}
