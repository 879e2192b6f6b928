// Package character defines the character domain model: the root of truth
// for a player's resources. Resolvers receive a snapshot, mutate a copy, and
// return it; they never touch storage.
package character

import (
	"time"

	"github.com/cory-johannsen/runehall/internal/game/engine"
	"github.com/cory-johannsen/runehall/internal/game/formula"
)

// Skill keys. A missing map entry means the skill is unlearned (level 0).
const (
	SkillTrading      = "trading"
	SkillTheft        = "theft"
	SkillMining       = "mining"
	SkillStoneCutting = "stone_cutting"
	SkillEnchanting   = "enchanting"
	SkillForging      = "forging"
)

// Stats holds the six core stat values.
//
// Invariant: every value stays in [formula.StatMin, formula.StatMax] after
// any modifier.
type Stats struct {
	Strength     int
	Dexterity    int
	Constitution int
	Intelligence int
	Wisdom       int
	Charisma     int
}

// InRange reports whether every stat is inside [StatMin, StatMax].
func (s Stats) InRange() bool {
	for _, v := range [...]int{s.Strength, s.Dexterity, s.Constitution, s.Intelligence, s.Wisdom, s.Charisma} {
		if v < formula.StatMin || v > formula.StatMax {
			return false
		}
	}
	return true
}

// DailyCounters tracks per-day usage for gated action categories. They are
// reset externally once per day; resolvers only increment and compare against
// configured limits.
type DailyCounters struct {
	Battles     int
	Works       int
	Thefts      int
	StockTrades int
}

// Equipment holds the equipped item instance id per slot. 0 means empty.
//
// Invariant: a non-zero slot references an item the character owns whose type
// matches the slot.
type Equipment struct {
	Weapon int64
	Armor  int64
	Shield int64
	Amulet int64
}

// Character is a player character's persistent state.
//
// ID and AccountID are set by the persistence layer; zero values indicate an
// unsaved character.
type Character struct {
	ID        int64
	AccountID int64

	Name    string
	Race    string // race id in reference data
	Class   string // class id in reference data
	Element string // innate element id, derived from race at creation

	Level int
	XP    int
	Gold  int64

	Stats Stats

	MaxHP     int
	CurrentHP int
	MaxMP     int
	CurrentMP int

	SkillPoints int
	Skills      map[string]int

	Equipment Equipment
	Counters  DailyCounters

	IsBattling bool
	IsDead     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy. Resolvers mutate clones so a failed operation
// leaves the caller's snapshot untouched.
func (c *Character) Clone() *Character {
	out := *c
	out.Skills = make(map[string]int, len(c.Skills))
	for k, v := range c.Skills {
		out.Skills[k] = v
	}
	return &out
}

// SkillLevel returns the character's level in the named skill, 0 if unlearned.
func (c *Character) SkillLevel(key string) int {
	return c.Skills[key]
}

// ApplyDamage reduces CurrentHP by amount, flooring at zero and setting
// IsDead when HP reaches 0.
//
// Precondition: amount >= 0.
// Postcondition: CurrentHP >= 0; IsDead == (CurrentHP == 0) if it was false.
func (c *Character) ApplyDamage(amount int) {
	c.CurrentHP -= amount
	if c.CurrentHP <= 0 {
		c.CurrentHP = 0
		c.IsDead = true
	}
}

// SpendGold deducts amount from the character's gold.
//
// Postcondition: on error the character is unchanged.
func (c *Character) SpendGold(amount int64) error {
	if amount < 0 {
		return engine.Validationf("gold amount %d must not be negative", amount)
	}
	if c.Gold < amount {
		return engine.Conflictf("insufficient gold: have %d, need %d", c.Gold, amount)
	}
	c.Gold -= amount
	return nil
}

// SpendSkillPoint converts one unspent skill point into a level of the named
// skill.
func (c *Character) SpendSkillPoint(skill string) error {
	switch skill {
	case SkillTrading, SkillTheft, SkillMining, SkillStoneCutting, SkillEnchanting, SkillForging:
	default:
		return engine.Validationf("unknown skill %q", skill)
	}
	if c.SkillPoints < 1 {
		return engine.Conflictf("no unspent skill points")
	}
	c.SkillPoints--
	if c.Skills == nil {
		c.Skills = make(map[string]int)
	}
	c.Skills[skill]++
	return nil
}

// ResetDailyCounters zeroes all daily counters. Invoked by the external
// once-per-day scheduler.
func (c *Character) ResetDailyCounters() {
	c.Counters = DailyCounters{}
}

// Validate checks the record's structural invariants.
func (c *Character) Validate() error {
	if c.Name == "" {
		return engine.Validationf("character name must not be empty")
	}
	if !c.Stats.InRange() {
		return engine.Validationf("stats out of range [%d,%d]", formula.StatMin, formula.StatMax)
	}
	if c.Level < 1 {
		return engine.Validationf("level %d must be >= 1", c.Level)
	}
	if c.XP < 0 {
		return engine.Validationf("xp %d must be >= 0", c.XP)
	}
	if c.Gold < 0 {
		return engine.Validationf("gold %d must be >= 0", c.Gold)
	}
	if c.CurrentHP < 0 || c.CurrentMP < 0 {
		return engine.Validationf("hp/mp must be >= 0")
	}
	if c.CurrentHP == 0 && !c.IsDead {
		return engine.Validationf("character at 0 HP must be dead")
	}
	return nil
}
