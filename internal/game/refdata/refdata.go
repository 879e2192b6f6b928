// Package refdata provides the read-only reference-data lookups the rules
// engine performs by id: races, classes, and their creation/growth bonuses.
// The engine only sees the Provider interface, keeping it decoupled from
// where the data actually lives.
package refdata

import "fmt"

// Race describes a playable race and its creation bonuses.
type Race struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Element string `yaml:"element"` // innate element id: fire, water, earth, holy
	HPBonus int    `yaml:"hp_bonus"`
	MPBonus int    `yaml:"mp_bonus"`
	// StatBonuses maps stat names (strength, dexterity, constitution,
	// intelligence, wisdom, charisma) to creation-time adjustments.
	StatBonuses map[string]int `yaml:"stat_bonuses"`
}

// Validate checks the race record's invariants.
func (r *Race) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("race: id must not be empty")
	}
	if r.Name == "" {
		return fmt.Errorf("race %q: name must not be empty", r.ID)
	}
	if r.Element == "" {
		return fmt.Errorf("race %q: element must not be empty", r.ID)
	}
	return nil
}

// Class describes a character class: creation bonuses and per-level growth.
type Class struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	HPBonus      int    `yaml:"hp_bonus"`       // applied to starting HP
	MPBonus      int    `yaml:"mp_bonus"`       // applied to starting MP
	HPLevelBonus int    `yaml:"hp_level_bonus"` // applied on every level-up
	MPLevelBonus int    `yaml:"mp_level_bonus"` // applied on every level-up
}

// Validate checks the class record's invariants.
func (c *Class) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("class: id must not be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("class %q: name must not be empty", c.ID)
	}
	return nil
}

// Provider is the engine's read-only view of reference data.
type Provider interface {
	// Race returns the race record for id, or false if unknown.
	Race(id string) (*Race, bool)
	// Class returns the class record for id, or false if unknown.
	Class(id string) (*Class, bool)
}
