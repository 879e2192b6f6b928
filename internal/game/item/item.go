// Package item defines item definitions (templates) and owned item
// instances, including quality tiers and durability.
package item

import (
	"fmt"
	"math"
)

// Slot identifies where an item can be equipped. SlotNone marks
// non-equippable goods such as materials.
type Slot string

const (
	SlotNone   Slot = ""
	SlotWeapon Slot = "weapon"
	SlotArmor  Slot = "armor"
	SlotShield Slot = "shield"
	SlotAmulet Slot = "amulet"
)

// Quality is the discrete item-grade tier, 0 (common) through 6 (mythic).
// Each tier scales price and stat bonuses multiplicatively.
type Quality int

// QualityMax is the highest quality tier.
const QualityMax = 6

// Valid reports whether q is a defined tier.
func (q Quality) Valid() bool { return q >= 0 && q <= QualityMax }

// String returns the display name of the tier.
func (q Quality) String() string {
	names := [...]string{"common", "decent", "fine", "superior", "exquisite", "legendary", "mythic"}
	if !q.Valid() {
		return "unknown"
	}
	return names[q]
}

// Def is an immutable item template loaded from content files.
type Def struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Slot  Slot   `yaml:"slot"`
	Price int    `yaml:"price"` // list price at quality 0
	Power int    `yaml:"power"` // weapon damage or armor mitigation contribution
	// Difficulty is the native steal difficulty rating in [7,150].
	Difficulty  int `yaml:"difficulty"`
	DurationMax int `yaml:"duration_max"`
}

// Validate checks the template's invariants.
func (d *Def) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("item def: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("item def %q: name must not be empty", d.ID)
	}
	if d.Price < 1 {
		return fmt.Errorf("item def %q: price must be >= 1, got %d", d.ID, d.Price)
	}
	if d.Difficulty < 7 || d.Difficulty > 150 {
		return fmt.Errorf("item def %q: difficulty must be in [7,150], got %d", d.ID, d.Difficulty)
	}
	if d.DurationMax < 1 {
		return fmt.Errorf("item def %q: duration_max must be >= 1, got %d", d.ID, d.DurationMax)
	}
	switch d.Slot {
	case SlotNone, SlotWeapon, SlotArmor, SlotShield, SlotAmulet:
	default:
		return fmt.Errorf("item def %q: unknown slot %q", d.ID, d.Slot)
	}
	return nil
}

// Instance is one owned copy of an item definition.
//
// Invariant: an instance is owned by exactly one character or by a shop
// (OwnerID == 0 with ShopID set), never both. An equipped instance must be
// owned by the equipping character.
type Instance struct {
	ID          int64
	DefID       string
	OwnerID     int64 // 0 = shop/NPC stock
	ShopID      int64 // 0 = not listed in any shop
	Quality     Quality
	Durability  int // <= Def.DurationMax
	Equipped    bool
	InstanceKey string // stable uuid, assigned at creation
}

// Clone returns a copy for all-or-nothing mutation.
func (i *Instance) Clone() *Instance {
	out := *i
	return &out
}

// QualityPriceModifiers are the default multiplicative price scales per tier.
// Operators may override them in configuration.
var QualityPriceModifiers = [QualityMax + 1]float64{1.0, 1.15, 1.35, 1.6, 2.0, 2.5, 3.25}

// AdjustedPrice scales a base list price by the quality tier modifier,
// flooring to whole gold with a minimum of 1.
//
// Precondition: q.Valid(); mods has QualityMax+1 entries.
func AdjustedPrice(basePrice int, q Quality, mods [QualityMax + 1]float64) int {
	if !q.Valid() {
		q = 0
	}
	price := int(math.Floor(float64(basePrice) * mods[q]))
	if price < 1 {
		price = 1
	}
	return price
}
