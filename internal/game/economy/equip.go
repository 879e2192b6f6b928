package economy

import (
	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/engine"
	"github.com/cory-johannsen/runehall/internal/game/item"
)

// slotFor returns a pointer into the equipment struct for a slot type.
func slotFor(eq *character.Equipment, slot item.Slot) *int64 {
	switch slot {
	case item.SlotWeapon:
		return &eq.Weapon
	case item.SlotArmor:
		return &eq.Armor
	case item.SlotShield:
		return &eq.Shield
	case item.SlotAmulet:
		return &eq.Amulet
	default:
		return nil
	}
}

// Equip places an owned item into its equipment slot. The slot must be
// empty; swapping requires an explicit unequip first.
//
// Postcondition: on error the inputs are untouched.
func Equip(char *character.Character, inst *item.Instance, def *item.Def) (*character.Character, *item.Instance, error) {
	if inst.DefID != def.ID {
		return nil, nil, engine.Validationf("instance %d is not a %q", inst.ID, def.ID)
	}
	if inst.OwnerID != char.ID {
		return nil, nil, engine.Conflictf("item %d is not owned by character %d", inst.ID, char.ID)
	}
	if inst.Equipped {
		return nil, nil, engine.Conflictf("item %d is already equipped", inst.ID)
	}

	c := char.Clone()
	slot := slotFor(&c.Equipment, def.Slot)
	if slot == nil {
		return nil, nil, engine.Validationf("item %q cannot be equipped", def.ID)
	}
	if *slot != 0 {
		return nil, nil, engine.Conflictf("%s slot is occupied by item %d", def.Slot, *slot)
	}
	*slot = inst.ID

	out := inst.Clone()
	out.Equipped = true
	return c, out, nil
}

// Unequip removes an equipped item from its slot.
//
// Postcondition: on error the inputs are untouched.
func Unequip(char *character.Character, inst *item.Instance, def *item.Def) (*character.Character, *item.Instance, error) {
	if inst.DefID != def.ID {
		return nil, nil, engine.Validationf("instance %d is not a %q", inst.ID, def.ID)
	}
	if inst.OwnerID != char.ID {
		return nil, nil, engine.Conflictf("item %d is not owned by character %d", inst.ID, char.ID)
	}
	if !inst.Equipped {
		return nil, nil, engine.Conflictf("item %d is not equipped", inst.ID)
	}

	c := char.Clone()
	slot := slotFor(&c.Equipment, def.Slot)
	if slot == nil || *slot != inst.ID {
		return nil, nil, engine.Conflictf("item %d does not occupy the %s slot", inst.ID, def.Slot)
	}
	*slot = 0

	out := inst.Clone()
	out.Equipped = false
	return c, out, nil
}
