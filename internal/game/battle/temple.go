package battle

import (
	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/engine"
)

// Heal restores HP/MP to maximum for the configured gold cost. It is a side
// operation outside the turn loop and is refused during an active battle.
//
// Postcondition: on error the input is untouched.
func Heal(char *character.Character, cfg Config) (*character.Character, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if char.IsBattling {
		return nil, engine.Conflictf("cannot heal during an active battle")
	}
	if char.IsDead {
		return nil, engine.Conflictf("dead characters must be resurrected, not healed")
	}

	out := char.Clone()
	if err := out.SpendGold(cfg.HealCost); err != nil {
		return nil, err
	}
	out.CurrentHP = out.MaxHP
	out.CurrentMP = out.MaxMP
	return out, nil
}

// Resurrect clears isDead and restores the character to full for the larger
// configured cost. Forbidden while alive.
//
// Postcondition: on error the input is untouched.
func Resurrect(char *character.Character, cfg Config) (*character.Character, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !char.IsDead {
		return nil, engine.Conflictf("character %d is not dead", char.ID)
	}

	out := char.Clone()
	if err := out.SpendGold(cfg.ResurrectCost); err != nil {
		return nil, err
	}
	out.IsDead = false
	out.CurrentHP = out.MaxHP
	out.CurrentMP = out.MaxMP
	return out, nil
}
