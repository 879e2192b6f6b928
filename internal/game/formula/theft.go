package formula

import "github.com/cory-johannsen/runehall/internal/game/dice"

// stealSkillWeight is the per-level bonus a thief adds to the steal roll.
const stealSkillWeight = 3

// StealDC rescales an item's native difficulty rating in [7,150] onto the
// 20-point scale: floor(difficulty/7.5), clamped to at most 20.
//
// Postcondition: result <= 20.
func StealDC(itemDifficulty int) int {
	dc := itemDifficulty * 2 / 15
	if dc > 20 {
		dc = 20
	}
	return dc
}

// StealAttempt records one theft roll for auditing and result payloads.
type StealAttempt struct {
	Roll    int // raw d20
	Total   int // roll + dex modifier + skill*3
	DC      int // rescaled difficulty class
	Success bool
}

// StealCheck rolls a d20, adds the dexterity modifier and three times the
// theft skill level, and compares against the rescaled difficulty class.
// Success iff total >= DC.
func StealCheck(src dice.Source, dexterity, skillLevel, itemDifficulty int) StealAttempt {
	roll := dice.D20(src)
	total := roll + StatModifier(dexterity) + skillLevel*stealSkillWeight
	dc := StealDC(itemDifficulty)
	return StealAttempt{
		Roll:    roll,
		Total:   total,
		DC:      dc,
		Success: total >= dc,
	}
}
