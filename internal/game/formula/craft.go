package formula

import "github.com/cory-johannsen/runehall/internal/game/dice"

// ForgeOutcome classifies a single forging attempt.
type ForgeOutcome int

const (
	// ForgeCriticalFailure destroys the consumed materials regardless of skill.
	ForgeCriticalFailure ForgeOutcome = iota
	// ForgeFailure produces nothing; materials survive.
	ForgeFailure
	// ForgeSuccess produces an item whose quality comes from a second roll.
	ForgeSuccess
)

// String returns the human-readable name of the ForgeOutcome.
func (o ForgeOutcome) String() string {
	switch o {
	case ForgeCriticalFailure:
		return "critical_failure"
	case ForgeFailure:
		return "failure"
	case ForgeSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// SkillCheck draws one uniform [0,100) roll and compares it against a
// skill-level-scaled threshold min(capPercent, basePercent+skillLevel*perLevel).
// It backs mining, stone-cutting, and enchanting attempts; each craft supplies
// its own cap (mining 90, stone-cutting 85, enchanting 75).
//
// Postcondition: success probability never exceeds capPercent/100.
func SkillCheck(src dice.Source, skillLevel, basePercent, perLevelPercent, capPercent int) bool {
	threshold := basePercent + skillLevel*perLevelPercent
	if threshold > capPercent {
		threshold = capPercent
	}
	if threshold <= 0 {
		return false
	}
	return dice.Percent(src) < threshold
}

// ForgeCheck performs the forging success roll. The first critReservePercent
// points of the roll space always produce ForgeCriticalFailure, no matter how
// skilled the smith; the rest of the space succeeds below the scaled
// threshold min(capPercent, basePercent+skillLevel*perLevel).
//
// Postcondition: for any skill level, a roll below critReservePercent yields
// ForgeCriticalFailure.
func ForgeCheck(src dice.Source, skillLevel, basePercent, perLevelPercent, capPercent, critReservePercent int) ForgeOutcome {
	roll := dice.Percent(src)
	if roll < critReservePercent {
		return ForgeCriticalFailure
	}
	threshold := basePercent + skillLevel*perLevelPercent
	if threshold > capPercent {
		threshold = capPercent
	}
	if roll < threshold {
		return ForgeSuccess
	}
	return ForgeFailure
}

// QualityBucket gates one quality tier behind a minimum skill level and a
// roll threshold. Buckets are evaluated highest tier first.
type QualityBucket struct {
	Tier      int `mapstructure:"tier"`      // quality tier awarded, 0-6
	MinSkill  int `mapstructure:"min_skill"` // minimum forge skill to access this bucket
	Threshold int `mapstructure:"threshold"` // roll must be >= Threshold (out of 100) to land here
}

// ForgeQuality selects the quality tier of a successfully forged item with a
// second independent [0,100) roll. Buckets must be ordered highest tier
// first; the first bucket whose skill gate and threshold both pass wins, so a
// skilled crafter who rolls low still lands in a valid low tier. If nothing
// matches, tier 0 is returned — there is never "no result".
//
// Postcondition: result >= 0.
func ForgeQuality(src dice.Source, skillLevel int, buckets []QualityBucket) int {
	roll := dice.Percent(src)
	for _, b := range buckets {
		if skillLevel >= b.MinSkill && roll >= b.Threshold {
			return b.Tier
		}
	}
	return 0
}
