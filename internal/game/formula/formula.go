// Package formula is the pure formula library of the rules engine: stat
// rolls, XP curves, level-up growth, trading discounts, interest, crafting,
// theft, and repair costs. Every function is input -> output with no hidden
// state; randomized formulas draw exclusively from an injected dice.Source so
// results are reproducible given the same draw sequence.
package formula

import (
	"math"

	"github.com/cory-johannsen/runehall/internal/game/dice"
)

// StatMin and StatMax bound every core stat value.
const (
	StatMin = 3
	StatMax = 20
)

// floorDiv returns x/d rounded toward negative infinity.
// Go's integer division truncates toward zero, which is wrong for the
// (stat-10)/2 modifier at stats below 10.
func floorDiv(x, d int) int {
	q := x / d
	if (x%d != 0) && ((x < 0) != (d < 0)) {
		q--
	}
	return q
}

// StatModifier returns floor((stat-10)/2), the ability modifier used by
// damage, theft, trading, and level-up growth formulas.
func StatModifier(stat int) int {
	return floorDiv(stat-10, 2)
}

// StatRoll produces a core stat value: four six-sided dice, drop the lowest,
// summed, clamped to [StatMin, StatMax].
//
// Postcondition: StatMin <= result <= StatMax.
func StatRoll(src dice.Source) int {
	lowest := 7
	total := 0
	for i := 0; i < 4; i++ {
		d := dice.D6(src)
		total += d
		if d < lowest {
			lowest = d
		}
	}
	total -= lowest
	if total < StatMin {
		return StatMin
	}
	if total > StatMax {
		return StatMax
	}
	return total
}

// XPForLevel returns the XP required to advance from level to level+1:
// floor(100 * (1+penalty)^(level-1)). penaltyPercent is the configured
// leveling penalty, e.g. 10 for 10%.
//
// Postcondition: XPForLevel(1, p) == 100 for any p.
func XPForLevel(level, penaltyPercent int) int {
	if level < 1 {
		return 0
	}
	p := float64(penaltyPercent) / 100.0
	return int(math.Floor(100 * math.Pow(1+p, float64(level-1))))
}

// TotalXPForLevel returns the cumulative XP threshold at which a character
// reaches level. Level 1 requires 0 XP; level 2 requires XPForLevel(1).
func TotalXPForLevel(level, penaltyPercent int) int {
	total := 0
	for l := 1; l < level; l++ {
		total += XPForLevel(l, penaltyPercent)
	}
	return total
}

// ShouldLevelUp reports whether a character at level with cumulative xp has
// crossed the next level threshold. Callers loop on this to absorb rewards
// that cross several thresholds at once.
func ShouldLevelUp(level, xp, penaltyPercent int) bool {
	return xp >= TotalXPForLevel(level+1, penaltyPercent)
}

// XPToNextLevel returns the XP still needed to reach level+1, floored at 0.
func XPToNextLevel(level, xp, penaltyPercent int) int {
	remaining := TotalXPForLevel(level+1, penaltyPercent) - xp
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HPGainOnLevelUp computes the HP gained on a level-up: the constitution
// modifier (floored at 1) plus the class bonus plus a uniform random
// increment in [0, randMax].
//
// Postcondition: result >= 1.
func HPGainOnLevelUp(constitution, classBonus, randMax int, src dice.Source) int {
	mod := StatModifier(constitution)
	if mod < 1 {
		mod = 1
	}
	gain := mod + classBonus
	if randMax > 0 {
		gain += src.Intn(randMax + 1)
	}
	if gain < 1 {
		gain = 1
	}
	return gain
}

// MPGainOnLevelUp computes the MP gained on a level-up: the intelligence
// modifier (floored at 0) plus the class bonus plus a uniform random
// increment in [0, randMax].
//
// Postcondition: result >= 0.
func MPGainOnLevelUp(intelligence, classBonus, randMax int, src dice.Source) int {
	mod := StatModifier(intelligence)
	if mod < 0 {
		mod = 0
	}
	gain := mod + classBonus
	if randMax > 0 {
		gain += src.Intn(randMax + 1)
	}
	if gain < 0 {
		gain = 0
	}
	return gain
}

// StartingHPMin and StartingMPMin are the absolute floors for fresh characters.
const (
	StartingHPMin = 10
	StartingMPMin = 5
)

// StartingHP returns the deterministic starting HP for a new character.
//
// Postcondition: result >= StartingHPMin.
func StartingHP(constitution, raceBonus, classBonus int) int {
	hp := StartingHPMin + StatModifier(constitution) + raceBonus + classBonus
	if hp < StartingHPMin {
		return StartingHPMin
	}
	return hp
}

// StartingMP returns the deterministic starting MP for a new character.
//
// Postcondition: result >= StartingMPMin.
func StartingMP(intelligence, raceBonus, classBonus int) int {
	mp := StartingMPMin + StatModifier(intelligence) + raceBonus + classBonus
	if mp < StartingMPMin {
		return StartingMPMin
	}
	return mp
}

// TradingModifier combines the charisma discount (floor((cha-10)/2), floored
// at 0) with skillLevel*tradingPower, capped at capPercent. The result is a
// whole percentage.
//
// Postcondition: 0 <= result <= capPercent.
func TradingModifier(charisma, skillLevel, tradingPower, capPercent int) int {
	discount := StatModifier(charisma)
	if discount < 0 {
		discount = 0
	}
	mod := discount + skillLevel*tradingPower
	if mod > capPercent {
		mod = capPercent
	}
	if mod < 0 {
		mod = 0
	}
	return mod
}

// BuyPrice applies a trading modifier percentage as a discount on listPrice,
// flooring to a minimum of 1 gold.
//
// Postcondition: result >= 1 for listPrice >= 1.
func BuyPrice(listPrice, modifierPercent int) int {
	price := listPrice * (100 - modifierPercent) / 100
	if price < 1 {
		price = 1
	}
	return price
}

// SellPrice returns the gold received for selling at listPrice: the baseline
// is 50% of list plus half the trading modifier bonus, floored to 1.
//
// Postcondition: result >= 1 for listPrice >= 1.
func SellPrice(listPrice, modifierPercent int) int {
	price := listPrice * (50 + modifierPercent/2) / 100
	if price < 1 {
		price = 1
	}
	return price
}

// RepairCost returns the gold cost to repair an item: proportional to the
// remaining damage fraction, max(1, floor(price * 0.3 * (1 - current/max))),
// and 0 for an undamaged item.
//
// Precondition: durationMax > 0.
func RepairCost(price, current, durationMax int) int {
	if current >= durationMax {
		return 0
	}
	if current < 0 {
		current = 0
	}
	cost := price * 3 * (durationMax - current) / (10 * durationMax)
	if cost < 1 {
		cost = 1
	}
	return cost
}
