package character

import (
	"github.com/cory-johannsen/runehall/internal/game/dice"
	"github.com/cory-johannsen/runehall/internal/game/engine"
	"github.com/cory-johannsen/runehall/internal/game/formula"
	"github.com/cory-johannsen/runehall/internal/game/refdata"
)

// clampStat keeps a stat inside its legal range after bonuses.
func clampStat(v int) int {
	if v < formula.StatMin {
		return formula.StatMin
	}
	if v > formula.StatMax {
		return formula.StatMax
	}
	return v
}

// applyRaceBonuses adds race stat bonuses, clamping each stat to [3,20].
func applyRaceBonuses(s Stats, bonuses map[string]int) Stats {
	for stat, delta := range bonuses {
		switch stat {
		case "strength":
			s.Strength = clampStat(s.Strength + delta)
		case "dexterity":
			s.Dexterity = clampStat(s.Dexterity + delta)
		case "constitution":
			s.Constitution = clampStat(s.Constitution + delta)
		case "intelligence":
			s.Intelligence = clampStat(s.Intelligence + delta)
		case "wisdom":
			s.Wisdom = clampStat(s.Wisdom + delta)
		case "charisma":
			s.Charisma = clampStat(s.Charisma + delta)
		}
	}
	return s
}

// Build constructs a new level-1 Character: six 4d6-drop-lowest stat rolls,
// race bonuses, and starting HP/MP from constitution/intelligence plus
// race/class bonuses.
//
// Precondition: name must be non-empty; race, class, and src must be non-nil.
// Postcondition: Returns a Character ready for persistence, or a non-nil error.
func Build(name string, race *refdata.Race, class *refdata.Class, src dice.Source) (*Character, error) {
	if name == "" {
		return nil, engine.Validationf("character name must not be empty")
	}
	if race == nil {
		return nil, engine.Validationf("race must not be nil")
	}
	if class == nil {
		return nil, engine.Validationf("class must not be nil")
	}

	stats := Stats{
		Strength:     formula.StatRoll(src),
		Dexterity:    formula.StatRoll(src),
		Constitution: formula.StatRoll(src),
		Intelligence: formula.StatRoll(src),
		Wisdom:       formula.StatRoll(src),
		Charisma:     formula.StatRoll(src),
	}
	stats = applyRaceBonuses(stats, race.StatBonuses)

	hp := formula.StartingHP(stats.Constitution, race.HPBonus, class.HPBonus)
	mp := formula.StartingMP(stats.Intelligence, race.MPBonus, class.MPBonus)

	return &Character{
		Name:      name,
		Race:      race.ID,
		Class:     class.ID,
		Element:   race.Element,
		Level:     1,
		Stats:     stats,
		MaxHP:     hp,
		CurrentHP: hp,
		MaxMP:     mp,
		CurrentMP: mp,
		Skills:    make(map[string]int),
	}, nil
}
