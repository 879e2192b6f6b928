package battle

import (
	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/dice"
	"github.com/cory-johannsen/runehall/internal/game/formula"
	"github.com/cory-johannsen/runehall/internal/game/monster"
	"github.com/cory-johannsen/runehall/internal/game/refdata"
)

// Reward is the structured result of a won battle.
type Reward struct {
	XP           int
	Gold         int
	SkillPoints  int
	DropItemID   string // empty if the drop roll failed
	LevelsGained int
	HPGained     int
	MPGained     int
}

// scaleReward applies the global reward modifier and the monster-vs-player
// level swing, flooring at 0.
func scaleReward(base, modifierPercent, levelDelta, perLevelPercent int) int {
	scaled := base * (100 + modifierPercent) / 100
	scaled = scaled * (100 + levelDelta*perLevelPercent) / 100
	if scaled < 0 {
		return 0
	}
	return scaled
}

// rollReward rolls XP/gold/SP inside the template's bands, scales them, and
// rolls the item drop independently.
func rollReward(tmpl *monster.Template, playerLevel int, cfg Config, src dice.Source) *Reward {
	delta := tmpl.Level - playerLevel
	r := &Reward{
		XP:          scaleReward(dice.Range(src, tmpl.Rewards.XPMin, tmpl.Rewards.XPMax), cfg.RewardModifierPercent, delta, cfg.LevelDeltaPercent),
		Gold:        scaleReward(dice.Range(src, tmpl.Rewards.GoldMin, tmpl.Rewards.GoldMax), cfg.RewardModifierPercent, delta, cfg.LevelDeltaPercent),
		SkillPoints: dice.Range(src, tmpl.Rewards.SPMin, tmpl.Rewards.SPMax),
	}
	if tmpl.Rewards.DropRate > 0 && dice.Percent(src) < tmpl.Rewards.DropRate {
		r.DropItemID = tmpl.Rewards.DropItemID
	}
	return r
}

// levelUp advances c by one level, growing HP/MP per the class growth
// bonuses. HP gain is always at least 1.
func levelUp(c *character.Character, class *refdata.Class, cfg Config, src dice.Source) (hpGain, mpGain int) {
	hpBonus, mpBonus := 0, 0
	if class != nil {
		hpBonus = class.HPLevelBonus
		mpBonus = class.MPLevelBonus
	}
	hpGain = formula.HPGainOnLevelUp(c.Stats.Constitution, hpBonus, cfg.HPGainRandMax, src)
	mpGain = formula.MPGainOnLevelUp(c.Stats.Intelligence, mpBonus, cfg.MPGainRandMax, src)

	c.Level++
	c.MaxHP += hpGain
	c.CurrentHP += hpGain
	c.MaxMP += mpGain
	c.CurrentMP += mpGain
	c.SkillPoints += cfg.SkillPointsPerLevel
	return hpGain, mpGain
}
