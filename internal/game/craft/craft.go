// Package craft implements the work professions: mining, stone cutting,
// enchanting, and forging. Every attempt spends one daily work; success and
// quality roll through the formula library.
package craft

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/dice"
	"github.com/cory-johannsen/runehall/internal/game/engine"
	"github.com/cory-johannsen/runehall/internal/game/formula"
	"github.com/cory-johannsen/runehall/internal/game/item"
)

// SkillParams shape one profession's success chance:
// min(CapPercent, BasePercent + skillLevel*PerLevelPercent).
type SkillParams struct {
	BasePercent     int `mapstructure:"base_percent"`
	PerLevelPercent int `mapstructure:"per_level_percent"`
	CapPercent      int `mapstructure:"cap_percent"`
}

// GatherConfig covers mining: no inputs, one output.
type GatherConfig struct {
	SkillParams `mapstructure:",squash"`
	OutputDefID string `mapstructure:"output_def_id"`
}

// RefineConfig covers stone cutting: one input consumed, one output.
type RefineConfig struct {
	SkillParams `mapstructure:",squash"`
	InputDefID  string `mapstructure:"input_def_id"`
	OutputDefID string `mapstructure:"output_def_id"`
}

// EnchantConfig covers enchanting: consumes one material, raises the
// target's quality tier by one.
type EnchantConfig struct {
	SkillParams   `mapstructure:",squash"`
	MaterialDefID string `mapstructure:"material_def_id"`
}

// ForgeRecipe names an output and the material counts it consumes.
type ForgeRecipe struct {
	OutputDefID string         `mapstructure:"output_def_id"`
	Materials   map[string]int `mapstructure:"materials"`
}

// ForgeConfig covers forging. The critical-failure reserve claims the lowest
// rolls regardless of skill; a critical failure destroys the materials.
type ForgeConfig struct {
	SkillParams        `mapstructure:",squash"`
	CritReservePercent int                     `mapstructure:"crit_reserve_percent"`
	Recipes            []ForgeRecipe           `mapstructure:"recipes"`
	QualityBuckets     []formula.QualityBucket `mapstructure:"quality_buckets"`
}

// Config holds the crafting tunables. Caps default to the legacy values:
// mining 90, stone cutting 85, enchanting 75.
type Config struct {
	DailyWorkLimit int           `mapstructure:"daily_work_limit"`
	Mining         GatherConfig  `mapstructure:"mining"`
	StoneCutting   RefineConfig  `mapstructure:"stone_cutting"`
	Enchanting     EnchantConfig `mapstructure:"enchanting"`
	Forging        ForgeConfig   `mapstructure:"forging"`
}

// Validate reports a ConfigurationError for out-of-range tunables.
func (c Config) Validate() error {
	if c.DailyWorkLimit < 0 {
		return engine.Configf("daily work limit must be >= 0")
	}
	for _, p := range []SkillParams{c.Mining.SkillParams, c.StoneCutting.SkillParams, c.Enchanting.SkillParams, c.Forging.SkillParams} {
		if p.BasePercent < 0 || p.PerLevelPercent < 0 {
			return engine.Configf("craft chance parameters must be >= 0")
		}
		if p.CapPercent < 0 || p.CapPercent > 100 {
			return engine.Configf("craft cap %d must be in [0,100]", p.CapPercent)
		}
	}
	if c.Forging.CritReservePercent < 0 || c.Forging.CritReservePercent > 100 {
		return engine.Configf("forge crit reserve %d must be in [0,100]", c.Forging.CritReservePercent)
	}
	if c.Mining.OutputDefID == "" || c.StoneCutting.InputDefID == "" || c.StoneCutting.OutputDefID == "" {
		return engine.Configf("profession item ids must be configured")
	}
	for _, r := range c.Forging.Recipes {
		if r.OutputDefID == "" || len(r.Materials) == 0 {
			return engine.Configf("forge recipe must name an output and materials")
		}
	}
	return nil
}

// Recipe returns the forge recipe producing outputDefID.
func (c Config) Recipe(outputDefID string) (ForgeRecipe, bool) {
	for _, r := range c.Forging.Recipes {
		if r.OutputDefID == outputDefID {
			return r, true
		}
	}
	return ForgeRecipe{}, false
}

// Result reports one crafting attempt. Produced is non-nil only on success
// with an output; Consumed lists destroyed material instance ids; Updated
// carries the enchant target's new snapshot.
type Result struct {
	Character *character.Character
	Success   bool
	Outcome   formula.ForgeOutcome
	Produced  *item.Instance
	Updated   *item.Instance
	Consumed  []int64
}

// spendWork gates on the daily work limit and returns a clone with the
// counter advanced. Every attempt counts, successful or not.
func spendWork(char *character.Character, cfg Config) (*character.Character, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if char.Counters.Works >= cfg.DailyWorkLimit {
		return nil, engine.Conflictf("daily work limit %d reached", cfg.DailyWorkLimit)
	}
	c := char.Clone()
	c.Counters.Works++
	return c, nil
}

// newInstance mints an owned instance of def at the given quality.
func newInstance(def *item.Def, ownerID int64, q item.Quality) *item.Instance {
	return &item.Instance{
		DefID:       def.ID,
		OwnerID:     ownerID,
		Quality:     q,
		Durability:  def.DurationMax,
		InstanceKey: uuid.NewString(),
	}
}

// Mine gathers raw ore. No inputs; a failed attempt yields nothing but still
// spends the daily work.
func Mine(char *character.Character, oreDef *item.Def, cfg Config, src dice.Source) (*Result, error) {
	c, err := spendWork(char, cfg)
	if err != nil {
		return nil, err
	}
	if oreDef.ID != cfg.Mining.OutputDefID {
		return nil, engine.Validationf("mining produces %q, not %q", cfg.Mining.OutputDefID, oreDef.ID)
	}

	p := cfg.Mining.SkillParams
	res := &Result{Character: c}
	if formula.SkillCheck(src, c.SkillLevel(character.SkillMining), p.BasePercent, p.PerLevelPercent, p.CapPercent) {
		res.Success = true
		res.Produced = newInstance(oreDef, c.ID, 0)
	}
	return res, nil
}

// CutStone refines one raw input into worked stone. The input survives a
// failed attempt and is consumed on success.
func CutStone(char *character.Character, input *item.Instance, outDef *item.Def, cfg Config, src dice.Source) (*Result, error) {
	c, err := spendWork(char, cfg)
	if err != nil {
		return nil, err
	}
	if outDef.ID != cfg.StoneCutting.OutputDefID {
		return nil, engine.Validationf("stone cutting produces %q, not %q", cfg.StoneCutting.OutputDefID, outDef.ID)
	}
	if input.DefID != cfg.StoneCutting.InputDefID {
		return nil, engine.Validationf("stone cutting consumes %q, not %q", cfg.StoneCutting.InputDefID, input.DefID)
	}
	if input.OwnerID != char.ID {
		return nil, engine.Conflictf("item %d is not owned by character %d", input.ID, char.ID)
	}

	p := cfg.StoneCutting.SkillParams
	res := &Result{Character: c}
	if formula.SkillCheck(src, c.SkillLevel(character.SkillStoneCutting), p.BasePercent, p.PerLevelPercent, p.CapPercent) {
		res.Success = true
		res.Produced = newInstance(outDef, c.ID, 0)
		res.Consumed = []int64{input.ID}
	}
	return res, nil
}

// Enchant raises an equippable item's quality by one tier, consuming one
// material on success. The material survives a failed attempt.
func Enchant(char *character.Character, target *item.Instance, targetDef *item.Def, material *item.Instance, cfg Config, src dice.Source) (*Result, error) {
	c, err := spendWork(char, cfg)
	if err != nil {
		return nil, err
	}
	if target.DefID != targetDef.ID {
		return nil, engine.Validationf("instance %d is not a %q", target.ID, targetDef.ID)
	}
	if targetDef.Slot == item.SlotNone {
		return nil, engine.Validationf("item %q cannot hold an enchantment", targetDef.ID)
	}
	if material.DefID != cfg.Enchanting.MaterialDefID {
		return nil, engine.Validationf("enchanting consumes %q, not %q", cfg.Enchanting.MaterialDefID, material.DefID)
	}
	if target.OwnerID != char.ID || material.OwnerID != char.ID {
		return nil, engine.Conflictf("character %d must own both the target and the material", char.ID)
	}
	if target.Quality >= item.QualityMax {
		return nil, engine.Conflictf("item %d is already at the highest quality tier", target.ID)
	}

	p := cfg.Enchanting.SkillParams
	res := &Result{Character: c}
	if formula.SkillCheck(src, c.SkillLevel(character.SkillEnchanting), p.BasePercent, p.PerLevelPercent, p.CapPercent) {
		res.Success = true
		out := target.Clone()
		out.Quality++
		res.Updated = out
		res.Consumed = []int64{material.ID}
	}
	return res, nil
}

// Forge smiths an output from a recipe's materials. Success consumes the
// materials and rolls the output quality; a plain failure keeps them; a
// critical failure destroys them with nothing to show.
func Forge(char *character.Character, outDef *item.Def, materials []*item.Instance, cfg Config, src dice.Source) (*Result, error) {
	c, err := spendWork(char, cfg)
	if err != nil {
		return nil, err
	}
	recipe, ok := cfg.Recipe(outDef.ID)
	if !ok {
		return nil, engine.Validationf("no forge recipe produces %q", outDef.ID)
	}

	counts := make(map[string]int, len(materials))
	consumed := make([]int64, 0, len(materials))
	for _, m := range materials {
		if m.OwnerID != char.ID {
			return nil, engine.Conflictf("item %d is not owned by character %d", m.ID, char.ID)
		}
		if m.Equipped {
			return nil, engine.Conflictf("item %d is equipped, unequip it first", m.ID)
		}
		counts[m.DefID]++
		consumed = append(consumed, m.ID)
	}
	for defID, need := range recipe.Materials {
		if counts[defID] != need {
			return nil, engine.Validationf("recipe %q needs %d of %q, got %d", recipe.OutputDefID, need, defID, counts[defID])
		}
		delete(counts, defID)
	}
	if len(counts) != 0 {
		return nil, engine.Validationf("recipe %q received materials it does not use", recipe.OutputDefID)
	}

	f := cfg.Forging
	skill := c.SkillLevel(character.SkillForging)
	outcome := formula.ForgeCheck(src, skill, f.BasePercent, f.PerLevelPercent, f.CapPercent, f.CritReservePercent)

	res := &Result{Character: c, Outcome: outcome}
	switch outcome {
	case formula.ForgeSuccess:
		res.Success = true
		q := item.Quality(formula.ForgeQuality(src, skill, f.QualityBuckets))
		res.Produced = newInstance(outDef, c.ID, q)
		res.Consumed = consumed
	case formula.ForgeCriticalFailure:
		res.Consumed = consumed
	}
	return res, nil
}
