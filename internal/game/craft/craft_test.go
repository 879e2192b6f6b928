package craft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/craft"
	"github.com/cory-johannsen/runehall/internal/game/engine"
	"github.com/cory-johannsen/runehall/internal/game/formula"
	"github.com/cory-johannsen/runehall/internal/game/item"
)

func testCfg() craft.Config {
	return craft.Config{
		DailyWorkLimit: 5,
		Mining: craft.GatherConfig{
			SkillParams: craft.SkillParams{BasePercent: 30, PerLevelPercent: 5, CapPercent: 90},
			OutputDefID: "iron-ore",
		},
		StoneCutting: craft.RefineConfig{
			SkillParams: craft.SkillParams{BasePercent: 25, PerLevelPercent: 5, CapPercent: 85},
			InputDefID:  "raw-stone",
			OutputDefID: "cut-stone",
		},
		Enchanting: craft.EnchantConfig{
			SkillParams:   craft.SkillParams{BasePercent: 20, PerLevelPercent: 5, CapPercent: 75},
			MaterialDefID: "arcane-gem",
		},
		Forging: craft.ForgeConfig{
			SkillParams:        craft.SkillParams{BasePercent: 30, PerLevelPercent: 4, CapPercent: 95},
			CritReservePercent: 5,
			Recipes: []craft.ForgeRecipe{
				{OutputDefID: "iron-sword", Materials: map[string]int{"iron-ore": 2, "cut-stone": 1}},
			},
			QualityBuckets: []formula.QualityBucket{
				{Tier: 2, MinSkill: 5, Threshold: 90},
				{Tier: 1, MinSkill: 2, Threshold: 70},
				{Tier: 0, MinSkill: 0, Threshold: 0},
			},
		},
	}
}

func testCrafter() *character.Character {
	return &character.Character{
		ID:    7,
		Name:  "Brokk",
		Level: 1,
		Stats: character.Stats{
			Strength: 10, Dexterity: 10, Constitution: 10,
			Intelligence: 10, Wisdom: 10, Charisma: 10,
		},
		MaxHP: 10, CurrentHP: 10, MaxMP: 5, CurrentMP: 5,
		Skills: map[string]int{},
	}
}

func materialDef(id string) *item.Def {
	return &item.Def{ID: id, Name: id, Price: 10, Difficulty: 10, DurationMax: 1}
}

func ownedMaterial(id int64, defID string, ownerID int64) *item.Instance {
	return &item.Instance{ID: id, DefID: defID, OwnerID: ownerID, Durability: 1}
}

type scriptedSource struct {
	values []int
	idx    int
}

func (s *scriptedSource) Intn(n int) int {
	if s.idx >= len(s.values) {
		return 0
	}
	v := s.values[s.idx] % n
	s.idx++
	return v
}

func TestMine(t *testing.T) {
	char := testCrafter()

	res, err := craft.Mine(char, materialDef("iron-ore"), testCfg(), &scriptedSource{values: []int{10}})
	require.NoError(t, err)
	assert.True(t, res.Success, "roll 10 beats base chance 30")
	require.NotNil(t, res.Produced)
	assert.Equal(t, "iron-ore", res.Produced.DefID)
	assert.Equal(t, char.ID, res.Produced.OwnerID)
	assert.NotEmpty(t, res.Produced.InstanceKey)
	assert.Equal(t, 1, res.Character.Counters.Works)
	assert.Zero(t, char.Counters.Works, "input untouched")

	res, err = craft.Mine(char, materialDef("iron-ore"), testCfg(), &scriptedSource{values: []int{95}})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Nil(t, res.Produced)
	assert.Equal(t, 1, res.Character.Counters.Works, "failed attempts still spend a work")
}

func TestMine_DailyWorkLimit(t *testing.T) {
	char := testCrafter()
	char.Counters.Works = 5
	_, err := craft.Mine(char, materialDef("iron-ore"), testCfg(), &scriptedSource{values: []int{0}})
	assert.ErrorIs(t, err, engine.ErrStateConflict)
}

func TestCutStone(t *testing.T) {
	char := testCrafter()
	input := ownedMaterial(11, "raw-stone", char.ID)

	res, err := craft.CutStone(char, input, materialDef("cut-stone"), testCfg(), &scriptedSource{values: []int{5}})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "cut-stone", res.Produced.DefID)
	assert.Equal(t, []int64{11}, res.Consumed)

	// The input survives a failed attempt.
	res, err = craft.CutStone(char, input, materialDef("cut-stone"), testCfg(), &scriptedSource{values: []int{95}})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Consumed)

	wrong := ownedMaterial(12, "iron-ore", char.ID)
	_, err = craft.CutStone(char, wrong, materialDef("cut-stone"), testCfg(), &scriptedSource{values: []int{5}})
	assert.ErrorIs(t, err, engine.ErrValidation)
}

func TestEnchant(t *testing.T) {
	char := testCrafter()
	sword := &item.Def{ID: "iron-sword", Name: "Iron Sword", Slot: item.SlotWeapon, Price: 100, Power: 3, Difficulty: 75, DurationMax: 50}
	target := &item.Instance{ID: 20, DefID: "iron-sword", OwnerID: char.ID, Quality: 1, Durability: 50}
	gem := ownedMaterial(21, "arcane-gem", char.ID)

	res, err := craft.Enchant(char, target, sword, gem, testCfg(), &scriptedSource{values: []int{5}})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, item.Quality(2), res.Updated.Quality)
	assert.Equal(t, []int64{21}, res.Consumed)
	assert.Equal(t, item.Quality(1), target.Quality, "input untouched")

	// The gem survives a failed attempt.
	res, err = craft.Enchant(char, target, sword, gem, testCfg(), &scriptedSource{values: []int{90}})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Consumed)

	maxed := &item.Instance{ID: 22, DefID: "iron-sword", OwnerID: char.ID, Quality: item.QualityMax, Durability: 50}
	_, err = craft.Enchant(char, maxed, sword, gem, testCfg(), &scriptedSource{values: []int{5}})
	assert.ErrorIs(t, err, engine.ErrStateConflict)

	ore := ownedMaterial(23, "iron-ore", char.ID)
	oreDef := materialDef("iron-ore")
	_, err = craft.Enchant(char, ore, oreDef, gem, testCfg(), &scriptedSource{values: []int{5}})
	assert.ErrorIs(t, err, engine.ErrValidation, "slotless goods cannot be enchanted")
}

func forgeMaterials(ownerID int64) []*item.Instance {
	return []*item.Instance{
		ownedMaterial(31, "iron-ore", ownerID),
		ownedMaterial(32, "iron-ore", ownerID),
		ownedMaterial(33, "cut-stone", ownerID),
	}
}

func swordDef() *item.Def {
	return &item.Def{ID: "iron-sword", Name: "Iron Sword", Slot: item.SlotWeapon, Price: 100, Power: 3, Difficulty: 75, DurationMax: 50}
}

func TestForge_SuccessRollsQuality(t *testing.T) {
	char := testCrafter()
	char.Skills[character.SkillForging] = 5

	// Success roll 10, quality roll 95: skill 5 unlocks the tier-2 bucket.
	src := &scriptedSource{values: []int{10, 95}}
	res, err := craft.Forge(char, swordDef(), forgeMaterials(char.ID), testCfg(), src)
	require.NoError(t, err)
	require.Equal(t, formula.ForgeSuccess, res.Outcome)
	assert.Equal(t, item.Quality(2), res.Produced.Quality)
	assert.ElementsMatch(t, []int64{31, 32, 33}, res.Consumed)
	assert.Equal(t, swordDef().DurationMax, res.Produced.Durability)
}

func TestForge_LowSkillRollsLowTier(t *testing.T) {
	char := testCrafter()
	// Same high quality roll, but skill 0 cannot reach the gated buckets.
	src := &scriptedSource{values: []int{10, 95}}
	res, err := craft.Forge(char, swordDef(), forgeMaterials(char.ID), testCfg(), src)
	require.NoError(t, err)
	require.Equal(t, formula.ForgeSuccess, res.Outcome)
	assert.Equal(t, item.Quality(0), res.Produced.Quality)
}

func TestForge_CriticalFailureDestroysMaterials(t *testing.T) {
	char := testCrafter()
	char.Skills[character.SkillForging] = 50

	src := &scriptedSource{values: []int{2}}
	res, err := craft.Forge(char, swordDef(), forgeMaterials(char.ID), testCfg(), src)
	require.NoError(t, err)
	assert.Equal(t, formula.ForgeCriticalFailure, res.Outcome)
	assert.Nil(t, res.Produced)
	assert.ElementsMatch(t, []int64{31, 32, 33}, res.Consumed, "crit failure destroys the inputs")
}

func TestForge_PlainFailureKeepsMaterials(t *testing.T) {
	char := testCrafter()
	src := &scriptedSource{values: []int{80}}
	res, err := craft.Forge(char, swordDef(), forgeMaterials(char.ID), testCfg(), src)
	require.NoError(t, err)
	assert.Equal(t, formula.ForgeFailure, res.Outcome)
	assert.Nil(t, res.Produced)
	assert.Empty(t, res.Consumed)
}

func TestForge_MaterialValidation(t *testing.T) {
	char := testCrafter()

	short := forgeMaterials(char.ID)[:2]
	_, err := craft.Forge(char, swordDef(), short, testCfg(), &scriptedSource{values: []int{10}})
	assert.ErrorIs(t, err, engine.ErrValidation, "missing material")

	stolen := forgeMaterials(char.ID)
	stolen[0].OwnerID = 99
	_, err = craft.Forge(char, swordDef(), stolen, testCfg(), &scriptedSource{values: []int{10}})
	assert.ErrorIs(t, err, engine.ErrStateConflict, "material owned by someone else")

	_, err = craft.Forge(char, materialDef("iron-ore"), forgeMaterials(char.ID), testCfg(), &scriptedSource{values: []int{10}})
	assert.ErrorIs(t, err, engine.ErrValidation, "no recipe for the output")
}
