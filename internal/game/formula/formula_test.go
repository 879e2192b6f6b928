package formula_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/runehall/internal/game/dice"
	"github.com/cory-johannsen/runehall/internal/game/formula"
)

// TestStatRoll_InRange verifies the postcondition 3 <= result <= 20 over many
// draws from a deterministic source.
func TestStatRoll_InRange(t *testing.T) {
	src := dice.NewSeededSource(1)
	for i := 0; i < 5000; i++ {
		v := formula.StatRoll(src)
		require.GreaterOrEqual(t, v, formula.StatMin)
		require.LessOrEqual(t, v, formula.StatMax)
	}
}

// TestStatRoll_DropsLowest checks the 4d6-drop-lowest mechanic against a
// scripted draw sequence.
func TestStatRoll_DropsLowest(t *testing.T) {
	// Intn(6) draws 0,3,5,2 -> dice 1,4,6,3 -> drop the 1 -> 13.
	src := &scriptedSource{values: []int{0, 3, 5, 2}}
	assert.Equal(t, 13, formula.StatRoll(src))
}

func TestStatModifier(t *testing.T) {
	cases := map[int]int{3: -4, 7: -2, 8: -1, 9: -1, 10: 0, 11: 0, 12: 1, 14: 2, 20: 5}
	for stat, want := range cases {
		assert.Equal(t, want, formula.StatModifier(stat), "stat %d", stat)
	}
}

// TestXPForLevel_FirstLevel verifies xpForLevel(1, p) == 100 for any penalty.
func TestXPForLevel_FirstLevel(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := rapid.IntRange(0, 100).Draw(rt, "penalty")
		assert.Equal(rt, 100, formula.XPForLevel(1, p))
	})
}

// TestXPForLevel_StrictlyIncreasing verifies the curve grows with level for
// any positive penalty.
func TestXPForLevel_StrictlyIncreasing(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := rapid.IntRange(1, 50).Draw(rt, "penalty")
		level := rapid.IntRange(1, 60).Draw(rt, "level")
		assert.Greater(rt, formula.XPForLevel(level+1, p), formula.XPForLevel(level, p))
	})
}

func TestXPForLevel_DefaultPenaltyCurve(t *testing.T) {
	assert.Equal(t, 100, formula.XPForLevel(1, 10))
	assert.Equal(t, 110, formula.XPForLevel(2, 10))
	assert.Equal(t, 121, formula.XPForLevel(3, 10))
	assert.Equal(t, 133, formula.XPForLevel(4, 10))
}

func TestShouldLevelUp(t *testing.T) {
	// Level 1 -> 2 requires 100 cumulative XP.
	assert.False(t, formula.ShouldLevelUp(1, 99, 10))
	assert.True(t, formula.ShouldLevelUp(1, 100, 10))
	// Level 2 -> 3 requires 100+110 cumulative XP.
	assert.False(t, formula.ShouldLevelUp(2, 209, 10))
	assert.True(t, formula.ShouldLevelUp(2, 210, 10))
}

func TestXPToNextLevel_FlooredAtZero(t *testing.T) {
	assert.Equal(t, 40, formula.XPToNextLevel(1, 60, 10))
	assert.Equal(t, 0, formula.XPToNextLevel(1, 250, 10))
}

// TestHPGainOnLevelUp_AlwaysPositive verifies the gain is >= 1 even for the
// weakest constitution.
func TestHPGainOnLevelUp_AlwaysPositive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		con := rapid.IntRange(formula.StatMin, formula.StatMax).Draw(rt, "con")
		bonus := rapid.IntRange(-2, 5).Draw(rt, "classBonus")
		src := dice.NewSeededSource(int64(rapid.IntRange(0, 1000).Draw(rt, "seed")))
		assert.GreaterOrEqual(rt, formula.HPGainOnLevelUp(con, bonus, 4, src), 1)
	})
}

func TestMPGainOnLevelUp_NeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		intel := rapid.IntRange(formula.StatMin, formula.StatMax).Draw(rt, "int")
		bonus := rapid.IntRange(-5, 5).Draw(rt, "classBonus")
		src := dice.NewSeededSource(int64(rapid.IntRange(0, 1000).Draw(rt, "seed")))
		assert.GreaterOrEqual(rt, formula.MPGainOnLevelUp(intel, bonus, 2, src), 0)
	})
}

func TestStartingHPAndMP_Minimums(t *testing.T) {
	assert.Equal(t, formula.StartingHPMin, formula.StartingHP(3, 0, 0))
	assert.Equal(t, formula.StartingMPMin, formula.StartingMP(3, 0, 0))
	assert.Equal(t, 14, formula.StartingHP(14, 1, 1))
	assert.Equal(t, 9, formula.StartingMP(14, 1, 1))
}

func TestTradingModifier_Cap(t *testing.T) {
	// Charisma 20 (+5) with high skill must clamp at the cap.
	assert.Equal(t, 30, formula.TradingModifier(20, 10, 5, 30))
	// Low charisma never goes negative.
	assert.Equal(t, 0, formula.TradingModifier(3, 0, 5, 30))
	assert.Equal(t, 7, formula.TradingModifier(14, 1, 5, 30))
}

// TestBuySellPrice_SpecExamples pins the worked examples: buyPrice(100,20)=80
// and sellPrice(100,20)=60.
func TestBuySellPrice_SpecExamples(t *testing.T) {
	assert.Equal(t, 80, formula.BuyPrice(100, 20))
	assert.Equal(t, 60, formula.SellPrice(100, 20))
}

func TestBuySellPrice_FloorAtOneGold(t *testing.T) {
	assert.Equal(t, 1, formula.BuyPrice(1, 30))
	assert.Equal(t, 1, formula.SellPrice(1, 0))
}

func TestRepairCost(t *testing.T) {
	assert.Equal(t, 0, formula.RepairCost(100, 50, 50), "undamaged item costs nothing")
	assert.Equal(t, 30, formula.RepairCost(100, 0, 50), "fully broken costs 30% of price")
	assert.Equal(t, 15, formula.RepairCost(100, 25, 50))
	assert.Equal(t, 1, formula.RepairCost(2, 1, 100), "cost floors at 1 gold")
}

// scriptedSource returns a fixed sequence of Intn values, then zeroes.
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
