package economy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/runehall/internal/game/economy"
	"github.com/cory-johannsen/runehall/internal/game/engine"
)

func oreStock() *economy.Stock {
	return &economy.Stock{
		ID: 1, Symbol: "ORE", Name: "Deepvein Mining Co",
		Price: 100, MinPrice: 10, MaxPrice: 1000,
		MinChangePercent: 1, MaxChangePercent: 10,
	}
}

func TestBuyShares_OpensAndAveragesPosition(t *testing.T) {
	char := testTrader()

	res, err := economy.BuyShares(char, oreStock(), nil, 3, testCfg())
	require.NoError(t, err)
	assert.Equal(t, int64(700), res.Character.Gold)
	assert.Equal(t, int64(3), res.Holding.Shares)
	assert.Equal(t, int64(100), res.Holding.AvgPrice)
	assert.Equal(t, 1, res.Character.Counters.StockTrades)

	// A later buy at a higher price raises the floored average basis.
	pricier := oreStock()
	pricier.Price = 200
	res, err = economy.BuyShares(res.Character, pricier, res.Holding, 1, testCfg())
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Holding.Shares)
	assert.Equal(t, int64(125), res.Holding.AvgPrice, "(3*100+200)/4")
}

func TestBuyShares_Refusals(t *testing.T) {
	char := testTrader()

	_, err := economy.BuyShares(char, oreStock(), nil, 0, testCfg())
	assert.ErrorIs(t, err, engine.ErrValidation)

	_, err = economy.BuyShares(char, oreStock(), nil, 50, testCfg())
	assert.ErrorIs(t, err, engine.ErrStateConflict, "insufficient gold")

	capped := testTrader()
	capped.Counters.StockTrades = 5
	_, err = economy.BuyShares(capped, oreStock(), nil, 1, testCfg())
	assert.ErrorIs(t, err, engine.ErrStateConflict, "daily trade limit")
}

func TestSellShares(t *testing.T) {
	char := testTrader()
	holding := &economy.Holding{UserID: char.ID, StockID: 1, Shares: 4, AvgPrice: 125}

	res, err := economy.SellShares(char, oreStock(), holding, 3, testCfg())
	require.NoError(t, err)
	assert.Equal(t, int64(1300), res.Character.Gold)
	assert.Equal(t, int64(1), res.Holding.Shares)
	assert.Equal(t, int64(125), res.Holding.AvgPrice, "basis survives partial sales")

	// Selling out zeroes the basis.
	res, err = economy.SellShares(res.Character, oreStock(), res.Holding, 1, testCfg())
	require.NoError(t, err)
	assert.Zero(t, res.Holding.Shares)
	assert.Zero(t, res.Holding.AvgPrice)

	_, err = economy.SellShares(res.Character, oreStock(), res.Holding, 1, testCfg())
	assert.ErrorIs(t, err, engine.ErrStateConflict, "no shares left")
}

// TestVaryPrice pins the draw order: magnitude percent first, then the
// direction coin flip.
func TestVaryPrice(t *testing.T) {
	// Intn(10)=4 -> 5%, coin 1 -> up.
	up, err := economy.VaryPrice(oreStock(), &scriptedSource{values: []int{4, 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(105), up.Price)

	// Same magnitude, coin 0 -> down.
	down, err := economy.VaryPrice(oreStock(), &scriptedSource{values: []int{4, 0}})
	require.NoError(t, err)
	assert.Equal(t, int64(95), down.Price)
}

func TestVaryPrice_ClampsToBounds(t *testing.T) {
	floor := oreStock()
	floor.Price = 100
	floor.MinPrice = 98
	out, err := economy.VaryPrice(floor, &scriptedSource{values: []int{4, 0}})
	require.NoError(t, err)
	assert.Equal(t, int64(98), out.Price, "movement clamps at the listing floor")

	ceil := oreStock()
	ceil.Price = 1000
	out, err = economy.VaryPrice(ceil, &scriptedSource{values: []int{9, 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), out.Price, "already at the ceiling")
}
