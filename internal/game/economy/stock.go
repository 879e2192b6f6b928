package economy

import (
	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/dice"
	"github.com/cory-johannsen/runehall/internal/game/engine"
)

// Stock is one listed security. Price is the current whole-gold share price;
// every trade executes at it.
type Stock struct {
	ID     int64
	Symbol string
	Name   string
	Price  int64

	// Price never leaves [MinPrice, MaxPrice] under variation.
	MinPrice int64
	MaxPrice int64

	// Daily variation magnitude bounds, percent of the current price.
	MinChangePercent int
	MaxChangePercent int
}

// Validate checks the listing's invariants.
func (s *Stock) Validate() error {
	if s.Symbol == "" {
		return engine.Validationf("stock symbol must not be empty")
	}
	if s.MinPrice < 1 || s.MaxPrice < s.MinPrice {
		return engine.Validationf("stock %s: price bounds [%d,%d] invalid", s.Symbol, s.MinPrice, s.MaxPrice)
	}
	if s.Price < s.MinPrice || s.Price > s.MaxPrice {
		return engine.Validationf("stock %s: price %d outside [%d,%d]", s.Symbol, s.Price, s.MinPrice, s.MaxPrice)
	}
	if s.MinChangePercent < 0 || s.MaxChangePercent < s.MinChangePercent {
		return engine.Validationf("stock %s: change bounds [%d,%d] invalid", s.Symbol, s.MinChangePercent, s.MaxChangePercent)
	}
	return nil
}

// Clone returns a copy for all-or-nothing mutation.
func (s *Stock) Clone() *Stock {
	out := *s
	return &out
}

// Holding is one character's position in one stock. AvgPrice is the
// average cost basis, floored to whole gold.
type Holding struct {
	UserID   int64
	StockID  int64
	Shares   int64
	AvgPrice int64
}

// Clone returns a copy for all-or-nothing mutation.
func (h *Holding) Clone() *Holding {
	out := *h
	return &out
}

// StockResult pairs the updated character and holding snapshots with the
// executed trade.
type StockResult struct {
	Character  *character.Character
	Holding    *Holding
	SharePrice int64
	Total      int64
}

// BuyShares purchases shares at the current price. A nil holding opens a new
// position. The trade counts against the daily stock-trade limit.
//
// Postcondition: on error the inputs are untouched.
func BuyShares(char *character.Character, stock *Stock, holding *Holding, qty int64, cfg Config) (*StockResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := stock.Validate(); err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, engine.Validationf("share quantity %d must be positive", qty)
	}
	if char.Counters.StockTrades >= cfg.DailyStockTradeLimit {
		return nil, engine.Conflictf("daily stock trade limit %d reached", cfg.DailyStockTradeLimit)
	}

	total := qty * stock.Price
	c := char.Clone()
	if err := c.SpendGold(total); err != nil {
		return nil, err
	}
	c.Counters.StockTrades++

	var h *Holding
	if holding == nil {
		h = &Holding{UserID: c.ID, StockID: stock.ID}
	} else {
		if holding.StockID != stock.ID {
			return nil, engine.Validationf("holding is for stock %d, not %d", holding.StockID, stock.ID)
		}
		h = holding.Clone()
	}
	h.AvgPrice = (h.Shares*h.AvgPrice + total) / (h.Shares + qty)
	h.Shares += qty

	return &StockResult{Character: c, Holding: h, SharePrice: stock.Price, Total: total}, nil
}

// SellShares sells shares at the current price. Selling the whole position
// zeroes the cost basis. The trade counts against the daily stock-trade
// limit.
//
// Postcondition: on error the inputs are untouched.
func SellShares(char *character.Character, stock *Stock, holding *Holding, qty int64, cfg Config) (*StockResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := stock.Validate(); err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, engine.Validationf("share quantity %d must be positive", qty)
	}
	if holding == nil || holding.StockID != stock.ID || holding.Shares < qty {
		return nil, engine.Conflictf("insufficient shares of %s", stock.Symbol)
	}
	if char.Counters.StockTrades >= cfg.DailyStockTradeLimit {
		return nil, engine.Conflictf("daily stock trade limit %d reached", cfg.DailyStockTradeLimit)
	}

	total := qty * stock.Price
	c := char.Clone()
	c.Gold += total
	c.Counters.StockTrades++

	h := holding.Clone()
	h.Shares -= qty
	if h.Shares == 0 {
		h.AvgPrice = 0
	}

	return &StockResult{Character: c, Holding: h, SharePrice: stock.Price, Total: total}, nil
}

// VaryPrice applies one scheduled price movement: a uniform percentage drawn
// from [MinChangePercent, MaxChangePercent], direction by coin flip, clamped
// to the listing's price bounds.
//
// Draw order: magnitude percent, then direction (0 = down, 1 = up).
func VaryPrice(stock *Stock, src dice.Source) (*Stock, error) {
	if err := stock.Validate(); err != nil {
		return nil, err
	}

	pct := dice.Range(src, stock.MinChangePercent, stock.MaxChangePercent)
	delta := stock.Price * int64(pct) / 100
	if src.Intn(2) == 0 {
		delta = -delta
	}

	out := stock.Clone()
	out.Price += delta
	if out.Price < out.MinPrice {
		out.Price = out.MinPrice
	}
	if out.Price > out.MaxPrice {
		out.Price = out.MaxPrice
	}
	return out, nil
}
