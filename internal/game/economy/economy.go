// Package economy implements the economic transaction resolver: shop trade,
// ownership transfer, theft, repair, equipment, and the stock exchange.
package economy

import (
	"github.com/cory-johannsen/runehall/internal/game/engine"
	"github.com/cory-johannsen/runehall/internal/game/item"
)

// Config holds the economy tunables.
type Config struct {
	TradingPowerPercent   int                          `mapstructure:"trading_power_percent"` // trading-modifier points per trading skill level
	TradingCapPercent     int                          `mapstructure:"trading_cap_percent"`   // overall trading modifier cap
	ShopTaxPercent        int                          `mapstructure:"shop_tax_percent"`      // flat tax on sale proceeds
	DailyTheftLimit       int                          `mapstructure:"daily_theft_limit"`
	DailyStockTradeLimit  int                          `mapstructure:"daily_stock_trade_limit"`
	QualityPriceModifiers [item.QualityMax + 1]float64 `mapstructure:"quality_price_modifiers"`
}

// Validate reports a ConfigurationError for out-of-range tunables.
func (c Config) Validate() error {
	if c.TradingPowerPercent < 0 {
		return engine.Configf("trading power %d must be >= 0", c.TradingPowerPercent)
	}
	if c.TradingCapPercent < 0 || c.TradingCapPercent > 100 {
		return engine.Configf("trading cap %d must be in [0,100]", c.TradingCapPercent)
	}
	if c.ShopTaxPercent < 0 || c.ShopTaxPercent > 100 {
		return engine.Configf("shop tax %d must be in [0,100]", c.ShopTaxPercent)
	}
	if c.DailyTheftLimit < 0 || c.DailyStockTradeLimit < 0 {
		return engine.Configf("daily limits must be >= 0")
	}
	for i, m := range c.QualityPriceModifiers {
		if m <= 0 {
			return engine.Configf("quality modifier for tier %d must be positive", i)
		}
	}
	return nil
}
