// Package jail implements incarceration for failed thefts: sentence sizing
// by item price, bail, and lazy expiry on read.
package jail

import (
	"time"

	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/dice"
	"github.com/cory-johannsen/runehall/internal/game/engine"
)

// ReleasedState tracks how a record was closed. Serving is the open state.
type ReleasedState int

const (
	Serving    ReleasedState = 0
	TimeServed ReleasedState = 1
	Bailed     ReleasedState = 2
)

// String returns the human-readable state name.
func (s ReleasedState) String() string {
	switch s {
	case Serving:
		return "serving"
	case TimeServed:
		return "time_served"
	case Bailed:
		return "bailed"
	default:
		return "unknown"
	}
}

// Record is one incarceration.
//
// Invariant: at most one record with Released == Serving per user.
type Record struct {
	ID        int64
	UserID    int64
	Reason    string
	JailedAt  time.Time
	ReleaseAt time.Time
	BailCost  int64
	Released  ReleasedState
}

// Clone returns a copy for all-or-nothing mutation.
func (r *Record) Clone() *Record {
	out := *r
	return &out
}

// SentenceTier maps an upper item-price bound to a sentence length. Tiers
// are evaluated in ascending price order.
type SentenceTier struct {
	MaxPrice int           `mapstructure:"max_price"`
	Duration time.Duration `mapstructure:"duration"`
}

// Config holds the jail tunables. DefaultTiers mirror the legacy sizing:
// <=100 -> 5m, <=300 -> 15m, <=500 -> 30m, <=1000 -> 1h, else 2h.
type Config struct {
	ChancePercent   int            `mapstructure:"chance_percent"` // probability a failed theft lands in jail
	Tiers           []SentenceTier `mapstructure:"tiers"`
	DefaultDuration time.Duration  `mapstructure:"default_duration"` // sentence when the price exceeds every tier
	BailMinimum     int64          `mapstructure:"bail_minimum"`
	BailPriceFactor int64          `mapstructure:"bail_price_factor"` // bail = max(BailMinimum, price*BailPriceFactor)
}

// Validate reports a ConfigurationError for out-of-range tunables.
func (c Config) Validate() error {
	if c.ChancePercent < 0 || c.ChancePercent > 100 {
		return engine.Configf("jail chance %d must be in [0,100]", c.ChancePercent)
	}
	if c.DefaultDuration <= 0 {
		return engine.Configf("default jail duration must be positive")
	}
	last := 0
	for i, tier := range c.Tiers {
		if tier.Duration <= 0 {
			return engine.Configf("jail tier %d: duration must be positive", i)
		}
		if tier.MaxPrice <= last {
			return engine.Configf("jail tiers must ascend by max price")
		}
		last = tier.MaxPrice
	}
	if c.BailMinimum < 0 || c.BailPriceFactor < 0 {
		return engine.Configf("bail parameters must be >= 0")
	}
	return nil
}

// sentenceFor picks the duration tier for an item price.
func sentenceFor(itemPrice int, cfg Config) time.Duration {
	for _, tier := range cfg.Tiers {
		if itemPrice <= tier.MaxPrice {
			return tier.Duration
		}
	}
	return cfg.DefaultDuration
}

// Roll decides whether a failed theft lands the thief in jail. The roll is
// independent of the steal-check roll. On success it returns an open record
// sized by the item's price with bail = max(BailMinimum, price*factor).
//
// Postcondition: returns (nil, false, nil) when the roll misses.
func Roll(src dice.Source, userID int64, itemPrice int, reason string, now time.Time, cfg Config) (*Record, bool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	if dice.Percent(src) >= cfg.ChancePercent {
		return nil, false, nil
	}

	bail := int64(itemPrice) * cfg.BailPriceFactor
	if bail < cfg.BailMinimum {
		bail = cfg.BailMinimum
	}
	return &Record{
		UserID:    userID,
		Reason:    reason,
		JailedAt:  now,
		ReleaseAt: now.Add(sentenceFor(itemPrice, cfg)),
		BailCost:  bail,
		Released:  Serving,
	}, true, nil
}

// Status is the answer to a jail-status read.
type Status struct {
	IsJailed         bool
	RemainingSeconds int64
	BailCost         int64
	// Changed is true when the read performed lazy expiry and the returned
	// record must be persisted.
	Changed bool
}

// GetStatus reads a record's current state, performing lazy expiry: once now
// reaches ReleaseAt an open record flips Serving -> TimeServed as a side
// effect of the read itself, no sweep process required. Safe to repeat.
//
// Precondition: rec may be nil (never jailed).
// Postcondition: the input record is untouched; the returned record carries
// any state change.
func GetStatus(rec *Record, now time.Time) (*Record, Status) {
	if rec == nil || rec.Released != Serving {
		return rec, Status{}
	}
	if !now.Before(rec.ReleaseAt) {
		out := rec.Clone()
		out.Released = TimeServed
		return out, Status{Changed: true}
	}
	return rec, Status{
		IsJailed:         true,
		RemainingSeconds: int64(rec.ReleaseAt.Sub(now) / time.Second),
		BailCost:         rec.BailCost,
	}
}

// PayBail closes an open record by paying its bail cost from the
// character's gold.
//
// Postcondition: on error the inputs are untouched.
func PayBail(char *character.Character, rec *Record, now time.Time) (*character.Character, *Record, error) {
	current, status := GetStatus(rec, now)
	if !status.IsJailed {
		if status.Changed {
			return nil, nil, engine.Conflictf("sentence already served")
		}
		return nil, nil, engine.Conflictf("character %d is not in jail", char.ID)
	}

	c := char.Clone()
	if err := c.SpendGold(current.BailCost); err != nil {
		return nil, nil, err
	}
	out := current.Clone()
	out.Released = Bailed
	return c, out, nil
}
