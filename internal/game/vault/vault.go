// Package vault implements the bank vault: balance, compound interest, and
// loans with simple interest. Accrual is idempotent — it advances the stored
// timestamps by whole elapsed periods only, so re-running it on every read
// adds nothing until a new period completes.
package vault

import (
	"time"

	"github.com/cory-johannsen/runehall/internal/game/engine"
	"github.com/cory-johannsen/runehall/internal/game/formula"
)

// Account is a user's vault account. One per user.
//
// Invariant: Balance >= 0; while LoanAmount > 0 the balance may not exceed
// the configured loan cap.
type Account struct {
	UserID         int64
	Balance        int64
	LastInterestAt time.Time
	LoanAmount     int64
	LoanInterestAt time.Time // zero value when no loan is active
}

// Clone returns a copy for all-or-nothing mutation.
func (a *Account) Clone() *Account {
	out := *a
	return &out
}

// Config holds the vault tunables.
type Config struct {
	InterestRate        float64       `mapstructure:"interest_rate"` // compound rate per period, e.g. 0.02
	InterestPeriod      time.Duration `mapstructure:"interest_period"`
	LoanRate            float64       `mapstructure:"loan_rate"` // simple rate per period
	LoanPeriod          time.Duration `mapstructure:"loan_period"`
	LoanMaxSum          int64         `mapstructure:"loan_max_sum"`
	WarehouseTaxPercent int           `mapstructure:"warehouse_tax_percent"` // flat deposit tax
}

// Validate reports a ConfigurationError for out-of-range tunables.
func (c Config) Validate() error {
	if c.InterestRate < 0 || c.LoanRate < 0 {
		return engine.Configf("interest rates must be >= 0")
	}
	if c.InterestPeriod <= 0 || c.LoanPeriod <= 0 {
		return engine.Configf("accrual periods must be positive")
	}
	if c.LoanMaxSum < 0 {
		return engine.Configf("loan max sum %d must be >= 0", c.LoanMaxSum)
	}
	if c.WarehouseTaxPercent < 0 || c.WarehouseTaxPercent > 100 {
		return engine.Configf("warehouse tax %d must be in [0,100]", c.WarehouseTaxPercent)
	}
	return nil
}

// Accrual reports what one ApplyAccrual call added.
type Accrual struct {
	Interest     int64
	LoanInterest int64
}

// ApplyAccrual credits whole-period compound interest on the balance and
// adds whole-period simple interest to the outstanding loan, advancing each
// stored timestamp by exactly the periods consumed.
//
// Postcondition: calling again before another full period elapses accrues
// nothing further. The input account is untouched.
func ApplyAccrual(acct *Account, now time.Time, cfg Config) (*Account, Accrual, error) {
	if err := cfg.Validate(); err != nil {
		return nil, Accrual{}, err
	}

	out := acct.Clone()
	var acc Accrual

	periodSec := int64(cfg.InterestPeriod / time.Second)
	elapsed := int64(now.Sub(out.LastInterestAt) / time.Second)
	if periods := formula.AccrualPeriods(elapsed, periodSec); periods > 0 {
		acc.Interest = formula.CompoundInterest(out.Balance, cfg.InterestRate, elapsed, periodSec)
		out.Balance += acc.Interest
		out.LastInterestAt = out.LastInterestAt.Add(time.Duration(periods) * cfg.InterestPeriod)
	}

	if out.LoanAmount > 0 {
		loanPeriodSec := int64(cfg.LoanPeriod / time.Second)
		loanElapsed := int64(now.Sub(out.LoanInterestAt) / time.Second)
		if periods := formula.AccrualPeriods(loanElapsed, loanPeriodSec); periods > 0 {
			acc.LoanInterest = formula.LoanInterest(out.LoanAmount, cfg.LoanRate, loanElapsed, loanPeriodSec)
			out.LoanAmount += acc.LoanInterest
			out.LoanInterestAt = out.LoanInterestAt.Add(time.Duration(periods) * cfg.LoanPeriod)
		}
	}

	return out, acc, nil
}
