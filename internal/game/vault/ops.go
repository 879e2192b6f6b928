package vault

import (
	"time"

	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/engine"
)

// Result pairs the updated character and account snapshots with what accrued
// during the operation.
type Result struct {
	Character *character.Character
	Account   *Account
	Accrued   Accrual
	Tax       int64 // warehouse tax withheld, deposits only
}

// Deposit moves gold from the character into the vault, withholding the flat
// warehouse tax. Interest accrues first so the balance check sees current
// numbers.
//
// Postcondition: on error the inputs are untouched.
func Deposit(char *character.Character, acct *Account, amount int64, now time.Time, cfg Config) (*Result, error) {
	if amount <= 0 {
		return nil, engine.Validationf("deposit amount %d must be positive", amount)
	}
	out, accrued, err := ApplyAccrual(acct, now, cfg)
	if err != nil {
		return nil, err
	}

	tax := amount * int64(cfg.WarehouseTaxPercent) / 100
	credited := amount - tax
	if out.LoanAmount > 0 && out.Balance+credited > cfg.LoanMaxSum {
		return nil, engine.Conflictf("balance may not exceed %d while a loan is outstanding", cfg.LoanMaxSum)
	}

	c := char.Clone()
	if err := c.SpendGold(amount); err != nil {
		return nil, err
	}
	out.Balance += credited

	return &Result{Character: c, Account: out, Accrued: accrued, Tax: tax}, nil
}

// Withdraw moves gold from the vault back to the character.
//
// Postcondition: on error the inputs are untouched.
func Withdraw(char *character.Character, acct *Account, amount int64, now time.Time, cfg Config) (*Result, error) {
	if amount <= 0 {
		return nil, engine.Validationf("withdraw amount %d must be positive", amount)
	}
	out, accrued, err := ApplyAccrual(acct, now, cfg)
	if err != nil {
		return nil, err
	}
	if out.Balance < amount {
		return nil, engine.Conflictf("insufficient vault balance: have %d, need %d", out.Balance, amount)
	}

	c := char.Clone()
	out.Balance -= amount
	c.Gold += amount

	return &Result{Character: c, Account: out, Accrued: accrued}, nil
}

// TakeLoan grants a loan up to the configured cap. Only one loan may be
// active at a time.
//
// Postcondition: on error the inputs are untouched.
func TakeLoan(char *character.Character, acct *Account, amount int64, now time.Time, cfg Config) (*Result, error) {
	if amount <= 0 {
		return nil, engine.Validationf("loan amount %d must be positive", amount)
	}
	out, accrued, err := ApplyAccrual(acct, now, cfg)
	if err != nil {
		return nil, err
	}
	if out.LoanAmount > 0 {
		return nil, engine.Conflictf("a loan is already outstanding")
	}
	if amount > cfg.LoanMaxSum {
		return nil, engine.Conflictf("loan amount %d exceeds cap %d", amount, cfg.LoanMaxSum)
	}
	if out.Balance > cfg.LoanMaxSum {
		return nil, engine.Conflictf("balance %d too high to qualify for a loan", out.Balance)
	}

	c := char.Clone()
	out.LoanAmount = amount
	out.LoanInterestAt = now
	c.Gold += amount

	return &Result{Character: c, Account: out, Accrued: accrued}, nil
}

// RepayLoan pays down the outstanding loan from the character's gold. Paying
// the full remainder clears the loan.
//
// Postcondition: on error the inputs are untouched.
func RepayLoan(char *character.Character, acct *Account, amount int64, now time.Time, cfg Config) (*Result, error) {
	if amount <= 0 {
		return nil, engine.Validationf("repay amount %d must be positive", amount)
	}
	out, accrued, err := ApplyAccrual(acct, now, cfg)
	if err != nil {
		return nil, err
	}
	if out.LoanAmount <= 0 {
		return nil, engine.Conflictf("no loan outstanding")
	}
	if amount > out.LoanAmount {
		amount = out.LoanAmount
	}

	c := char.Clone()
	if err := c.SpendGold(amount); err != nil {
		return nil, err
	}
	out.LoanAmount -= amount
	if out.LoanAmount == 0 {
		out.LoanInterestAt = time.Time{}
	}

	return &Result{Character: c, Account: out, Accrued: accrued}, nil
}
