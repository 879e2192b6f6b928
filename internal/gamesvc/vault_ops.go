package gamesvc

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/engine"
	"github.com/cory-johannsen/runehall/internal/game/jail"
	"github.com/cory-johannsen/runehall/internal/game/vault"
)

// vaultOp is the shared shape of the four vault operations.
type vaultOp func(char *character.Character, acct *vault.Account, amount int64) (*vault.Result, error)

// runVaultOp accrues interest, applies op, and persists both snapshots.
func (s *Service) runVaultOp(ctx context.Context, charID, amount int64, op vaultOp) (*vault.Result, error) {
	var out *vault.Result
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		if err := s.ensureNotJailed(ctx, r, char.ID); err != nil {
			return err
		}
		acct, err := r.vaults.GetOrCreate(ctx, char.ID)
		if err != nil {
			return err
		}
		res, err := op(char, acct, amount)
		if err != nil {
			return err
		}
		if err := r.vaults.Save(ctx, res.Account); err != nil {
			return err
		}
		if err := r.chars.Save(ctx, res.Character); err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Accrued.Interest > 0 || out.Accrued.LoanInterest > 0 {
		s.logger.Debug("vault accrual applied",
			zap.Int64("character_id", charID),
			zap.Int64("interest", out.Accrued.Interest),
			zap.Int64("loan_interest", out.Accrued.LoanInterest),
		)
	}
	return out, nil
}

// Deposit moves gold into the vault, withholding the warehouse tax.
func (s *Service) Deposit(ctx context.Context, charID, amount int64) (*vault.Result, error) {
	return s.runVaultOp(ctx, charID, amount, func(char *character.Character, acct *vault.Account, amount int64) (*vault.Result, error) {
		return vault.Deposit(char, acct, amount, s.now(), s.cfg.Vault)
	})
}

// Withdraw moves gold from the vault back to the character.
func (s *Service) Withdraw(ctx context.Context, charID, amount int64) (*vault.Result, error) {
	return s.runVaultOp(ctx, charID, amount, func(char *character.Character, acct *vault.Account, amount int64) (*vault.Result, error) {
		return vault.Withdraw(char, acct, amount, s.now(), s.cfg.Vault)
	})
}

// TakeLoan grants a loan up to the configured cap.
func (s *Service) TakeLoan(ctx context.Context, charID, amount int64) (*vault.Result, error) {
	return s.runVaultOp(ctx, charID, amount, func(char *character.Character, acct *vault.Account, amount int64) (*vault.Result, error) {
		return vault.TakeLoan(char, acct, amount, s.now(), s.cfg.Vault)
	})
}

// RepayLoan pays down the outstanding loan from the character's gold.
func (s *Service) RepayLoan(ctx context.Context, charID, amount int64) (*vault.Result, error) {
	return s.runVaultOp(ctx, charID, amount, func(char *character.Character, acct *vault.Account, amount int64) (*vault.Result, error) {
		return vault.RepayLoan(char, acct, amount, s.now(), s.cfg.Vault)
	})
}

// VaultBalance reads the account with interest accrued up to now. The
// accrual is persisted so repeated reads do not re-accrue.
func (s *Service) VaultBalance(ctx context.Context, charID int64) (*vault.Account, error) {
	var out *vault.Account
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		acct, err := r.vaults.GetOrCreate(ctx, char.ID)
		if err != nil {
			return err
		}
		current, accrued, err := vault.ApplyAccrual(acct, s.now(), s.cfg.Vault)
		if err != nil {
			return err
		}
		if accrued.Interest > 0 || accrued.LoanInterest > 0 {
			if err := r.vaults.Save(ctx, current); err != nil {
				return err
			}
		}
		out = current
		return nil
	})
	return out, err
}

// JailStatus reads the character's sentence state, performing lazy expiry.
func (s *Service) JailStatus(ctx context.Context, charID int64) (jail.Status, error) {
	var out jail.Status
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		rec, err := r.jails.GetOpenByUser(ctx, char.ID)
		if err != nil {
			return err
		}
		current, status := jail.GetStatus(rec, s.now())
		if status.Changed {
			if err := r.jails.Save(ctx, current); err != nil {
				return err
			}
		}
		out = status
		return nil
	})
	return out, err
}

// PayBail closes an open sentence by paying its bail from the character's
// gold.
func (s *Service) PayBail(ctx context.Context, charID int64) (*character.Character, error) {
	var out *character.Character
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		rec, err := r.jails.GetOpenByUser(ctx, char.ID)
		if err != nil {
			return err
		}
		// Lazy expiry must survive the refusal path: an already-served
		// sentence is persisted as TimeServed before reporting the conflict.
		current, status := jail.GetStatus(rec, s.now())
		if status.Changed {
			if err := r.jails.Save(ctx, current); err != nil {
				return err
			}
			return engine.Conflictf("sentence already served")
		}
		c, closed, err := jail.PayBail(char, current, s.now())
		if err != nil {
			return err
		}
		if err := r.jails.Save(ctx, closed); err != nil {
			return err
		}
		if err := r.chars.Save(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("bail paid", zap.Int64("character_id", charID))
	return out, nil
}
