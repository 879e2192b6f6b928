package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/runehall/internal/game/vault"
)

// ErrVaultAccountNotFound is returned when a vault lookup yields no results.
var ErrVaultAccountNotFound = errors.New("vault account not found")

// VaultRepository provides vault account persistence operations.
type VaultRepository struct {
	db DB
}

// NewVaultRepository creates a VaultRepository backed by db.
func NewVaultRepository(db DB) *VaultRepository {
	return &VaultRepository{db: db}
}

func scanVault(row pgx.Row) (*vault.Account, error) {
	var a vault.Account
	var loanAt *time.Time
	if err := row.Scan(&a.UserID, &a.Balance, &a.LastInterestAt, &a.LoanAmount, &loanAt); err != nil {
		return nil, err
	}
	if loanAt != nil {
		a.LoanInterestAt = *loanAt
	}
	return &a, nil
}

// GetOrCreate returns the user's vault account, opening an empty one on
// first use.
func (r *VaultRepository) GetOrCreate(ctx context.Context, userID int64) (*vault.Account, error) {
	out, err := scanVault(r.db.QueryRow(ctx, `
		INSERT INTO vault_accounts (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, balance, last_interest_at, loan_amount, loan_interest_at`,
		userID,
	))
	if err != nil {
		return nil, fmt.Errorf("opening vault account: %w", err)
	}
	return out, nil
}

// Get retrieves the user's vault account.
//
// Postcondition: Returns the Account or ErrVaultAccountNotFound.
func (r *VaultRepository) Get(ctx context.Context, userID int64) (*vault.Account, error) {
	out, err := scanVault(r.db.QueryRow(ctx, `
		SELECT user_id, balance, last_interest_at, loan_amount, loan_interest_at
		FROM vault_accounts WHERE user_id = $1`,
		userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVaultAccountNotFound
		}
		return nil, fmt.Errorf("querying vault account: %w", err)
	}
	return out, nil
}

// Save persists a vault account snapshot.
//
// Postcondition: Returns nil on success, ErrVaultAccountNotFound if no row updated.
func (r *VaultRepository) Save(ctx context.Context, a *vault.Account) error {
	var loanAt *time.Time
	if !a.LoanInterestAt.IsZero() {
		loanAt = &a.LoanInterestAt
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE vault_accounts
		SET balance = $2, last_interest_at = $3, loan_amount = $4, loan_interest_at = $5
		WHERE user_id = $1`,
		a.UserID, a.Balance, a.LastInterestAt, a.LoanAmount, loanAt,
	)
	if err != nil {
		return fmt.Errorf("saving vault account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVaultAccountNotFound
	}
	return nil
}
