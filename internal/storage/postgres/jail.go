package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/runehall/internal/game/jail"
)

// ErrJailRecordNotFound is returned when a jail lookup yields no results.
var ErrJailRecordNotFound = errors.New("jail record not found")

// ErrAlreadyJailed is returned when inserting a second open sentence for a user.
var ErrAlreadyJailed = errors.New("user already has an open sentence")

const jailColumns = `id, user_id, reason, jailed_at, release_at, bail_cost, released`

// JailRepository provides jail record persistence operations.
type JailRepository struct {
	db DB
}

// NewJailRepository creates a JailRepository backed by db.
func NewJailRepository(db DB) *JailRepository {
	return &JailRepository{db: db}
}

func scanJail(row pgx.Row) (*jail.Record, error) {
	var rec jail.Record
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Reason, &rec.JailedAt, &rec.ReleaseAt, &rec.BailCost, &rec.Released)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserts an open sentence. The partial unique index enforces at most
// one open record per user.
//
// Postcondition: Returns the record with ID set, or ErrAlreadyJailed.
func (r *JailRepository) Create(ctx context.Context, rec *jail.Record) (*jail.Record, error) {
	out, err := scanJail(r.db.QueryRow(ctx, `
		INSERT INTO jail_records (user_id, reason, jailed_at, release_at, bail_cost, released)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING `+jailColumns,
		rec.UserID, rec.Reason, rec.JailedAt, rec.ReleaseAt, rec.BailCost, rec.Released,
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrAlreadyJailed
		}
		return nil, fmt.Errorf("inserting jail record: %w", err)
	}
	return out, nil
}

// GetOpenByUser returns the user's open sentence, if any.
//
// Postcondition: Returns (nil, nil) when the user is not jailed.
func (r *JailRepository) GetOpenByUser(ctx context.Context, userID int64) (*jail.Record, error) {
	out, err := scanJail(r.db.QueryRow(ctx,
		`SELECT `+jailColumns+` FROM jail_records WHERE user_id = $1 AND released = 0`,
		userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying jail record: %w", err)
	}
	return out, nil
}

// Save persists the released state of a record, closing it after lazy expiry
// or bail payment.
//
// Postcondition: Returns nil on success, ErrJailRecordNotFound if no row updated.
func (r *JailRepository) Save(ctx context.Context, rec *jail.Record) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE jail_records SET released = $2 WHERE id = $1`,
		rec.ID, rec.Released,
	)
	if err != nil {
		return fmt.Errorf("saving jail record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrJailRecordNotFound
	}
	return nil
}
