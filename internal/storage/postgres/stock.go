package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/runehall/internal/game/economy"
)

// ErrStockNotFound is returned when a stock lookup yields no results.
var ErrStockNotFound = errors.New("stock not found")

const stockColumns = `id, symbol, name, price, min_price, max_price, min_change_percent, max_change_percent`

// StockRepository provides stock listing and holding persistence operations.
type StockRepository struct {
	db DB
}

// NewStockRepository creates a StockRepository backed by db.
func NewStockRepository(db DB) *StockRepository {
	return &StockRepository{db: db}
}

func scanStock(row pgx.Row) (*economy.Stock, error) {
	var s economy.Stock
	err := row.Scan(&s.ID, &s.Symbol, &s.Name, &s.Price, &s.MinPrice, &s.MaxPrice, &s.MinChangePercent, &s.MaxChangePercent)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new listing and returns it with ID set.
func (r *StockRepository) Create(ctx context.Context, s *economy.Stock) (*economy.Stock, error) {
	out, err := scanStock(r.db.QueryRow(ctx, `
		INSERT INTO stocks (symbol, name, price, min_price, max_price, min_change_percent, max_change_percent)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+stockColumns,
		s.Symbol, s.Name, s.Price, s.MinPrice, s.MaxPrice, s.MinChangePercent, s.MaxChangePercent,
	))
	if err != nil {
		return nil, fmt.Errorf("inserting stock: %w", err)
	}
	return out, nil
}

// GetByID retrieves a listing by its primary key.
//
// Postcondition: Returns the Stock or ErrStockNotFound.
func (r *StockRepository) GetByID(ctx context.Context, id int64) (*economy.Stock, error) {
	out, err := scanStock(r.db.QueryRow(ctx,
		`SELECT `+stockColumns+` FROM stocks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStockNotFound
		}
		return nil, fmt.Errorf("querying stock: %w", err)
	}
	return out, nil
}

// List returns every listing ordered by symbol.
func (r *StockRepository) List(ctx context.Context) ([]*economy.Stock, error) {
	rows, err := r.db.Query(ctx, `SELECT `+stockColumns+` FROM stocks ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing stocks: %w", err)
	}
	defer rows.Close()

	stocks := make([]*economy.Stock, 0)
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning stock row: %w", err)
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

// SavePrice persists the current share price after a variation pass.
//
// Postcondition: Returns nil on success, ErrStockNotFound if no row updated.
func (r *StockRepository) SavePrice(ctx context.Context, s *economy.Stock) error {
	tag, err := r.db.Exec(ctx, `UPDATE stocks SET price = $2 WHERE id = $1`, s.ID, s.Price)
	if err != nil {
		return fmt.Errorf("saving stock price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStockNotFound
	}
	return nil
}

// GetHolding returns the user's position in a stock, nil when none exists.
func (r *StockRepository) GetHolding(ctx context.Context, userID, stockID int64) (*economy.Holding, error) {
	var h economy.Holding
	err := r.db.QueryRow(ctx, `
		SELECT user_id, stock_id, shares, avg_price
		FROM stock_holdings WHERE user_id = $1 AND stock_id = $2`,
		userID, stockID,
	).Scan(&h.UserID, &h.StockID, &h.Shares, &h.AvgPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying holding: %w", err)
	}
	return &h, nil
}

// SaveHolding upserts a position. A zero-share position is deleted.
func (r *StockRepository) SaveHolding(ctx context.Context, h *economy.Holding) error {
	if h.Shares == 0 {
		_, err := r.db.Exec(ctx,
			`DELETE FROM stock_holdings WHERE user_id = $1 AND stock_id = $2`,
			h.UserID, h.StockID,
		)
		if err != nil {
			return fmt.Errorf("deleting holding: %w", err)
		}
		return nil
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO stock_holdings (user_id, stock_id, shares, avg_price)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id, stock_id)
		DO UPDATE SET shares = EXCLUDED.shares, avg_price = EXCLUDED.avg_price`,
		h.UserID, h.StockID, h.Shares, h.AvgPrice,
	)
	if err != nil {
		return fmt.Errorf("saving holding: %w", err)
	}
	return nil
}
