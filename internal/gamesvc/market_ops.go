package gamesvc

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/economy"
	"github.com/cory-johannsen/runehall/internal/storage/postgres"
)

// ListStocks returns every listing at its current price.
func (s *Service) ListStocks(ctx context.Context) ([]*economy.Stock, error) {
	return newRepos(s.pool.DB()).stocks.List(ctx)
}

// BuyShares purchases shares at the current price, averaging the position's
// cost basis.
func (s *Service) BuyShares(ctx context.Context, charID, stockID, qty int64) (*economy.StockResult, error) {
	return s.runStockTrade(ctx, charID, stockID, qty, economy.BuyShares)
}

// SellShares sells shares at the current price, clearing the position when
// it reaches zero.
func (s *Service) SellShares(ctx context.Context, charID, stockID, qty int64) (*economy.StockResult, error) {
	return s.runStockTrade(ctx, charID, stockID, qty, economy.SellShares)
}

func (s *Service) runStockTrade(
	ctx context.Context,
	charID, stockID, qty int64,
	op func(char *character.Character, stock *economy.Stock, holding *economy.Holding, qty int64, cfg economy.Config) (*economy.StockResult, error),
) (*economy.StockResult, error) {
	var out *economy.StockResult
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		if err := s.ensureNotJailed(ctx, r, char.ID); err != nil {
			return err
		}
		stock, err := r.stocks.GetByID(ctx, stockID)
		if err != nil {
			return err
		}
		holding, err := r.stocks.GetHolding(ctx, char.ID, stockID)
		if err != nil {
			return err
		}
		res, err := op(char, stock, holding, qty, s.cfg.Economy)
		if err != nil {
			return err
		}
		if err := r.stocks.SaveHolding(ctx, res.Holding); err != nil {
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
	s.logger.Info("stock trade",
		zap.Int64("character_id", charID),
		zap.Int64("stock_id", stockID),
		zap.Int64("qty", qty),
		zap.Int64("total", out.Total),
	)
	return out, nil
}

// VaryStockPrices applies one random price movement to every listing. Each
// stock is varied under its own advisory lock so a concurrent trade never
// sees a half-applied pass. Invoked by the periodic scheduler.
func (s *Service) VaryStockPrices(ctx context.Context) error {
	stocks, err := s.ListStocks(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, listing := range stocks {
		id := listing.ID
		err := s.pool.WithEntityLock(ctx, postgres.LockClassStock, id, func(ctx context.Context, tx pgx.Tx) error {
			repo := postgres.NewStockRepository(tx)
			stock, err := repo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			varied, err := economy.VaryPrice(stock, s.src)
			if err != nil {
				return err
			}
			if err := repo.SavePrice(ctx, varied); err != nil {
				return err
			}
			s.logger.Debug("stock price varied",
				zap.String("symbol", varied.Symbol),
				zap.Int64("old_price", stock.Price),
				zap.Int64("new_price", varied.Price),
			)
			return nil
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("stock variation pass: %d of %d listings failed, first: %w", len(errs), len(stocks), errs[0])
	}
	return nil
}

// ResetDailyCounters zeroes every character's daily gates. Invoked by the
// once-per-day scheduler.
func (s *Service) ResetDailyCounters(ctx context.Context) (int64, error) {
	n, err := newRepos(s.pool.DB()).chars.ResetDailyCounters(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("daily counters reset", zap.Int64("characters", n))
	return n, nil
}
