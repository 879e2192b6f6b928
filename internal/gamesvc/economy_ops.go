package gamesvc

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/economy"
	"github.com/cory-johannsen/runehall/internal/game/item"
)

// BuyItem purchases a shop-stocked instance at the character's discounted
// price.
func (s *Service) BuyItem(ctx context.Context, charID, itemID int64) (*economy.TradeResult, error) {
	var out *economy.TradeResult
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		if err := s.ensureNotJailed(ctx, r, char.ID); err != nil {
			return err
		}
		inst, err := r.items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		def, err := s.def(inst.DefID)
		if err != nil {
			return err
		}
		res, err := economy.Buy(char, inst, def, s.cfg.Economy)
		if err != nil {
			return err
		}
		if err := r.items.Save(ctx, res.Instance); err != nil {
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
	s.logger.Info("item bought",
		zap.Int64("character_id", charID),
		zap.Int64("item_id", itemID),
		zap.Int64("price", out.Price),
	)
	return out, nil
}

// SellItem sells an owned instance to a shop at half list price, less tax.
func (s *Service) SellItem(ctx context.Context, charID, itemID, shopID int64) (*economy.TradeResult, error) {
	var out *economy.TradeResult
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		if err := s.ensureNotJailed(ctx, r, char.ID); err != nil {
			return err
		}
		inst, err := r.items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		def, err := s.def(inst.DefID)
		if err != nil {
			return err
		}
		res, err := economy.Sell(char, inst, def, shopID, s.cfg.Economy)
		if err != nil {
			return err
		}
		if err := r.items.Save(ctx, res.Instance); err != nil {
			return err
		}
		if err := r.chars.Save(ctx, res.Character); err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// GiveItem transfers an unequipped instance to another character for free.
func (s *Service) GiveItem(ctx context.Context, fromCharID, toCharID, itemID int64) (*item.Instance, error) {
	var out *item.Instance
	err := s.withCharacter(ctx, fromCharID, func(ctx context.Context, r *repos, char *character.Character) error {
		if err := s.ensureNotJailed(ctx, r, char.ID); err != nil {
			return err
		}
		// Confirms the recipient exists before handing the item over.
		if _, err := r.chars.GetByID(ctx, toCharID); err != nil {
			return err
		}
		inst, err := r.items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		given, err := economy.Give(char.ID, toCharID, inst)
		if err != nil {
			return err
		}
		if err := r.items.Save(ctx, given); err != nil {
			return err
		}
		out = given
		return nil
	})
	return out, err
}

// DropItem discards an owned instance; the item leaves circulation.
func (s *Service) DropItem(ctx context.Context, charID, itemID int64) error {
	return s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		inst, err := r.items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if _, err := economy.Drop(char.ID, inst); err != nil {
			return err
		}
		return r.items.Delete(ctx, itemID)
	})
}

// RepairItem restores a damaged instance to full durability for a fee.
func (s *Service) RepairItem(ctx context.Context, charID, itemID int64) (*economy.TradeResult, error) {
	var out *economy.TradeResult
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		if err := s.ensureNotJailed(ctx, r, char.ID); err != nil {
			return err
		}
		inst, err := r.items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		def, err := s.def(inst.DefID)
		if err != nil {
			return err
		}
		res, err := economy.Repair(char, inst, def, s.cfg.Economy)
		if err != nil {
			return err
		}
		if err := r.items.Save(ctx, res.Instance); err != nil {
			return err
		}
		if err := r.chars.Save(ctx, res.Character); err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// StealItem attempts to take an instance the character does not own. The
// daily theft counter is spent on every attempt; a failed attempt may land
// the thief in jail.
func (s *Service) StealItem(ctx context.Context, charID, itemID int64) (*economy.StealResult, error) {
	var out *economy.StealResult
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		if err := s.ensureNotJailed(ctx, r, char.ID); err != nil {
			return err
		}
		inst, err := r.items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		def, err := s.def(inst.DefID)
		if err != nil {
			return err
		}
		res, err := economy.Steal(char, inst, def, s.now(), s.src, s.cfg.Economy, s.cfg.Jail)
		if err != nil {
			return err
		}
		// The attempt itself is spent even when the theft fails.
		if err := r.chars.Save(ctx, res.Character); err != nil {
			return err
		}
		if res.Attempt.Success {
			if err := r.items.Save(ctx, res.Instance); err != nil {
				return err
			}
		}
		if res.Jail != nil {
			created, err := r.jails.Create(ctx, res.Jail)
			if err != nil {
				return err
			}
			res.Jail = created
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("steal attempt",
		zap.Int64("character_id", charID),
		zap.Int64("item_id", itemID),
		zap.Bool("success", out.Attempt.Success),
		zap.Bool("jailed", out.Jail != nil),
	)
	return out, nil
}

// EquipItem places an owned instance into its equipment slot.
func (s *Service) EquipItem(ctx context.Context, charID, itemID int64) (*character.Character, error) {
	var out *character.Character
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		inst, err := r.items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		def, err := s.def(inst.DefID)
		if err != nil {
			return err
		}
		c, updated, err := economy.Equip(char, inst, def)
		if err != nil {
			return err
		}
		if err := r.items.Save(ctx, updated); err != nil {
			return err
		}
		if err := r.chars.Save(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

// UnequipItem clears an instance from its equipment slot.
func (s *Service) UnequipItem(ctx context.Context, charID, itemID int64) (*character.Character, error) {
	var out *character.Character
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		inst, err := r.items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		def, err := s.def(inst.DefID)
		if err != nil {
			return err
		}
		c, updated, err := economy.Unequip(char, inst, def)
		if err != nil {
			return err
		}
		if err := r.items.Save(ctx, updated); err != nil {
			return err
		}
		if err := r.chars.Save(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

// Inventory lists the character's owned instances.
func (s *Service) Inventory(ctx context.Context, charID int64) ([]*item.Instance, error) {
	return newRepos(s.pool.DB()).items.ListByOwner(ctx, charID)
}

// ShopStock lists the instances a shop currently offers.
func (s *Service) ShopStock(ctx context.Context, shopID int64) ([]*item.Instance, error) {
	return newRepos(s.pool.DB()).items.ListByShop(ctx, shopID)
}
