package gamesvc

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/craft"
	"github.com/cory-johannsen/runehall/internal/game/item"
)

// persistCraft writes a crafting result: the character snapshot, the minted
// output, the updated enchant target, and the consumed materials.
func (s *Service) persistCraft(ctx context.Context, r *repos, res *craft.Result) error {
	if err := r.chars.Save(ctx, res.Character); err != nil {
		return err
	}
	if res.Produced != nil {
		created, err := r.items.Create(ctx, res.Produced)
		if err != nil {
			return err
		}
		res.Produced = created
	}
	if res.Updated != nil {
		if err := r.items.Save(ctx, res.Updated); err != nil {
			return err
		}
	}
	for _, id := range res.Consumed {
		if err := r.items.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Mine gathers raw ore; success mints one ore instance.
func (s *Service) Mine(ctx context.Context, charID int64) (*craft.Result, error) {
	var out *craft.Result
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		if err := s.ensureNotJailed(ctx, r, char.ID); err != nil {
			return err
		}
		oreDef, err := s.def(s.cfg.Craft.Mining.OutputDefID)
		if err != nil {
			return err
		}
		res, err := craft.Mine(char, oreDef, s.cfg.Craft, s.src)
		if err != nil {
			return err
		}
		if err := s.persistCraft(ctx, r, res); err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("mining attempt", zap.Int64("character_id", charID), zap.Bool("success", out.Success))
	return out, nil
}

// CutStone refines one raw input into worked stone.
func (s *Service) CutStone(ctx context.Context, charID, inputItemID int64) (*craft.Result, error) {
	var out *craft.Result
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		if err := s.ensureNotJailed(ctx, r, char.ID); err != nil {
			return err
		}
		input, err := r.items.GetByID(ctx, inputItemID)
		if err != nil {
			return err
		}
		outDef, err := s.def(s.cfg.Craft.StoneCutting.OutputDefID)
		if err != nil {
			return err
		}
		res, err := craft.CutStone(char, input, outDef, s.cfg.Craft, s.src)
		if err != nil {
			return err
		}
		if err := s.persistCraft(ctx, r, res); err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// Enchant raises an equippable item's quality tier, consuming one material
// on success.
func (s *Service) Enchant(ctx context.Context, charID, targetItemID, materialItemID int64) (*craft.Result, error) {
	var out *craft.Result
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		if err := s.ensureNotJailed(ctx, r, char.ID); err != nil {
			return err
		}
		target, err := r.items.GetByID(ctx, targetItemID)
		if err != nil {
			return err
		}
		targetDef, err := s.def(target.DefID)
		if err != nil {
			return err
		}
		material, err := r.items.GetByID(ctx, materialItemID)
		if err != nil {
			return err
		}
		res, err := craft.Enchant(char, target, targetDef, material, s.cfg.Craft, s.src)
		if err != nil {
			return err
		}
		if err := s.persistCraft(ctx, r, res); err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// Forge smiths a recipe output from the named material instances.
func (s *Service) Forge(ctx context.Context, charID int64, outputDefID string, materialItemIDs []int64) (*craft.Result, error) {
	var out *craft.Result
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		if err := s.ensureNotJailed(ctx, r, char.ID); err != nil {
			return err
		}
		outDef, err := s.def(outputDefID)
		if err != nil {
			return err
		}
		materials := make([]*item.Instance, 0, len(materialItemIDs))
		for _, id := range materialItemIDs {
			inst, err := r.items.GetByID(ctx, id)
			if err != nil {
				return err
			}
			materials = append(materials, inst)
		}
		res, err := craft.Forge(char, outDef, materials, s.cfg.Craft, s.src)
		if err != nil {
			return err
		}
		if err := s.persistCraft(ctx, r, res); err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("forge attempt",
		zap.Int64("character_id", charID),
		zap.String("output", outputDefID),
		zap.String("outcome", out.Outcome.String()),
	)
	return out, nil
}
