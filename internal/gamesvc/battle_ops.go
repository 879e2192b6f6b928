package gamesvc

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/runehall/internal/game/battle"
	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/engine"
)

// StartBattle selects an encounter for the character and opens a session.
// The daily battle counter is spent here, win or lose.
func (s *Service) StartBattle(ctx context.Context, charID int64) (*battle.StartResult, error) {
	if s.selector == nil {
		return nil, engine.Configf("no encounter selector configured")
	}
	var out *battle.StartResult
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		if err := s.ensureNotJailed(ctx, r, char.ID); err != nil {
			return err
		}
		tmpl, err := s.selector.Select(char.Level, s.src)
		if err != nil {
			return err
		}
		res, err := battle.Start(char, tmpl, s.cfg.Battle, s.now())
		if err != nil {
			return err
		}
		if _, err := r.sessions.Create(ctx, res.Session); err != nil {
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
	s.logger.Info("battle started",
		zap.Int64("character_id", charID),
		zap.String("monster_id", out.Session.MonsterID),
		zap.String("session_id", out.Session.ID.String()),
	)
	return out, nil
}

// BattleTurn resolves one player action against the live session.
func (s *Service) BattleTurn(ctx context.Context, charID int64, action battle.Action) (*battle.TurnResult, error) {
	var out *battle.TurnResult
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		sess, err := r.sessions.GetLiveByCharacter(ctx, charID)
		if err != nil {
			return err
		}
		if sess == nil {
			return battle.ErrNoActiveBattle
		}
		tmpl, err := s.template(sess.MonsterID)
		if err != nil {
			return err
		}
		loadout, err := s.loadout(ctx, r, char)
		if err != nil {
			return err
		}
		// Class may legitimately be absent; level-up growth then uses the
		// base formulas alone.
		class, _ := s.refdata.Class(char.Class)

		res, err := battle.ResolveTurn(sess, char, tmpl, class, loadout, s.cfg.Battle, s.src, action)
		if err != nil {
			return err
		}
		if err := r.sessions.Save(ctx, res.Session); err != nil {
			return err
		}
		if err := r.chars.Save(ctx, res.Character); err != nil {
			return err
		}
		if res.Reward != nil && res.Reward.DropItemID != "" {
			if err := s.grantDrop(ctx, r, res.Character, res.Reward.DropItemID); err != nil {
				return err
			}
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Entry.Ended {
		s.logger.Info("battle ended",
			zap.Int64("character_id", charID),
			zap.String("outcome", out.Session.State.String()),
			zap.Int("turns", out.Session.Turn),
		)
	}
	return out, nil
}

// grantDrop mints the victory drop into the winner's inventory.
func (s *Service) grantDrop(ctx context.Context, r *repos, char *character.Character, defID string) error {
	def, err := s.def(defID)
	if err != nil {
		return err
	}
	_, err = r.items.Create(ctx, newOwnedInstance(def, char.ID))
	return err
}

// Heal restores the character's pools at the temple for a fee.
func (s *Service) Heal(ctx context.Context, charID int64) (*character.Character, error) {
	var out *character.Character
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		c, err := battle.Heal(char, s.cfg.Battle)
		if err != nil {
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

// Resurrect revives a dead character for a fee.
func (s *Service) Resurrect(ctx context.Context, charID int64) (*character.Character, error) {
	var out *character.Character
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		c, err := battle.Resurrect(char, s.cfg.Battle)
		if err != nil {
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
