package gamesvc

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/engine"
	"github.com/cory-johannsen/runehall/internal/storage/postgres"
)

// CreateCharacter rolls and persists a new character for the account.
//
// Postcondition: the returned character has its stats rolled, starting pools
// derived from race and class, and an ID assigned.
func (s *Service) CreateCharacter(ctx context.Context, accountID int64, name, raceID, classID string) (*character.Character, error) {
	race, ok := s.refdata.Race(raceID)
	if !ok {
		return nil, engine.Validationf("unknown race %q", raceID)
	}
	class, ok := s.refdata.Class(classID)
	if !ok {
		return nil, engine.Validationf("unknown class %q", classID)
	}

	char, err := character.Build(name, race, class, s.src)
	if err != nil {
		return nil, err
	}
	char.AccountID = accountID

	created, err := postgres.NewCharacterRepository(s.pool.DB()).Create(ctx, char)
	if err != nil {
		return nil, err
	}
	s.logger.Info("character created",
		zap.Int64("character_id", created.ID),
		zap.String("name", created.Name),
		zap.String("race", raceID),
		zap.String("class", classID),
	)
	return created, nil
}

// GetCharacter loads a character snapshot without taking its lock.
func (s *Service) GetCharacter(ctx context.Context, charID int64) (*character.Character, error) {
	return postgres.NewCharacterRepository(s.pool.DB()).GetByID(ctx, charID)
}

// ListCharacters returns the account's characters.
func (s *Service) ListCharacters(ctx context.Context, accountID int64) ([]*character.Character, error) {
	return postgres.NewCharacterRepository(s.pool.DB()).ListByAccount(ctx, accountID)
}

// SpendSkillPoint converts one unspent point into a skill level.
func (s *Service) SpendSkillPoint(ctx context.Context, charID int64, skill string) (*character.Character, error) {
	var out *character.Character
	err := s.withCharacter(ctx, charID, func(ctx context.Context, r *repos, char *character.Character) error {
		c := char.Clone()
		if err := c.SpendSkillPoint(skill); err != nil {
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
