// Package gamesvc coordinates the pure rules engine with persistence. Every
// operation runs inside an advisory-locked transaction keyed by the entity it
// mutates, so concurrent requests against the same character serialize at the
// database and the resolvers can stay free of locking concerns.
package gamesvc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/cory-johannsen/runehall/internal/config"
	"github.com/cory-johannsen/runehall/internal/game/battle"
	"github.com/cory-johannsen/runehall/internal/game/character"
	"github.com/cory-johannsen/runehall/internal/game/dice"
	"github.com/cory-johannsen/runehall/internal/game/encounter"
	"github.com/cory-johannsen/runehall/internal/game/engine"
	"github.com/cory-johannsen/runehall/internal/game/item"
	"github.com/cory-johannsen/runehall/internal/game/jail"
	"github.com/cory-johannsen/runehall/internal/game/monster"
	"github.com/cory-johannsen/runehall/internal/game/refdata"
	"github.com/cory-johannsen/runehall/internal/storage/postgres"
)

// repos bundles the per-transaction repository set. Built fresh over each
// locked transaction so every statement in an operation shares one tx.
type repos struct {
	chars    *postgres.CharacterRepository
	items    *postgres.ItemRepository
	vaults   *postgres.VaultRepository
	jails    *postgres.JailRepository
	stocks   *postgres.StockRepository
	sessions *postgres.BattleSessionRepository
}

func newRepos(db postgres.DB) *repos {
	return &repos{
		chars:    postgres.NewCharacterRepository(db),
		items:    postgres.NewItemRepository(db),
		vaults:   postgres.NewVaultRepository(db),
		jails:    postgres.NewJailRepository(db),
		stocks:   postgres.NewStockRepository(db),
		sessions: postgres.NewBattleSessionRepository(db),
	}
}

// Service exposes every player-facing game operation.
//
// Precondition: all fields must be non-nil after construction; selector may
// be nil only if StartBattle is never called.
type Service struct {
	pool     *postgres.Pool
	refdata  *refdata.Registry
	defs     map[string]*item.Def
	monsters map[string]*monster.Template
	selector *encounter.Selector
	src      dice.Source
	cfg      config.GameConfig
	logger   *zap.Logger

	// now is the clock; tests override it for time-window assertions.
	now func() time.Time
}

// New creates a Service over the given pool and loaded content.
func New(
	pool *postgres.Pool,
	registry *refdata.Registry,
	defs map[string]*item.Def,
	monsters map[string]*monster.Template,
	selector *encounter.Selector,
	src dice.Source,
	cfg config.GameConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		pool:     pool,
		refdata:  registry,
		defs:     defs,
		monsters: monsters,
		selector: selector,
		src:      src,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// withCharacter runs fn while holding the character's advisory lock, with a
// fresh snapshot loaded inside the transaction.
func (s *Service) withCharacter(ctx context.Context, charID int64, fn func(ctx context.Context, r *repos, char *character.Character) error) error {
	return s.pool.WithEntityLock(ctx, postgres.LockClassCharacter, charID, func(ctx context.Context, tx pgx.Tx) error {
		r := newRepos(tx)
		char, err := r.chars.GetByID(ctx, charID)
		if err != nil {
			return err
		}
		return fn(ctx, r, char)
	})
}

// def resolves an item definition id against the loaded catalog.
func (s *Service) def(id string) (*item.Def, error) {
	d, ok := s.defs[id]
	if !ok {
		return nil, engine.Validationf("unknown item definition %q", id)
	}
	return d, nil
}

// template resolves a monster template id against the loaded content.
func (s *Service) template(id string) (*monster.Template, error) {
	t, ok := s.monsters[id]
	if !ok {
		return nil, engine.Configf("unknown monster template %q", id)
	}
	return t, nil
}

// ensureNotJailed blocks gated actions while a sentence is open. Reading the
// record performs lazy expiry; an expired record is closed here and the
// action proceeds.
func (s *Service) ensureNotJailed(ctx context.Context, r *repos, userID int64) error {
	rec, err := r.jails.GetOpenByUser(ctx, userID)
	if err != nil {
		return err
	}
	current, status := jail.GetStatus(rec, s.now())
	if status.Changed {
		if err := r.jails.Save(ctx, current); err != nil {
			return err
		}
	}
	if status.IsJailed {
		return engine.Conflictf("jailed for another %ds, bail costs %d gold", status.RemainingSeconds, status.BailCost)
	}
	return nil
}

// newOwnedInstance mints a fresh quality-0 instance of def for ownerID.
func newOwnedInstance(def *item.Def, ownerID int64) *item.Instance {
	return &item.Instance{
		DefID:       def.ID,
		OwnerID:     ownerID,
		Durability:  def.DurationMax,
		InstanceKey: uuid.NewString(),
	}
}

// loadout sums the combat contributions of the character's equipped gear.
// Empty slots contribute nothing.
func (s *Service) loadout(ctx context.Context, r *repos, char *character.Character) (battle.Loadout, error) {
	var out battle.Loadout
	for _, slot := range []struct {
		id     int64
		weapon bool
	}{
		{char.Equipment.Weapon, true},
		{char.Equipment.Armor, false},
		{char.Equipment.Shield, false},
	} {
		if slot.id == 0 {
			continue
		}
		inst, err := r.items.GetByID(ctx, slot.id)
		if err != nil {
			return battle.Loadout{}, err
		}
		def, err := s.def(inst.DefID)
		if err != nil {
			return battle.Loadout{}, err
		}
		if slot.weapon {
			out.WeaponPower += def.Power
		} else {
			out.ArmorPower += def.Power
		}
	}
	return out, nil
}
