package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/runehall/internal/game/battle"
)

// ErrSessionNotFound is returned when a battle session lookup yields no results.
var ErrSessionNotFound = errors.New("battle session not found")

// ErrSessionExists is returned when inserting a second live session for a character.
var ErrSessionExists = errors.New("character already has a live battle session")

const sessionColumns = `
	id, character_id, monster_id, state, turn,
	player_hp, player_mp, monster_hp, monster_mp,
	player_defending, turn_log, started_at`

// BattleSessionRepository persists battle sessions with their immutable turn
// logs as jsonb.
type BattleSessionRepository struct {
	db DB
}

// NewBattleSessionRepository creates a BattleSessionRepository backed by db.
func NewBattleSessionRepository(db DB) *BattleSessionRepository {
	return &BattleSessionRepository{db: db}
}

func scanSession(row pgx.Row) (*battle.Session, error) {
	var s battle.Session
	var log []byte
	err := row.Scan(
		&s.ID, &s.CharacterID, &s.MonsterID, &s.State, &s.Turn,
		&s.PlayerHP, &s.PlayerMP, &s.MonsterHP, &s.MonsterMP,
		&s.PlayerDefending, &log, &s.StartedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(log, &s.Log); err != nil {
		return nil, fmt.Errorf("decoding turn log: %w", err)
	}
	return &s, nil
}

// Create inserts a new session. The partial unique index enforces one live
// session per character.
//
// Postcondition: Returns ErrSessionExists when a live session already exists.
func (r *BattleSessionRepository) Create(ctx context.Context, s *battle.Session) (*battle.Session, error) {
	log, err := json.Marshal(s.Log)
	if err != nil {
		return nil, fmt.Errorf("encoding turn log: %w", err)
	}
	out, err := scanSession(r.db.QueryRow(ctx, `
		INSERT INTO battle_sessions
			(id, character_id, monster_id, state, turn,
			 player_hp, player_mp, monster_hp, monster_mp,
			 player_defending, turn_log, started_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING`+sessionColumns,
		s.ID, s.CharacterID, s.MonsterID, s.State, s.Turn,
		s.PlayerHP, s.PlayerMP, s.MonsterHP, s.MonsterMP,
		s.PlayerDefending, log, s.StartedAt,
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrSessionExists
		}
		return nil, fmt.Errorf("inserting battle session: %w", err)
	}
	return out, nil
}

// GetLiveByCharacter returns the character's in-progress session, if any.
//
// Postcondition: Returns (nil, nil) when no live session exists.
func (r *BattleSessionRepository) GetLiveByCharacter(ctx context.Context, characterID int64) (*battle.Session, error) {
	out, err := scanSession(r.db.QueryRow(ctx,
		`SELECT`+sessionColumns+` FROM battle_sessions WHERE character_id = $1 AND state = $2`,
		characterID, battle.StateInProgress,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying battle session: %w", err)
	}
	return out, nil
}

// Save persists a session snapshot after a turn.
//
// Postcondition: Returns nil on success, ErrSessionNotFound if no row updated.
func (r *BattleSessionRepository) Save(ctx context.Context, s *battle.Session) error {
	log, err := json.Marshal(s.Log)
	if err != nil {
		return fmt.Errorf("encoding turn log: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE battle_sessions SET
			state = $2, turn = $3,
			player_hp = $4, player_mp = $5, monster_hp = $6, monster_mp = $7,
			player_defending = $8, turn_log = $9, updated_at = NOW()
		WHERE id = $1`,
		s.ID, s.State, s.Turn,
		s.PlayerHP, s.PlayerMP, s.MonsterHP, s.MonsterMP,
		s.PlayerDefending, log,
	)
	if err != nil {
		return fmt.Errorf("saving battle session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}
