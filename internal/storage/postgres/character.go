package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/runehall/internal/game/character"
)

// ErrCharacterNotFound is returned when a character lookup yields no results.
var ErrCharacterNotFound = errors.New("character not found")

// ErrCharacterNameTaken is returned when creating a character with a name already used by the account.
var ErrCharacterNameTaken = errors.New("character name already taken")

const characterColumns = `
	id, account_id, name, race, class, element, level, xp, gold,
	strength, dexterity, constitution, intelligence, wisdom, charisma,
	max_hp, current_hp, max_mp, current_mp,
	skill_points, skills,
	weapon_id, armor_id, shield_id, amulet_id,
	battles, works, thefts, stock_trades,
	is_battling, is_dead, created_at, updated_at`

// CharacterRepository provides character persistence operations.
type CharacterRepository struct {
	db DB
}

// NewCharacterRepository creates a CharacterRepository backed by db, which
// may be a pool or an open transaction.
func NewCharacterRepository(db DB) *CharacterRepository {
	return &CharacterRepository{db: db}
}

func scanCharacter(row pgx.Row) (*character.Character, error) {
	var c character.Character
	var skills []byte
	err := row.Scan(
		&c.ID, &c.AccountID, &c.Name, &c.Race, &c.Class, &c.Element,
		&c.Level, &c.XP, &c.Gold,
		&c.Stats.Strength, &c.Stats.Dexterity, &c.Stats.Constitution,
		&c.Stats.Intelligence, &c.Stats.Wisdom, &c.Stats.Charisma,
		&c.MaxHP, &c.CurrentHP, &c.MaxMP, &c.CurrentMP,
		&c.SkillPoints, &skills,
		&c.Equipment.Weapon, &c.Equipment.Armor, &c.Equipment.Shield, &c.Equipment.Amulet,
		&c.Counters.Battles, &c.Counters.Works, &c.Counters.Thefts, &c.Counters.StockTrades,
		&c.IsBattling, &c.IsDead, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(skills, &c.Skills); err != nil {
		return nil, fmt.Errorf("decoding skills: %w", err)
	}
	return &c, nil
}

// Create inserts a new character and returns it with ID and timestamps set.
//
// Precondition: c.AccountID must reference an existing account; c must pass Validate.
// Postcondition: Returns the created character with ID set, or ErrCharacterNameTaken on duplicate.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	skills, err := json.Marshal(c.Skills)
	if err != nil {
		return nil, fmt.Errorf("encoding skills: %w", err)
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO characters
			(account_id, name, race, class, element, level, xp, gold,
			 strength, dexterity, constitution, intelligence, wisdom, charisma,
			 max_hp, current_hp, max_mp, current_mp, skill_points, skills)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING`+characterColumns,
		c.AccountID, c.Name, c.Race, c.Class, c.Element, c.Level, c.XP, c.Gold,
		c.Stats.Strength, c.Stats.Dexterity, c.Stats.Constitution,
		c.Stats.Intelligence, c.Stats.Wisdom, c.Stats.Charisma,
		c.MaxHP, c.CurrentHP, c.MaxMP, c.CurrentMP, c.SkillPoints, skills,
	)
	out, err := scanCharacter(row)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrCharacterNameTaken
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	return out, nil
}

// GetByID retrieves a character by its primary key.
//
// Precondition: id must be > 0.
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*character.Character, error) {
	out, err := scanCharacter(r.db.QueryRow(ctx,
		`SELECT`+characterColumns+` FROM characters WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return out, nil
}

// ListByAccount returns all characters for the given account ID, ordered by created_at.
//
// Precondition: accountID must be > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) ListByAccount(ctx context.Context, accountID int64) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx,
		`SELECT`+characterColumns+` FROM characters WHERE account_id = $1 ORDER BY created_at ASC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// Save persists the full mutable state of a character snapshot. Resolvers
// return whole snapshots, so every mutable column is written.
//
// Precondition: c.ID must be > 0.
// Postcondition: Returns nil on success, ErrCharacterNotFound if no row updated.
func (r *CharacterRepository) Save(ctx context.Context, c *character.Character) error {
	skills, err := json.Marshal(c.Skills)
	if err != nil {
		return fmt.Errorf("encoding skills: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE characters SET
			level = $2, xp = $3, gold = $4,
			strength = $5, dexterity = $6, constitution = $7,
			intelligence = $8, wisdom = $9, charisma = $10,
			max_hp = $11, current_hp = $12, max_mp = $13, current_mp = $14,
			skill_points = $15, skills = $16,
			weapon_id = $17, armor_id = $18, shield_id = $19, amulet_id = $20,
			battles = $21, works = $22, thefts = $23, stock_trades = $24,
			is_battling = $25, is_dead = $26, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Level, c.XP, c.Gold,
		c.Stats.Strength, c.Stats.Dexterity, c.Stats.Constitution,
		c.Stats.Intelligence, c.Stats.Wisdom, c.Stats.Charisma,
		c.MaxHP, c.CurrentHP, c.MaxMP, c.CurrentMP,
		c.SkillPoints, skills,
		c.Equipment.Weapon, c.Equipment.Armor, c.Equipment.Shield, c.Equipment.Amulet,
		c.Counters.Battles, c.Counters.Works, c.Counters.Thefts, c.Counters.StockTrades,
		c.IsBattling, c.IsDead,
	)
	if err != nil {
		return fmt.Errorf("saving character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

// ResetDailyCounters zeroes the daily counters for every character. Invoked
// by the once-per-day scheduler.
//
// Postcondition: Returns the number of rows reset.
func (r *CharacterRepository) ResetDailyCounters(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE characters
		SET battles = 0, works = 0, thefts = 0, stock_trades = 0, updated_at = NOW()
		WHERE battles > 0 OR works > 0 OR thefts > 0 OR stock_trades > 0`)
	if err != nil {
		return 0, fmt.Errorf("resetting daily counters: %w", err)
	}
	return tag.RowsAffected(), nil
}
