package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/runehall/internal/game/item"
)

// ErrItemNotFound is returned when an item lookup yields no results.
var ErrItemNotFound = errors.New("item not found")

const itemColumns = `id, def_id, owner_id, shop_id, quality, durability, equipped, instance_key`

// ItemRepository provides item instance persistence operations.
type ItemRepository struct {
	db DB
}

// NewItemRepository creates an ItemRepository backed by db.
func NewItemRepository(db DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func scanItem(row pgx.Row) (*item.Instance, error) {
	var i item.Instance
	err := row.Scan(&i.ID, &i.DefID, &i.OwnerID, &i.ShopID, &i.Quality, &i.Durability, &i.Equipped, &i.InstanceKey)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Create inserts a new instance and returns it with ID set.
//
// Precondition: inst.InstanceKey must be a fresh uuid.
func (r *ItemRepository) Create(ctx context.Context, inst *item.Instance) (*item.Instance, error) {
	out, err := scanItem(r.db.QueryRow(ctx, `
		INSERT INTO items (def_id, owner_id, shop_id, quality, durability, equipped, instance_key)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+itemColumns,
		inst.DefID, inst.OwnerID, inst.ShopID, inst.Quality, inst.Durability, inst.Equipped, inst.InstanceKey,
	))
	if err != nil {
		return nil, fmt.Errorf("inserting item: %w", err)
	}
	return out, nil
}

// GetByID retrieves an instance by its primary key.
//
// Postcondition: Returns the Instance or ErrItemNotFound.
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*item.Instance, error) {
	out, err := scanItem(r.db.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("querying item: %w", err)
	}
	return out, nil
}

// ListByOwner returns all instances owned by a character.
func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*item.Instance, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items WHERE owner_id = $1 ORDER BY id ASC`, ownerID)
}

// ListByShop returns all instances stocked by a shop.
func (r *ItemRepository) ListByShop(ctx context.Context, shopID int64) ([]*item.Instance, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items WHERE shop_id = $1 AND owner_id = 0 ORDER BY id ASC`, shopID)
}

func (r *ItemRepository) list(ctx context.Context, sql string, arg any) ([]*item.Instance, error) {
	rows, err := r.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := make([]*item.Instance, 0)
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// Save persists ownership, quality, durability, and equip state.
//
// Postcondition: Returns nil on success, ErrItemNotFound if no row updated.
func (r *ItemRepository) Save(ctx context.Context, inst *item.Instance) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE items SET owner_id = $2, shop_id = $3, quality = $4, durability = $5, equipped = $6
		WHERE id = $1`,
		inst.ID, inst.OwnerID, inst.ShopID, inst.Quality, inst.Durability, inst.Equipped,
	)
	if err != nil {
		return fmt.Errorf("saving item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Delete removes an instance, used when materials are consumed or dropped
// goods leave circulation.
//
// Postcondition: Returns nil on success, ErrItemNotFound if no row deleted.
func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
