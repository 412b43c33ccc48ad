package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/menuboard/display-server-go/internal/database"
	"github.com/menuboard/display-server-go/internal/model"
)

type MenuRepository interface {
	Create(ctx context.Context, params model.CreateMenuParams) (*model.Menu, error)
	FindByID(ctx context.Context, id string) (*model.Menu, error)
	FindByRestaurantID(ctx context.Context, restaurantID string) ([]model.Menu, error)
	FindItems(ctx context.Context, menuID string) ([]model.Item, error)
	Update(ctx context.Context, id string, params model.UpdateMenuParams) (*model.Menu, error)
	Delete(ctx context.Context, id string) error
}

type menuRepo struct {
	db *database.DB
}

func NewMenuRepository(db *database.DB) MenuRepository {
	return &menuRepo{db: db}
}

// Create inserts the menu row and its ordered item list in one transaction.
func (r *menuRepo) Create(ctx context.Context, params model.CreateMenuParams) (*model.Menu, error) {
	var menu model.Menu
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &menu, `
			INSERT INTO menus (id, restaurant_id, name, description)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		`, params.ID, params.RestaurantID, params.Name, params.Description); err != nil {
			return err
		}
		return setMenuItems(ctx, tx, menu.ID, params.ItemIDs)
	})
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *menuRepo) FindByID(ctx context.Context, id string) (*model.Menu, error) {
	var menu model.Menu
	err := r.db.GetContext(ctx, &menu, `SELECT * FROM menus WHERE id = $1`, id)
	return HandleNotFound(&menu, err)
}

func (r *menuRepo) FindByRestaurantID(ctx context.Context, restaurantID string) ([]model.Menu, error) {
	menus := []model.Menu{}
	err := r.db.SelectContext(ctx, &menus, `
		SELECT * FROM menus WHERE restaurant_id = $1 ORDER BY created_at
	`, restaurantID)
	return menus, err
}

func (r *menuRepo) FindItems(ctx context.Context, menuID string) ([]model.Item, error) {
	items := []model.Item{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT i.* FROM items i
		JOIN menu_items mi ON mi.item_id = i.id
		WHERE mi.menu_id = $1
		ORDER BY mi.position
	`, menuID)
	return items, err
}

// Update modifies the menu row and, when params.ItemIDs is non-nil, replaces
// the ordered item list in the same transaction.
func (r *menuRepo) Update(ctx context.Context, id string, params model.UpdateMenuParams) (*model.Menu, error) {
	var menu model.Menu
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &menu, `
			UPDATE menus SET
				name = COALESCE($2, name),
				description = COALESCE($3, description),
				updated_at = NOW()
			WHERE id = $1
			RETURNING *
		`, id, params.Name, params.Description); err != nil {
			return err
		}
		if params.ItemIDs == nil {
			return nil
		}
		return setMenuItems(ctx, tx, id, params.ItemIDs)
	})
	return HandleNotFound(&menu, err)
}

// setMenuItems replaces a menu's item list. Positions follow the order of
// itemIDs; insertion order is display order on screen.
func setMenuItems(ctx context.Context, tx database.DBTX, menuID string, itemIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM menu_items WHERE menu_id = $1`, menuID); err != nil {
		return fmt.Errorf("clear menu items: %w", err)
	}

	for position, itemID := range itemIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO menu_items (menu_id, item_id, position)
			VALUES ($1, $2, $3)
		`, menuID, itemID, position)
		if err != nil {
			return fmt.Errorf("insert menu item %s: %w", itemID, err)
		}
	}
	return nil
}

func (r *menuRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM menus WHERE id = $1`, id)
	return err
}
