package repository

import (
	"context"

	"github.com/menuboard/display-server-go/internal/database"
	"github.com/menuboard/display-server-go/internal/model"
)

type RestaurantRepository interface {
	FindByID(ctx context.Context, id string) (*model.Restaurant, error)
	FindByOwnerID(ctx context.Context, ownerID string) (*model.Restaurant, error)
	Update(ctx context.Context, id string, params model.UpdateRestaurantParams) (*model.Restaurant, error)
	MenuIDs(ctx context.Context, restaurantID string) ([]string, error)
	ItemIDs(ctx context.Context, restaurantID string) ([]string, error)
	DisplayIDs(ctx context.Context, restaurantID string) ([]string, error)
	Stats(ctx context.Context, restaurantID string) (*model.RestaurantStats, error)
}

type restaurantRepo struct {
	db *database.DB
}

func NewRestaurantRepository(db *database.DB) RestaurantRepository {
	return &restaurantRepo{db: db}
}

func (r *restaurantRepo) FindByID(ctx context.Context, id string) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	err := r.db.GetContext(ctx, &restaurant, `SELECT * FROM restaurants WHERE id = $1`, id)
	return HandleNotFound(&restaurant, err)
}

func (r *restaurantRepo) FindByOwnerID(ctx context.Context, ownerID string) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	err := r.db.GetContext(ctx, &restaurant, `SELECT * FROM restaurants WHERE owner_id = $1`, ownerID)
	return HandleNotFound(&restaurant, err)
}

func (r *restaurantRepo) Update(ctx context.Context, id string, params model.UpdateRestaurantParams) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	err := r.db.GetContext(ctx, &restaurant, `
		UPDATE restaurants SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, params.Name, params.Description)
	return HandleNotFound(&restaurant, err)
}

func (r *restaurantRepo) MenuIDs(ctx context.Context, restaurantID string) ([]string, error) {
	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT id FROM menus WHERE restaurant_id = $1 ORDER BY created_at
	`, restaurantID)
	return ids, err
}

func (r *restaurantRepo) ItemIDs(ctx context.Context, restaurantID string) ([]string, error) {
	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT id FROM items WHERE restaurant_id = $1 ORDER BY created_at
	`, restaurantID)
	return ids, err
}

func (r *restaurantRepo) DisplayIDs(ctx context.Context, restaurantID string) ([]string, error) {
	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT id FROM displays WHERE restaurant_id = $1 ORDER BY created_at
	`, restaurantID)
	return ids, err
}

func (r *restaurantRepo) Stats(ctx context.Context, restaurantID string) (*model.RestaurantStats, error) {
	var stats model.RestaurantStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM menus WHERE restaurant_id = $1) AS menu_count,
			(SELECT COUNT(*) FROM items WHERE restaurant_id = $1) AS item_count,
			(SELECT COUNT(*) FROM items WHERE restaurant_id = $1 AND available) AS available_items,
			(SELECT COUNT(*) FROM displays WHERE restaurant_id = $1) AS display_count
	`, restaurantID)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
