package repository

import (
	"context"

	"github.com/lib/pq"

	"github.com/menuboard/display-server-go/internal/database"
	"github.com/menuboard/display-server-go/internal/model"
)

type ItemRepository interface {
	Create(ctx context.Context, params model.CreateItemParams) (*model.Item, error)
	FindByID(ctx context.Context, id string) (*model.Item, error)
	FindByRestaurantID(ctx context.Context, restaurantID string) ([]model.Item, error)
	CountByIDsInRestaurant(ctx context.Context, ids []string, restaurantID string) (int, error)
	Update(ctx context.Context, id string, params model.UpdateItemParams) (*model.Item, error)
	ToggleAvailability(ctx context.Context, id string) (*model.Item, error)
	SetImageURL(ctx context.Context, id, imageURL string) (*model.Item, error)
	Delete(ctx context.Context, id string) error
	ReferencedImageURLs(ctx context.Context) ([]string, error)
}

type itemRepo struct {
	db *database.DB
}

func NewItemRepository(db *database.DB) ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) Create(ctx context.Context, params model.CreateItemParams) (*model.Item, error) {
	var item model.Item
	err := r.db.GetContext(ctx, &item, `
		INSERT INTO items (id, restaurant_id, name, description, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.ID, params.RestaurantID, params.Name, params.Description, params.Price)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) FindByID(ctx context.Context, id string) (*model.Item, error) {
	var item model.Item
	err := r.db.GetContext(ctx, &item, `SELECT * FROM items WHERE id = $1`, id)
	return HandleNotFound(&item, err)
}

func (r *itemRepo) FindByRestaurantID(ctx context.Context, restaurantID string) ([]model.Item, error) {
	items := []model.Item{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT * FROM items WHERE restaurant_id = $1 ORDER BY created_at
	`, restaurantID)
	return items, err
}

func (r *itemRepo) CountByIDsInRestaurant(ctx context.Context, ids []string, restaurantID string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(DISTINCT id) FROM items
		WHERE id = ANY($1) AND restaurant_id = $2
	`, pq.Array(ids), restaurantID)
	return count, err
}

func (r *itemRepo) Update(ctx context.Context, id string, params model.UpdateItemParams) (*model.Item, error) {
	var item model.Item
	err := r.db.GetContext(ctx, &item, `
		UPDATE items SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			price = COALESCE($4, price),
			available = COALESCE($5, available),
			updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, params.Name, params.Description, params.Price, params.Available)
	return HandleNotFound(&item, err)
}

func (r *itemRepo) ToggleAvailability(ctx context.Context, id string) (*model.Item, error) {
	var item model.Item
	err := r.db.GetContext(ctx, &item, `
		UPDATE items SET
			available = NOT available,
			updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id)
	return HandleNotFound(&item, err)
}

func (r *itemRepo) SetImageURL(ctx context.Context, id, imageURL string) (*model.Item, error) {
	var item model.Item
	err := r.db.GetContext(ctx, &item, `
		UPDATE items SET
			image_url = $2,
			updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, imageURL)
	return HandleNotFound(&item, err)
}

func (r *itemRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	return err
}

func (r *itemRepo) ReferencedImageURLs(ctx context.Context) ([]string, error) {
	urls := []string{}
	err := r.db.SelectContext(ctx, &urls, `
		SELECT image_url FROM items WHERE image_url IS NOT NULL
	`)
	return urls, err
}
