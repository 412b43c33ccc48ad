package repository

import (
	"context"

	"github.com/menuboard/display-server-go/internal/database"
	"github.com/menuboard/display-server-go/internal/model"
)

type DisplayRepository interface {
	Create(ctx context.Context, params model.CreateDisplayParams) (*model.Display, error)
	FindByID(ctx context.Context, id string) (*model.Display, error)
	FindByPairingCode(ctx context.Context, code string) (*model.Display, error)
	FindByRestaurantID(ctx context.Context, restaurantID string) ([]model.Display, error)
	UpdateName(ctx context.Context, id, name string) (*model.Display, error)
	SetPairingCode(ctx context.Context, id, code string) (*model.Display, error)
	AssignMenu(ctx context.Context, id string, menuID *string) (*model.Display, error)
	SetMedia(ctx context.Context, id, mediaURL, mediaType string) (*model.Display, error)
	ClearMedia(ctx context.Context, id string) (*model.Display, error)
	Delete(ctx context.Context, id string) error
	ReferencedMediaURLs(ctx context.Context) ([]string, error)
}

type displayRepo struct {
	db *database.DB
}

func NewDisplayRepository(db *database.DB) DisplayRepository {
	return &displayRepo{db: db}
}

func (r *displayRepo) Create(ctx context.Context, params model.CreateDisplayParams) (*model.Display, error) {
	var display model.Display
	err := r.db.GetContext(ctx, &display, `
		INSERT INTO displays (id, restaurant_id, name, pairing_code)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.ID, params.RestaurantID, params.Name, params.PairingCode)
	if err != nil {
		return nil, err
	}
	return &display, nil
}

func (r *displayRepo) FindByID(ctx context.Context, id string) (*model.Display, error) {
	var display model.Display
	err := r.db.GetContext(ctx, &display, `SELECT * FROM displays WHERE id = $1`, id)
	return HandleNotFound(&display, err)
}

// FindByPairingCode is a case-sensitive exact lookup.
func (r *displayRepo) FindByPairingCode(ctx context.Context, code string) (*model.Display, error) {
	var display model.Display
	err := r.db.GetContext(ctx, &display, `SELECT * FROM displays WHERE pairing_code = $1`, code)
	return HandleNotFound(&display, err)
}

func (r *displayRepo) FindByRestaurantID(ctx context.Context, restaurantID string) ([]model.Display, error) {
	displays := []model.Display{}
	err := r.db.SelectContext(ctx, &displays, `
		SELECT * FROM displays WHERE restaurant_id = $1 ORDER BY created_at
	`, restaurantID)
	return displays, err
}

func (r *displayRepo) UpdateName(ctx context.Context, id, name string) (*model.Display, error) {
	var display model.Display
	err := r.db.GetContext(ctx, &display, `
		UPDATE displays SET
			name = $2,
			updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, name)
	return HandleNotFound(&display, err)
}

// SetPairingCode replaces the display's code in a single UPDATE, so the old
// code stops resolving the instant the new one commits.
func (r *displayRepo) SetPairingCode(ctx context.Context, id, code string) (*model.Display, error) {
	var display model.Display
	err := r.db.GetContext(ctx, &display, `
		UPDATE displays SET
			pairing_code = $2,
			updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, code)
	return HandleNotFound(&display, err)
}

func (r *displayRepo) AssignMenu(ctx context.Context, id string, menuID *string) (*model.Display, error) {
	var display model.Display
	err := r.db.GetContext(ctx, &display, `
		UPDATE displays SET
			current_menu_id = $2,
			updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, menuID)
	return HandleNotFound(&display, err)
}

func (r *displayRepo) SetMedia(ctx context.Context, id, mediaURL, mediaType string) (*model.Display, error) {
	var display model.Display
	err := r.db.GetContext(ctx, &display, `
		UPDATE displays SET
			media_url = $2,
			media_type = $3,
			updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, mediaURL, mediaType)
	return HandleNotFound(&display, err)
}

// ClearMedia resets url and type together; they are never cleared separately.
func (r *displayRepo) ClearMedia(ctx context.Context, id string) (*model.Display, error) {
	var display model.Display
	err := r.db.GetContext(ctx, &display, `
		UPDATE displays SET
			media_url = NULL,
			media_type = NULL,
			updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id)
	return HandleNotFound(&display, err)
}

func (r *displayRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM displays WHERE id = $1`, id)
	return err
}

func (r *displayRepo) ReferencedMediaURLs(ctx context.Context) ([]string, error) {
	urls := []string{}
	err := r.db.SelectContext(ctx, &urls, `
		SELECT media_url FROM displays WHERE media_url IS NOT NULL
	`)
	return urls, err
}
