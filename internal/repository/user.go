package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/menuboard/display-server-go/internal/database"
	"github.com/menuboard/display-server-go/internal/model"
)

// Constraint names from the schema, used to map unique violations to typed errors.
const (
	ConstraintUserEmail          = "users_email_key"
	ConstraintDisplayPairingCode = "displays_pairing_code_key"
)

type UserRepository interface {
	// CreateOwner creates a user and their restaurant in one transaction.
	CreateOwner(ctx context.Context, user model.CreateUserParams, restaurantID, restaurantName string) (*model.User, *model.Restaurant, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type userRepo struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateOwner(ctx context.Context, params model.CreateUserParams, restaurantID, restaurantName string) (*model.User, *model.Restaurant, error) {
	var user model.User
	var restaurant model.Restaurant

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertUser(ctx, tx, &user, params); err != nil {
			return err
		}
		return insertRestaurant(ctx, tx, &restaurant, restaurantID, user.ID, restaurantName)
	})
	if err != nil {
		return nil, nil, err
	}
	return &user, &restaurant, nil
}

func insertUser(ctx context.Context, tx database.DBTX, dest *model.User, params model.CreateUserParams) error {
	return tx.GetContext(ctx, dest, `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING *
	`, params.ID, params.Email, params.PasswordHash)
}

func insertRestaurant(ctx context.Context, tx database.DBTX, dest *model.Restaurant, id, ownerID, name string) error {
	return tx.GetContext(ctx, dest, `
		INSERT INTO restaurants (id, owner_id, name)
		VALUES ($1, $2, $3)
		RETURNING *
	`, id, ownerID, name)
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	return HandleNotFound(&user, err)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = $1`, email)
	return HandleNotFound(&user, err)
}
