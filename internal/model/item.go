package model

import (
	"time"
)

type Item struct {
	ID           string    `db:"id" json:"id"`
	RestaurantID string    `db:"restaurant_id" json:"restaurantId"`
	Name         string    `db:"name" json:"name"`
	Description  *string   `db:"description" json:"description"`
	Price        float64   `db:"price" json:"price"`
	Available    bool      `db:"available" json:"available"`
	ImageURL     *string   `db:"image_url" json:"imageUrl"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateItemParams struct {
	ID           string
	RestaurantID string
	Name         string
	Description  *string
	Price        float64
}

type UpdateItemParams struct {
	Name        *string
	Description *string
	Price       *float64
	Available   *bool
}
