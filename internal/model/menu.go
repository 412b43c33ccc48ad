package model

import (
	"time"
)

type Menu struct {
	ID           string    `db:"id" json:"id"`
	RestaurantID string    `db:"restaurant_id" json:"restaurantId"`
	Name         string    `db:"name" json:"name"`
	Description  *string   `db:"description" json:"description"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// MenuWithItems is the full menu payload: the menu row plus its items in
// display order. Item order is meaningful and preserved on every read.
type MenuWithItems struct {
	Menu
	Items []Item `json:"items"`
}

type CreateMenuParams struct {
	ID           string
	RestaurantID string
	Name         string
	Description  *string
	ItemIDs      []string
}

type UpdateMenuParams struct {
	Name        *string
	Description *string
	ItemIDs     []string // nil leaves the item list untouched
}
