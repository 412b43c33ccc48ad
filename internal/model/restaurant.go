package model

import (
	"time"
)

type Restaurant struct {
	ID          string    `db:"id" json:"id"`
	OwnerID     string    `db:"owner_id" json:"ownerId"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// RestaurantDetail carries the restaurant row together with the ids of the
// entities created under it. The collections are derived by query, not stored.
type RestaurantDetail struct {
	Restaurant
	MenuIDs    []string `json:"menuIds"`
	ItemIDs    []string `json:"itemIds"`
	DisplayIDs []string `json:"displayIds"`
}

type UpdateRestaurantParams struct {
	Name        *string
	Description *string
}

// RestaurantStats is the aggregate view behind GET /restaurants/{id}/stats.
type RestaurantStats struct {
	MenuCount         int `db:"menu_count" json:"menuCount"`
	ItemCount         int `db:"item_count" json:"itemCount"`
	AvailableItems    int `db:"available_items" json:"availableItems"`
	DisplayCount      int `db:"display_count" json:"displayCount"`
	ConnectedDisplays int `json:"connectedDisplays"`
}
