package model

import (
	"time"
)

type Display struct {
	ID            string    `db:"id" json:"id"`
	RestaurantID  string    `db:"restaurant_id" json:"restaurantId"`
	Name          string    `db:"name" json:"name"`
	PairingCode   string    `db:"pairing_code" json:"pairingCode"`
	CurrentMenuID *string   `db:"current_menu_id" json:"-"`
	MediaURL      *string   `db:"media_url" json:"mediaUrl"`
	MediaType     *string   `db:"media_type" json:"mediaType"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateDisplayParams struct {
	ID           string
	RestaurantID string
	Name         string
	PairingCode  string
}

// FlattenedMenu is the shape a populated current menu takes inside a
// transformed display: {id, name, description, items}.
type FlattenedMenu struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Items       []Item  `json:"items"`
}

// TransformedDisplay is the normalized client-facing shape of a Display.
// CurrentMenu is a FlattenedMenu when the menu could be populated, the bare
// menu id string when it could not, and nil when no menu is assigned.
type TransformedDisplay struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurantId"`
	Name         string    `json:"name"`
	PairingCode  string    `json:"pairingCode"`
	CurrentMenu  any       `json:"currentMenu"`
	MediaURL     *string   `json:"mediaUrl"`
	MediaType    *string   `json:"mediaType"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TransformDisplay normalizes a display for client consumption. Every
// endpoint and broadcast that carries a display goes through this one path.
func TransformDisplay(d Display, menu *MenuWithItems) TransformedDisplay {
	td := TransformedDisplay{
		ID:           d.ID,
		RestaurantID: d.RestaurantID,
		Name:         d.Name,
		PairingCode:  d.PairingCode,
		MediaURL:     d.MediaURL,
		MediaType:    d.MediaType,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}

	switch {
	case menu != nil:
		items := menu.Items
		if items == nil {
			items = []Item{}
		}
		td.CurrentMenu = FlattenedMenu{
			ID:          menu.ID,
			Name:        menu.Name,
			Description: menu.Description,
			Items:       items,
		}
	case d.CurrentMenuID != nil:
		td.CurrentMenu = *d.CurrentMenuID
	default:
		td.CurrentMenu = nil
	}

	return td
}
