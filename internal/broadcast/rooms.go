package broadcast

import "fmt"

// Room keys are derived independently by producers and consumers; both sides
// must agree on these patterns, so they live in one place.

func RestaurantRoom(restaurantID string) string {
	return fmt.Sprintf("restaurant-%s", restaurantID)
}

func MenuRoom(menuID string) string {
	return fmt.Sprintf("menu-%s", menuID)
}

func DisplayRoom(displayID string) string {
	return fmt.Sprintf("display-%s", displayID)
}

func PairingRoom(pairingCode string) string {
	return fmt.Sprintf("pairing-%s", pairingCode)
}

// Event names, fixed by the frontend contract.
const (
	EventMenuCreated             = "menu-created"
	EventMenuUpdated             = "menu-updated"
	EventMenuDeleted             = "menu-deleted"
	EventItemCreated             = "item-created"
	EventItemUpdated             = "item-updated"
	EventItemAvailabilityChanged = "item-availability-changed"
	EventItemDeleted             = "item-deleted"
	EventDisplayCreated          = "display-created"
	EventDisplayUpdated          = "display-updated"
	EventMenuAssigned            = "menu-assigned"
	EventMediaUploaded           = "media-uploaded"
	EventMediaRemoved            = "media-removed"
	EventDisplayDeleted          = "display-deleted"
	EventDisplayPaired           = "display-paired"
	EventRestaurantUpdated       = "restaurant-updated"
)
