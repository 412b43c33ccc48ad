package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/menuboard/display-server-go/internal/broadcast"
	apperrors "github.com/menuboard/display-server-go/internal/errors"
	"github.com/menuboard/display-server-go/internal/model"
	"github.com/menuboard/display-server-go/internal/repository"
	"github.com/menuboard/display-server-go/internal/util"
)

type DisplayService struct {
	displays    repository.DisplayRepository
	menus       repository.MenuRepository
	restaurants repository.RestaurantRepository
	publisher   Publisher
}

func NewDisplayService(
	displays repository.DisplayRepository,
	menus repository.MenuRepository,
	restaurants repository.RestaurantRepository,
	publisher Publisher,
) *DisplayService {
	return &DisplayService{
		displays:    displays,
		menus:       menus,
		restaurants: restaurants,
		publisher:   publisher,
	}
}

// Create makes a display with a freshly generated pairing code. A display is
// never left without a code.
func (s *DisplayService) Create(ctx context.Context, callerID, restaurantID, name string) (*model.TransformedDisplay, error) {
	if _, err := requireOwner(ctx, s.restaurants, restaurantID, callerID); err != nil {
		return nil, err
	}

	code, err := newUniquePairingCode(ctx, s.displays)
	if err != nil {
		return nil, err
	}

	display, err := s.displays.Create(ctx, model.CreateDisplayParams{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		Name:         name,
		PairingCode:  code,
	})
	if err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintDisplayPairingCode) {
			// Lost the race against a concurrent generator holding the same code.
			return nil, apperrors.DuplicateCode()
		}
		return nil, apperrors.Database(err)
	}

	transformed, err := s.transform(ctx, display)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, broadcast.RestaurantRoom(restaurantID), broadcast.EventDisplayCreated, transformed)

	log.Info().
		Str("displayId", display.ID).
		Str("restaurantId", restaurantID).
		Str("pairingCode", util.MaskCode(code)).
		Msg("display created")

	return transformed, nil
}

func (s *DisplayService) ListByRestaurant(ctx context.Context, callerID, restaurantID string) ([]model.TransformedDisplay, error) {
	if _, err := requireOwner(ctx, s.restaurants, restaurantID, callerID); err != nil {
		return nil, err
	}

	displays, err := s.displays.FindByRestaurantID(ctx, restaurantID)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	result := make([]model.TransformedDisplay, 0, len(displays))
	for i := range displays {
		transformed, err := s.transform(ctx, &displays[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *transformed)
	}
	return result, nil
}

func (s *DisplayService) Get(ctx context.Context, callerID, displayID string) (*model.TransformedDisplay, error) {
	display, err := s.ownedDisplay(ctx, callerID, displayID)
	if err != nil {
		return nil, err
	}
	return s.transform(ctx, display)
}

func (s *DisplayService) UpdateName(ctx context.Context, callerID, displayID, name string) (*model.TransformedDisplay, error) {
	if _, err := s.ownedDisplay(ctx, callerID, displayID); err != nil {
		return nil, err
	}

	updated, err := s.displays.UpdateName(ctx, displayID, name)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("Display")
	}

	transformed, err := s.transform(ctx, updated)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, broadcast.DisplayRoom(displayID), broadcast.EventDisplayUpdated, transformed)

	return transformed, nil
}

// AssignMenu points the display at a menu, or clears it with a nil menuID.
func (s *DisplayService) AssignMenu(ctx context.Context, callerID, displayID string, menuID *string) (*model.TransformedDisplay, error) {
	display, err := s.ownedDisplay(ctx, callerID, displayID)
	if err != nil {
		return nil, err
	}

	if menuID != nil {
		menu, err := s.menus.FindByID(ctx, *menuID)
		if err != nil {
			return nil, apperrors.Database(err)
		}
		if menu == nil {
			return nil, apperrors.NotFound("Menu")
		}
		if menu.RestaurantID != display.RestaurantID {
			return nil, apperrors.InvalidInput("menuId", "menu belongs to a different restaurant")
		}
	}

	updated, err := s.displays.AssignMenu(ctx, displayID, menuID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("Display")
	}

	publish(ctx, s.publisher, broadcast.DisplayRoom(displayID), broadcast.EventMenuAssigned, map[string]any{
		"displayId": displayID,
		"menuId":    menuID,
	})

	return s.transform(ctx, updated)
}

// SetMedia stores an override media reference. Returns the previous media url
// so the caller can clean up the old file.
func (s *DisplayService) SetMedia(ctx context.Context, callerID, displayID, mediaURL, mediaType string) (*model.TransformedDisplay, *string, error) {
	display, err := s.ownedDisplay(ctx, callerID, displayID)
	if err != nil {
		return nil, nil, err
	}
	previousURL := display.MediaURL

	updated, err := s.displays.SetMedia(ctx, displayID, mediaURL, mediaType)
	if err != nil {
		return nil, nil, apperrors.Database(err)
	}
	if updated == nil {
		return nil, nil, apperrors.NotFound("Display")
	}

	transformed, err := s.transform(ctx, updated)
	if err != nil {
		return nil, nil, err
	}

	publish(ctx, s.publisher, broadcast.DisplayRoom(displayID), broadcast.EventMediaUploaded, map[string]string{
		"displayId": displayID,
		"mediaUrl":  mediaURL,
		"mediaType": mediaType,
	})

	return transformed, previousURL, nil
}

func (s *DisplayService) RemoveMedia(ctx context.Context, callerID, displayID string) (*model.TransformedDisplay, *string, error) {
	display, err := s.ownedDisplay(ctx, callerID, displayID)
	if err != nil {
		return nil, nil, err
	}
	previousURL := display.MediaURL

	updated, err := s.displays.ClearMedia(ctx, displayID)
	if err != nil {
		return nil, nil, apperrors.Database(err)
	}
	if updated == nil {
		return nil, nil, apperrors.NotFound("Display")
	}

	transformed, err := s.transform(ctx, updated)
	if err != nil {
		return nil, nil, err
	}

	publish(ctx, s.publisher, broadcast.DisplayRoom(displayID), broadcast.EventMediaRemoved, map[string]string{
		"displayId": displayID,
	})

	return transformed, previousURL, nil
}

// RegeneratePairingCode atomically replaces the display's code. The old code
// stops resolving the instant the single UPDATE commits.
func (s *DisplayService) RegeneratePairingCode(ctx context.Context, callerID, displayID string) (*model.TransformedDisplay, error) {
	if _, err := s.ownedDisplay(ctx, callerID, displayID); err != nil {
		return nil, err
	}

	code, err := newUniquePairingCode(ctx, s.displays)
	if err != nil {
		return nil, err
	}

	updated, err := s.displays.SetPairingCode(ctx, displayID, code)
	if err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintDisplayPairingCode) {
			return nil, apperrors.DuplicateCode()
		}
		return nil, apperrors.Database(err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("Display")
	}

	transformed, err := s.transform(ctx, updated)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, broadcast.DisplayRoom(displayID), broadcast.EventDisplayUpdated, transformed)

	log.Info().
		Str("displayId", displayID).
		Str("pairingCode", util.MaskCode(code)).
		Msg("pairing code regenerated")

	return transformed, nil
}

// Delete removes the display. Its room becomes inert; clients joined to it
// simply stop receiving events. Returns the media url for file cleanup.
func (s *DisplayService) Delete(ctx context.Context, callerID, displayID string) (*string, error) {
	display, err := s.ownedDisplay(ctx, callerID, displayID)
	if err != nil {
		return nil, err
	}

	if err := s.displays.Delete(ctx, displayID); err != nil {
		return nil, apperrors.Database(err)
	}

	publish(ctx, s.publisher, broadcast.DisplayRoom(displayID), broadcast.EventDisplayDeleted, map[string]string{
		"displayId": displayID,
	})

	log.Info().
		Str("displayId", displayID).
		Str("restaurantId", display.RestaurantID).
		Msg("display deleted")

	return display.MediaURL, nil
}

// Pair resolves a code entered on an unauthenticated display client and
// notifies the pairing room so the client can learn its display id.
func (s *DisplayService) Pair(ctx context.Context, code string) (*model.TransformedDisplay, error) {
	display, err := s.resolveCode(ctx, code)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, broadcast.PairingRoom(code), broadcast.EventDisplayPaired, map[string]string{
		"displayId":   display.ID,
		"displayName": display.Name,
	})

	log.Info().
		Str("displayId", display.ID).
		Str("pairingCode", util.MaskCode(code)).
		Msg("display paired")

	return s.transform(ctx, display)
}

// ResolveCode is the read-only half of pairing: used by clients fetching
// current state after joining a room.
func (s *DisplayService) ResolveCode(ctx context.Context, code string) (*model.TransformedDisplay, error) {
	display, err := s.resolveCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.transform(ctx, display)
}

func (s *DisplayService) resolveCode(ctx context.Context, code string) (*model.Display, error) {
	if code == "" {
		return nil, apperrors.MissingRequired("pairingCode")
	}

	// Case-sensitive exact lookup.
	display, err := s.displays.FindByPairingCode(ctx, code)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if display == nil {
		return nil, apperrors.NotFound("Display")
	}
	return display, nil
}

func (s *DisplayService) ownedDisplay(ctx context.Context, callerID, displayID string) (*model.Display, error) {
	display, err := s.displays.FindByID(ctx, displayID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if display == nil {
		return nil, apperrors.NotFound("Display")
	}
	if _, err := requireOwner(ctx, s.restaurants, display.RestaurantID, callerID); err != nil {
		return nil, err
	}
	return display, nil
}

// transform is the single normalization path for displays: a present menu is
// flattened, a dangling reference passes through as the bare id, absence is
// null.
func (s *DisplayService) transform(ctx context.Context, display *model.Display) (*model.TransformedDisplay, error) {
	var menu *model.MenuWithItems
	if display.CurrentMenuID != nil {
		row, err := s.menus.FindByID(ctx, *display.CurrentMenuID)
		if err != nil {
			return nil, apperrors.Database(err)
		}
		if row != nil {
			items, err := s.menus.FindItems(ctx, row.ID)
			if err != nil {
				return nil, apperrors.Database(err)
			}
			menu = &model.MenuWithItems{Menu: *row, Items: items}
		}
	}

	transformed := model.TransformDisplay(*display, menu)
	return &transformed, nil
}
