package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/menuboard/display-server-go/internal/broadcast"
	apperrors "github.com/menuboard/display-server-go/internal/errors"
	"github.com/menuboard/display-server-go/internal/model"
	"github.com/menuboard/display-server-go/internal/repository"
)

type ItemService struct {
	items       repository.ItemRepository
	restaurants repository.RestaurantRepository
	publisher   Publisher
}

func NewItemService(
	items repository.ItemRepository,
	restaurants repository.RestaurantRepository,
	publisher Publisher,
) *ItemService {
	return &ItemService{
		items:       items,
		restaurants: restaurants,
		publisher:   publisher,
	}
}

type CreateItemInput struct {
	Name        string
	Description *string
	Price       float64
}

func (s *ItemService) Create(ctx context.Context, callerID, restaurantID string, input CreateItemInput) (*model.Item, error) {
	if _, err := requireOwner(ctx, s.restaurants, restaurantID, callerID); err != nil {
		return nil, err
	}

	item, err := s.items.Create(ctx, model.CreateItemParams{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		Name:         input.Name,
		Description:  input.Description,
		Price:        input.Price,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	publish(ctx, s.publisher, broadcast.RestaurantRoom(restaurantID), broadcast.EventItemCreated, item)

	log.Info().
		Str("itemId", item.ID).
		Str("restaurantId", restaurantID).
		Msg("item created")

	return item, nil
}

func (s *ItemService) ListByRestaurant(ctx context.Context, callerID, restaurantID string) ([]model.Item, error) {
	if _, err := requireOwner(ctx, s.restaurants, restaurantID, callerID); err != nil {
		return nil, err
	}

	items, err := s.items.FindByRestaurantID(ctx, restaurantID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return items, nil
}

type UpdateItemInput struct {
	Name        *string
	Description *string
	Price       *float64
	Available   *bool
}

func (s *ItemService) Update(ctx context.Context, callerID, itemID string, input UpdateItemInput) (*model.Item, error) {
	item, err := s.ownedItem(ctx, callerID, itemID)
	if err != nil {
		return nil, err
	}

	updated, err := s.items.Update(ctx, itemID, model.UpdateItemParams{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Available:   input.Available,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("Item")
	}

	publish(ctx, s.publisher, broadcast.RestaurantRoom(item.RestaurantID), broadcast.EventItemUpdated, updated)

	return updated, nil
}

// ToggleAvailability flips the item's availability and emits exactly one
// item-availability-changed with the new value.
func (s *ItemService) ToggleAvailability(ctx context.Context, callerID, itemID string) (*model.Item, error) {
	item, err := s.ownedItem(ctx, callerID, itemID)
	if err != nil {
		return nil, err
	}

	toggled, err := s.items.ToggleAvailability(ctx, itemID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if toggled == nil {
		return nil, apperrors.NotFound("Item")
	}

	publish(ctx, s.publisher, broadcast.RestaurantRoom(item.RestaurantID), broadcast.EventItemAvailabilityChanged, map[string]any{
		"itemId":    toggled.ID,
		"available": toggled.Available,
	})

	return toggled, nil
}

// SetImage records an uploaded image url. The file itself is already on disk;
// the broadcast reuses item-updated so display clients have one refresh path.
func (s *ItemService) SetImage(ctx context.Context, callerID, itemID, imageURL string) (*model.Item, error) {
	if _, err := s.ownedItem(ctx, callerID, itemID); err != nil {
		return nil, err
	}

	updated, err := s.items.SetImageURL(ctx, itemID, imageURL)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("Item")
	}

	publish(ctx, s.publisher, broadcast.RestaurantRoom(updated.RestaurantID), broadcast.EventItemUpdated, updated)

	return updated, nil
}

func (s *ItemService) Delete(ctx context.Context, callerID, itemID string) error {
	item, err := s.ownedItem(ctx, callerID, itemID)
	if err != nil {
		return err
	}

	if err := s.items.Delete(ctx, itemID); err != nil {
		return apperrors.Database(err)
	}

	publish(ctx, s.publisher, broadcast.RestaurantRoom(item.RestaurantID), broadcast.EventItemDeleted, map[string]string{
		"itemId": itemID,
	})

	log.Info().
		Str("itemId", itemID).
		Str("restaurantId", item.RestaurantID).
		Msg("item deleted")

	return nil
}

func (s *ItemService) ownedItem(ctx context.Context, callerID, itemID string) (*model.Item, error) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if item == nil {
		return nil, apperrors.NotFound("Item")
	}
	if _, err := requireOwner(ctx, s.restaurants, item.RestaurantID, callerID); err != nil {
		return nil, err
	}
	return item, nil
}
