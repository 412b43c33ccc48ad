package service

import (
	"context"

	"github.com/menuboard/display-server-go/internal/broadcast"
	apperrors "github.com/menuboard/display-server-go/internal/errors"
	"github.com/menuboard/display-server-go/internal/model"
	"github.com/menuboard/display-server-go/internal/repository"
)

// ClientCounter reports current room membership; *broadcast.Broker satisfies it.
type ClientCounter interface {
	ClientCount(room string) int
}

type RestaurantService struct {
	restaurants repository.RestaurantRepository
	publisher   Publisher
	counter     ClientCounter
}

func NewRestaurantService(
	restaurants repository.RestaurantRepository,
	publisher Publisher,
	counter ClientCounter,
) *RestaurantService {
	return &RestaurantService{
		restaurants: restaurants,
		publisher:   publisher,
		counter:     counter,
	}
}

func (s *RestaurantService) Get(ctx context.Context, callerID, restaurantID string) (*model.RestaurantDetail, error) {
	restaurant, err := requireOwner(ctx, s.restaurants, restaurantID, callerID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, restaurant)
}

func (s *RestaurantService) GetByOwner(ctx context.Context, ownerID string) (*model.RestaurantDetail, error) {
	restaurant, err := s.restaurants.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if restaurant == nil {
		return nil, apperrors.NotFound("Restaurant")
	}
	return s.detail(ctx, restaurant)
}

type UpdateRestaurantInput struct {
	Name        *string
	Description *string
}

func (s *RestaurantService) Update(ctx context.Context, callerID, restaurantID string, input UpdateRestaurantInput) (*model.Restaurant, error) {
	if _, err := requireOwner(ctx, s.restaurants, restaurantID, callerID); err != nil {
		return nil, err
	}

	updated, err := s.restaurants.Update(ctx, restaurantID, model.UpdateRestaurantParams{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("Restaurant")
	}

	publish(ctx, s.publisher, broadcast.RestaurantRoom(restaurantID), broadcast.EventRestaurantUpdated, updated)

	return updated, nil
}

func (s *RestaurantService) Stats(ctx context.Context, callerID, restaurantID string) (*model.RestaurantStats, error) {
	if _, err := requireOwner(ctx, s.restaurants, restaurantID, callerID); err != nil {
		return nil, err
	}

	stats, err := s.restaurants.Stats(ctx, restaurantID)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	displayIDs, err := s.restaurants.DisplayIDs(ctx, restaurantID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	connected := 0
	for _, id := range displayIDs {
		if s.counter.ClientCount(broadcast.DisplayRoom(id)) > 0 {
			connected++
		}
	}
	stats.ConnectedDisplays = connected

	return stats, nil
}

func (s *RestaurantService) detail(ctx context.Context, restaurant *model.Restaurant) (*model.RestaurantDetail, error) {
	menuIDs, err := s.restaurants.MenuIDs(ctx, restaurant.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	itemIDs, err := s.restaurants.ItemIDs(ctx, restaurant.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	displayIDs, err := s.restaurants.DisplayIDs(ctx, restaurant.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	return &model.RestaurantDetail{
		Restaurant: *restaurant,
		MenuIDs:    menuIDs,
		ItemIDs:    itemIDs,
		DisplayIDs: displayIDs,
	}, nil
}
