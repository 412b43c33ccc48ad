package service

import (
	"context"

	apperrors "github.com/menuboard/display-server-go/internal/errors"
	"github.com/menuboard/display-server-go/internal/model"
	"github.com/menuboard/display-server-go/internal/repository"
)

// requireOwner loads a restaurant and verifies the caller owns it. Every
// authenticated mutation re-checks ownership this way.
func requireOwner(ctx context.Context, restaurants repository.RestaurantRepository, restaurantID, callerID string) (*model.Restaurant, error) {
	restaurant, err := restaurants.FindByID(ctx, restaurantID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if restaurant == nil {
		return nil, apperrors.NotFound("Restaurant")
	}
	if restaurant.OwnerID != callerID {
		return nil, apperrors.Forbidden("You do not own this restaurant")
	}
	return restaurant, nil
}
