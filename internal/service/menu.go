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

type MenuService struct {
	menus       repository.MenuRepository
	items       repository.ItemRepository
	restaurants repository.RestaurantRepository
	publisher   Publisher
}

func NewMenuService(
	menus repository.MenuRepository,
	items repository.ItemRepository,
	restaurants repository.RestaurantRepository,
	publisher Publisher,
) *MenuService {
	return &MenuService{
		menus:       menus,
		items:       items,
		restaurants: restaurants,
		publisher:   publisher,
	}
}

type CreateMenuInput struct {
	Name        string
	Description *string
	ItemIDs     []string
}

func (s *MenuService) Create(ctx context.Context, callerID, restaurantID string, input CreateMenuInput) (*model.MenuWithItems, error) {
	if _, err := requireOwner(ctx, s.restaurants, restaurantID, callerID); err != nil {
		return nil, err
	}

	if err := s.validateItemIDs(ctx, input.ItemIDs, restaurantID); err != nil {
		return nil, err
	}

	menu, err := s.menus.Create(ctx, model.CreateMenuParams{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		Name:         input.Name,
		Description:  input.Description,
		ItemIDs:      input.ItemIDs,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	full, err := s.withItems(ctx, menu)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, broadcast.RestaurantRoom(restaurantID), broadcast.EventMenuCreated, full)

	log.Info().
		Str("menuId", menu.ID).
		Str("restaurantId", restaurantID).
		Msg("menu created")

	return full, nil
}

func (s *MenuService) ListByRestaurant(ctx context.Context, callerID, restaurantID string) ([]model.MenuWithItems, error) {
	if _, err := requireOwner(ctx, s.restaurants, restaurantID, callerID); err != nil {
		return nil, err
	}

	menus, err := s.menus.FindByRestaurantID(ctx, restaurantID)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	result := make([]model.MenuWithItems, 0, len(menus))
	for i := range menus {
		full, err := s.withItems(ctx, &menus[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *full)
	}
	return result, nil
}

func (s *MenuService) Get(ctx context.Context, callerID, menuID string) (*model.MenuWithItems, error) {
	menu, err := s.ownedMenu(ctx, callerID, menuID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, menu)
}

type UpdateMenuInput struct {
	Name        *string
	Description *string
	ItemIDs     []string // nil leaves the item list untouched
}

func (s *MenuService) Update(ctx context.Context, callerID, menuID string, input UpdateMenuInput) (*model.MenuWithItems, error) {
	menu, err := s.ownedMenu(ctx, callerID, menuID)
	if err != nil {
		return nil, err
	}

	if input.ItemIDs != nil {
		if err := s.validateItemIDs(ctx, input.ItemIDs, menu.RestaurantID); err != nil {
			return nil, err
		}
	}

	updated, err := s.menus.Update(ctx, menuID, model.UpdateMenuParams{
		Name:        input.Name,
		Description: input.Description,
		ItemIDs:     input.ItemIDs,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("Menu")
	}

	full, err := s.withItems(ctx, updated)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, broadcast.MenuRoom(menuID), broadcast.EventMenuUpdated, full)

	return full, nil
}

func (s *MenuService) Delete(ctx context.Context, callerID, menuID string) error {
	menu, err := s.ownedMenu(ctx, callerID, menuID)
	if err != nil {
		return err
	}

	if err := s.menus.Delete(ctx, menuID); err != nil {
		return apperrors.Database(err)
	}

	publish(ctx, s.publisher, broadcast.MenuRoom(menuID), broadcast.EventMenuDeleted, map[string]string{
		"menuId": menuID,
	})

	log.Info().
		Str("menuId", menuID).
		Str("restaurantId", menu.RestaurantID).
		Msg("menu deleted")

	return nil
}

// ownedMenu loads a menu and verifies the caller owns its restaurant.
func (s *MenuService) ownedMenu(ctx context.Context, callerID, menuID string) (*model.Menu, error) {
	menu, err := s.menus.FindByID(ctx, menuID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if menu == nil {
		return nil, apperrors.NotFound("Menu")
	}
	if _, err := requireOwner(ctx, s.restaurants, menu.RestaurantID, callerID); err != nil {
		return nil, err
	}
	return menu, nil
}

func (s *MenuService) withItems(ctx context.Context, menu *model.Menu) (*model.MenuWithItems, error) {
	items, err := s.menus.FindItems(ctx, menu.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return &model.MenuWithItems{Menu: *menu, Items: items}, nil
}

// validateItemIDs rejects duplicate item ids and menus referencing items
// created under another restaurant. Duplicates would violate the menu_items
// primary key on insert, so they fail here as client errors instead.
func (s *MenuService) validateItemIDs(ctx context.Context, itemIDs []string, restaurantID string) error {
	if len(itemIDs) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		if seen[id] {
			return apperrors.InvalidInput("items", "must not contain duplicate item ids")
		}
		seen[id] = true
	}

	count, err := s.items.CountByIDsInRestaurant(ctx, itemIDs, restaurantID)
	if err != nil {
		return apperrors.Database(err)
	}
	if count != len(itemIDs) {
		return apperrors.InvalidInput("items", "all items must belong to the menu's restaurant")
	}
	return nil
}
