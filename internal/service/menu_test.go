package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuboard/display-server-go/internal/broadcast"
	apperrors "github.com/menuboard/display-server-go/internal/errors"
	"github.com/menuboard/display-server-go/internal/model"
)

type menuFixture struct {
	menus       *fakeMenuRepo
	items       *fakeItemRepo
	restaurants *fakeRestaurantRepo
	publisher   *recordingPublisher
	svc         *MenuService
}

func newMenuFixture() *menuFixture {
	f := &menuFixture{
		menus:       newFakeMenuRepo(),
		items:       newFakeItemRepo(),
		restaurants: newFakeRestaurantRepo(),
		publisher:   &recordingPublisher{},
	}
	f.restaurants.add(&model.Restaurant{ID: "rest-1", OwnerID: "owner-1", Name: "Testaurant"})
	f.svc = NewMenuService(f.menus, f.items, f.restaurants, f.publisher)
	return f
}

func (f *menuFixture) seedItem(id, restaurantID string) {
	f.items.items[id] = &model.Item{ID: id, RestaurantID: restaurantID, Name: "Item " + id, Available: true}
}

func TestMenuService_Create(t *testing.T) {
	t.Run("creates menu and broadcasts menu-created to restaurant room", func(t *testing.T) {
		f := newMenuFixture()
		f.seedItem("item-1", "rest-1")

		menu, err := f.svc.Create(context.Background(), "owner-1", "rest-1", CreateMenuInput{
			Name:    "Lunch",
			ItemIDs: []string{"item-1"},
		})

		require.NoError(t, err)
		assert.Equal(t, "Lunch", menu.Name)

		events := f.publisher.published()
		require.Len(t, events, 1)
		assert.Equal(t, broadcast.RestaurantRoom("rest-1"), events[0].Room)
		assert.Equal(t, broadcast.EventMenuCreated, events[0].Name)
	})

	t.Run("rejects items belonging to another restaurant", func(t *testing.T) {
		f := newMenuFixture()
		f.seedItem("item-1", "rest-other")

		_, err := f.svc.Create(context.Background(), "owner-1", "rest-1", CreateMenuInput{
			Name:    "Lunch",
			ItemIDs: []string{"item-1"},
		})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, err.(*apperrors.AppError).Code)
		assert.Empty(t, f.publisher.published())
	})

	t.Run("rejects unknown item ids", func(t *testing.T) {
		f := newMenuFixture()

		_, err := f.svc.Create(context.Background(), "owner-1", "rest-1", CreateMenuInput{
			Name:    "Lunch",
			ItemIDs: []string{"nope"},
		})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, err.(*apperrors.AppError).Code)
	})

	t.Run("rejects duplicate item ids in the request", func(t *testing.T) {
		f := newMenuFixture()
		f.seedItem("item-1", "rest-1")

		_, err := f.svc.Create(context.Background(), "owner-1", "rest-1", CreateMenuInput{
			Name:    "Lunch",
			ItemIDs: []string{"item-1", "item-1"},
		})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, err.(*apperrors.AppError).Code)
		assert.Empty(t, f.publisher.published())
	})

	t.Run("rejects non-owner", func(t *testing.T) {
		f := newMenuFixture()

		_, err := f.svc.Create(context.Background(), "intruder", "rest-1", CreateMenuInput{Name: "Lunch"})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeForbidden, err.(*apperrors.AppError).Code)
	})
}

func TestMenuService_Update(t *testing.T) {
	t.Run("updates and broadcasts menu-updated to menu room", func(t *testing.T) {
		f := newMenuFixture()
		f.menus.menus["menu-1"] = &model.Menu{ID: "menu-1", RestaurantID: "rest-1", Name: "Lunch"}

		name := "Dinner"
		menu, err := f.svc.Update(context.Background(), "owner-1", "menu-1", UpdateMenuInput{Name: &name})

		require.NoError(t, err)
		assert.Equal(t, "Dinner", menu.Name)

		events := f.publisher.published()
		require.Len(t, events, 1)
		assert.Equal(t, broadcast.MenuRoom("menu-1"), events[0].Room)
		assert.Equal(t, broadcast.EventMenuUpdated, events[0].Name)
	})

	t.Run("missing menu returns not found", func(t *testing.T) {
		f := newMenuFixture()

		name := "Dinner"
		_, err := f.svc.Update(context.Background(), "owner-1", "gone", UpdateMenuInput{Name: &name})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, err.(*apperrors.AppError).Code)
	})

	t.Run("rejects duplicate item ids in the replacement list", func(t *testing.T) {
		f := newMenuFixture()
		f.seedItem("item-1", "rest-1")
		f.menus.menus["menu-1"] = &model.Menu{ID: "menu-1", RestaurantID: "rest-1", Name: "Lunch"}

		_, err := f.svc.Update(context.Background(), "owner-1", "menu-1", UpdateMenuInput{
			ItemIDs: []string{"item-1", "item-1"},
		})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, err.(*apperrors.AppError).Code)
		assert.Empty(t, f.publisher.published())
	})
}

func TestMenuService_Delete(t *testing.T) {
	t.Run("deletes and broadcasts menu-deleted to menu room", func(t *testing.T) {
		f := newMenuFixture()
		f.menus.menus["menu-1"] = &model.Menu{ID: "menu-1", RestaurantID: "rest-1", Name: "Lunch"}

		err := f.svc.Delete(context.Background(), "owner-1", "menu-1")

		require.NoError(t, err)
		assert.Nil(t, f.menus.menus["menu-1"])

		events := f.publisher.published()
		require.Len(t, events, 1)
		assert.Equal(t, broadcast.MenuRoom("menu-1"), events[0].Room)
		assert.Equal(t, broadcast.EventMenuDeleted, events[0].Name)

		payload, ok := events[0].Data.(map[string]string)
		require.True(t, ok)
		assert.Equal(t, "menu-1", payload["menuId"])
	})
}

func TestMenuService_Get(t *testing.T) {
	t.Run("returns menu with its items", func(t *testing.T) {
		f := newMenuFixture()
		f.menus.menus["menu-1"] = &model.Menu{ID: "menu-1", RestaurantID: "rest-1", Name: "Lunch"}
		f.menus.items["menu-1"] = []model.Item{{ID: "item-1", Name: "Soup"}}

		menu, err := f.svc.Get(context.Background(), "owner-1", "menu-1")

		require.NoError(t, err)
		require.Len(t, menu.Items, 1)
		assert.Equal(t, "Soup", menu.Items[0].Name)
	})

	t.Run("owner of another restaurant cannot read it", func(t *testing.T) {
		f := newMenuFixture()
		f.restaurants.add(&model.Restaurant{ID: "rest-2", OwnerID: "owner-2", Name: "Other"})
		f.menus.menus["menu-1"] = &model.Menu{ID: "menu-1", RestaurantID: "rest-1", Name: "Lunch"}

		_, err := f.svc.Get(context.Background(), "owner-2", "menu-1")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeForbidden, err.(*apperrors.AppError).Code)
	})
}
