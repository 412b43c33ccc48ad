package service

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuboard/display-server-go/internal/broadcast"
	apperrors "github.com/menuboard/display-server-go/internal/errors"
	"github.com/menuboard/display-server-go/internal/model"
	"github.com/menuboard/display-server-go/internal/repository"
)

type displayFixture struct {
	displays    *fakeDisplayRepo
	menus       *fakeMenuRepo
	restaurants *fakeRestaurantRepo
	publisher   *recordingPublisher
	svc         *DisplayService
}

func newDisplayFixture() *displayFixture {
	f := &displayFixture{
		displays:    newFakeDisplayRepo(),
		menus:       newFakeMenuRepo(),
		restaurants: newFakeRestaurantRepo(),
		publisher:   &recordingPublisher{},
	}
	f.restaurants.add(&model.Restaurant{ID: "rest-1", OwnerID: "owner-1", Name: "Testaurant"})
	f.svc = NewDisplayService(f.displays, f.menus, f.restaurants, f.publisher)
	return f
}

func (f *displayFixture) seedDisplay(id string) *model.Display {
	d := &model.Display{ID: id, RestaurantID: "rest-1", Name: "Window TV", PairingCode: "ABCDEF"}
	f.displays.displays[id] = d
	return d
}

func TestDisplayService_Create(t *testing.T) {
	t.Run("creates display with pairing code and broadcasts to restaurant room", func(t *testing.T) {
		f := newDisplayFixture()

		display, err := f.svc.Create(context.Background(), "owner-1", "rest-1", "Counter TV")

		require.NoError(t, err)
		assert.Equal(t, "Counter TV", display.Name)
		assert.Len(t, display.PairingCode, pairingCodeLength)
		assert.Nil(t, display.CurrentMenu)

		events := f.publisher.published()
		require.Len(t, events, 1)
		assert.Equal(t, broadcast.RestaurantRoom("rest-1"), events[0].Room)
		assert.Equal(t, broadcast.EventDisplayCreated, events[0].Name)
	})

	t.Run("rejects caller who does not own the restaurant", func(t *testing.T) {
		f := newDisplayFixture()

		_, err := f.svc.Create(context.Background(), "intruder", "rest-1", "Counter TV")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeForbidden, err.(*apperrors.AppError).Code)
		assert.Empty(t, f.publisher.published())
	})

	t.Run("maps unique violation on pairing code to duplicate code error", func(t *testing.T) {
		f := newDisplayFixture()
		f.displays.createErr = &pq.Error{Code: "23505", Constraint: repository.ConstraintDisplayPairingCode}

		_, err := f.svc.Create(context.Background(), "owner-1", "rest-1", "Counter TV")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeDuplicateCode, err.(*apperrors.AppError).Code)
	})
}

func TestDisplayService_AssignMenu(t *testing.T) {
	t.Run("assigns menu and broadcasts menu-assigned to display room", func(t *testing.T) {
		f := newDisplayFixture()
		f.seedDisplay("disp-1")
		f.menus.menus["menu-1"] = &model.Menu{ID: "menu-1", RestaurantID: "rest-1", Name: "Lunch"}

		menuID := "menu-1"
		display, err := f.svc.AssignMenu(context.Background(), "owner-1", "disp-1", &menuID)

		require.NoError(t, err)
		flattened, ok := display.CurrentMenu.(model.FlattenedMenu)
		require.True(t, ok)
		assert.Equal(t, "menu-1", flattened.ID)
		assert.Equal(t, "Lunch", flattened.Name)

		events := f.publisher.published()
		require.Len(t, events, 1)
		assert.Equal(t, broadcast.DisplayRoom("disp-1"), events[0].Room)
		assert.Equal(t, broadcast.EventMenuAssigned, events[0].Name)
	})

	t.Run("clears assignment with nil menu id", func(t *testing.T) {
		f := newDisplayFixture()
		d := f.seedDisplay("disp-1")
		menuID := "menu-1"
		d.CurrentMenuID = &menuID

		display, err := f.svc.AssignMenu(context.Background(), "owner-1", "disp-1", nil)

		require.NoError(t, err)
		assert.Nil(t, display.CurrentMenu)
	})

	t.Run("rejects menu from another restaurant", func(t *testing.T) {
		f := newDisplayFixture()
		f.seedDisplay("disp-1")
		f.menus.menus["menu-2"] = &model.Menu{ID: "menu-2", RestaurantID: "rest-other", Name: "Dinner"}

		menuID := "menu-2"
		_, err := f.svc.AssignMenu(context.Background(), "owner-1", "disp-1", &menuID)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, err.(*apperrors.AppError).Code)
		assert.Empty(t, f.publisher.published())
	})

	t.Run("rejects missing menu", func(t *testing.T) {
		f := newDisplayFixture()
		f.seedDisplay("disp-1")

		menuID := "gone"
		_, err := f.svc.AssignMenu(context.Background(), "owner-1", "disp-1", &menuID)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, err.(*apperrors.AppError).Code)
	})
}

func TestDisplayService_Pair(t *testing.T) {
	t.Run("resolves code and notifies pairing room", func(t *testing.T) {
		f := newDisplayFixture()
		f.seedDisplay("disp-1")

		display, err := f.svc.Pair(context.Background(), "ABCDEF")

		require.NoError(t, err)
		assert.Equal(t, "disp-1", display.ID)

		events := f.publisher.published()
		require.Len(t, events, 1)
		assert.Equal(t, broadcast.PairingRoom("ABCDEF"), events[0].Room)
		assert.Equal(t, broadcast.EventDisplayPaired, events[0].Name)

		payload, ok := events[0].Data.(map[string]string)
		require.True(t, ok)
		assert.Equal(t, "disp-1", payload["displayId"])
		assert.Equal(t, "Window TV", payload["displayName"])
	})

	t.Run("is case sensitive", func(t *testing.T) {
		f := newDisplayFixture()
		f.seedDisplay("disp-1")

		_, err := f.svc.Pair(context.Background(), "abcdef")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, err.(*apperrors.AppError).Code)
	})

	t.Run("rejects empty code", func(t *testing.T) {
		f := newDisplayFixture()

		_, err := f.svc.Pair(context.Background(), "")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeMissingRequired, err.(*apperrors.AppError).Code)
	})

	t.Run("unknown code returns not found", func(t *testing.T) {
		f := newDisplayFixture()

		_, err := f.svc.Pair(context.Background(), "ZZZZZZ")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, err.(*apperrors.AppError).Code)
		assert.Empty(t, f.publisher.published())
	})
}

func TestDisplayService_RegeneratePairingCode(t *testing.T) {
	t.Run("replaces the code so the old one stops resolving", func(t *testing.T) {
		f := newDisplayFixture()
		f.seedDisplay("disp-1")

		display, err := f.svc.RegeneratePairingCode(context.Background(), "owner-1", "disp-1")

		require.NoError(t, err)
		assert.NotEqual(t, "ABCDEF", display.PairingCode)
		assert.Len(t, display.PairingCode, pairingCodeLength)

		_, err = f.svc.Pair(context.Background(), "ABCDEF")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, err.(*apperrors.AppError).Code)

		paired, err := f.svc.Pair(context.Background(), display.PairingCode)
		require.NoError(t, err)
		assert.Equal(t, "disp-1", paired.ID)
	})

	t.Run("broadcasts display-updated to display room", func(t *testing.T) {
		f := newDisplayFixture()
		f.seedDisplay("disp-1")

		_, err := f.svc.RegeneratePairingCode(context.Background(), "owner-1", "disp-1")

		require.NoError(t, err)
		events := f.publisher.published()
		require.Len(t, events, 1)
		assert.Equal(t, broadcast.DisplayRoom("disp-1"), events[0].Room)
		assert.Equal(t, broadcast.EventDisplayUpdated, events[0].Name)
	})
}

func TestDisplayService_Media(t *testing.T) {
	t.Run("set media returns previous url and broadcasts media-uploaded", func(t *testing.T) {
		f := newDisplayFixture()
		d := f.seedDisplay("disp-1")
		old := "/uploads/old.mp4"
		d.MediaURL = &old

		display, previous, err := f.svc.SetMedia(context.Background(), "owner-1", "disp-1", "/uploads/new.mp4", "video")

		require.NoError(t, err)
		require.NotNil(t, previous)
		assert.Equal(t, "/uploads/old.mp4", *previous)
		require.NotNil(t, display.MediaURL)
		assert.Equal(t, "/uploads/new.mp4", *display.MediaURL)

		events := f.publisher.published()
		require.Len(t, events, 1)
		assert.Equal(t, broadcast.EventMediaUploaded, events[0].Name)
	})

	t.Run("remove media clears url and type together", func(t *testing.T) {
		f := newDisplayFixture()
		d := f.seedDisplay("disp-1")
		url, kind := "/uploads/clip.mp4", "video"
		d.MediaURL, d.MediaType = &url, &kind

		display, previous, err := f.svc.RemoveMedia(context.Background(), "owner-1", "disp-1")

		require.NoError(t, err)
		require.NotNil(t, previous)
		assert.Equal(t, "/uploads/clip.mp4", *previous)
		assert.Nil(t, display.MediaURL)
		assert.Nil(t, display.MediaType)

		events := f.publisher.published()
		require.Len(t, events, 1)
		assert.Equal(t, broadcast.EventMediaRemoved, events[0].Name)
	})
}

func TestDisplayService_Delete(t *testing.T) {
	t.Run("deletes and returns media url for cleanup", func(t *testing.T) {
		f := newDisplayFixture()
		d := f.seedDisplay("disp-1")
		url := "/uploads/clip.mp4"
		d.MediaURL = &url

		mediaURL, err := f.svc.Delete(context.Background(), "owner-1", "disp-1")

		require.NoError(t, err)
		require.NotNil(t, mediaURL)
		assert.Equal(t, "/uploads/clip.mp4", *mediaURL)
		assert.Nil(t, f.displays.displays["disp-1"])

		events := f.publisher.published()
		require.Len(t, events, 1)
		assert.Equal(t, broadcast.DisplayRoom("disp-1"), events[0].Room)
		assert.Equal(t, broadcast.EventDisplayDeleted, events[0].Name)
	})
}

func TestDisplayService_Transform(t *testing.T) {
	t.Run("dangling menu reference passes through as bare id", func(t *testing.T) {
		f := newDisplayFixture()
		d := f.seedDisplay("disp-1")
		gone := "menu-gone"
		d.CurrentMenuID = &gone

		display, err := f.svc.Get(context.Background(), "owner-1", "disp-1")

		require.NoError(t, err)
		assert.Equal(t, "menu-gone", display.CurrentMenu)
	})

	t.Run("populated menu is flattened with its items", func(t *testing.T) {
		f := newDisplayFixture()
		d := f.seedDisplay("disp-1")
		menuID := "menu-1"
		d.CurrentMenuID = &menuID
		f.menus.menus["menu-1"] = &model.Menu{ID: "menu-1", RestaurantID: "rest-1", Name: "Lunch"}
		f.menus.items["menu-1"] = []model.Item{{ID: "item-1", Name: "Soup", Price: 4.5}}

		display, err := f.svc.Get(context.Background(), "owner-1", "disp-1")

		require.NoError(t, err)
		flattened, ok := display.CurrentMenu.(model.FlattenedMenu)
		require.True(t, ok)
		assert.Equal(t, "Lunch", flattened.Name)
		require.Len(t, flattened.Items, 1)
		assert.Equal(t, "Soup", flattened.Items[0].Name)
	})

	t.Run("unassigned display has null current menu", func(t *testing.T) {
		f := newDisplayFixture()
		f.seedDisplay("disp-1")

		display, err := f.svc.Get(context.Background(), "owner-1", "disp-1")

		require.NoError(t, err)
		assert.Nil(t, display.CurrentMenu)
	})
}
