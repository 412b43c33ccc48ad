package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/menuboard/display-server-go/internal/broadcast"
	apperrors "github.com/menuboard/display-server-go/internal/errors"
	"github.com/menuboard/display-server-go/internal/middleware"
	"github.com/menuboard/display-server-go/internal/repository"
)

// EventsHandler is the persistent-connection surface. Clients announce the
// rooms they want at connect time via query parameters:
//
//	?displayId={id}     a paired display client (no auth)
//	?pairingCode={code} a display client that has not learned its id yet (no auth)
//	?restaurantId={id}  a dashboard, bearer token required, ownership checked
//	&menuId={id}        optionally joined alongside restaurantId
//
// There is no replay: clients fetch current state after connecting. A display
// client joined by pairing code reconnects with displayId once the
// display-paired event delivers it.
type EventsHandler struct {
	broker      *broadcast.Broker
	auth        *middleware.AuthMiddleware
	restaurants repository.RestaurantRepository
	menus       repository.MenuRepository
}

func NewEventsHandler(
	broker *broadcast.Broker,
	auth *middleware.AuthMiddleware,
	restaurants repository.RestaurantRepository,
	menus repository.MenuRepository,
) *EventsHandler {
	return &EventsHandler{
		broker:      broker,
		auth:        auth,
		restaurants: restaurants,
		menus:       menus,
	}
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.resolveRooms(r)
	if err != nil {
		writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, apperrors.Internal("Streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := h.broker.NewClient()
	for _, room := range rooms {
		h.broker.Join(client, room)
	}
	defer h.broker.Unsubscribe(client)

	log.Info().
		Strs("rooms", rooms).
		Msg("events connection established")

	if err := h.sendEvent(w, flusher, "connected", map[string]any{
		"rooms": rooms,
	}); err != nil {
		return
	}

	ctx := r.Context()

	heartbeat := time.NewTicker(broadcast.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().
				Strs("rooms", rooms).
				Msg("events connection closed by client")
			return

		case <-client.Done:
			log.Info().
				Strs("rooms", rooms).
				Msg("events connection closed by broker")
			return

		case event := <-client.Events:
			if err := h.sendRawEvent(w, flusher, event); err != nil {
				log.Error().Err(err).Msg("failed to send event")
				return
			}

		case <-heartbeat.C:
			if _, err := fmt.Fprintf(w, ": ping\n\n"); err != nil {
				log.Debug().
					Strs("rooms", rooms).
					Msg("heartbeat failed, closing connection")
				return
			}
			flusher.Flush()
		}
	}
}

// resolveRooms derives the room keys a connection may join. Display and
// pairing rooms need no auth; restaurant and menu rooms require an owning
// user.
func (h *EventsHandler) resolveRooms(r *http.Request) ([]string, error) {
	q := r.URL.Query()
	var rooms []string

	if displayID := q.Get("displayId"); displayID != "" {
		rooms = append(rooms, broadcast.DisplayRoom(displayID))
	}
	if pairingCode := q.Get("pairingCode"); pairingCode != "" {
		rooms = append(rooms, broadcast.PairingRoom(pairingCode))
	}

	restaurantID := q.Get("restaurantId")
	menuID := q.Get("menuId")
	if restaurantID != "" || menuID != "" {
		token := middleware.ExtractToken(r)
		if token == "" {
			return nil, apperrors.Unauthorized("Missing authentication token")
		}
		user, err := h.auth.Resolve(r.Context(), token)
		if err != nil {
			return nil, err
		}

		if restaurantID != "" {
			if err := h.checkRestaurantOwner(r, restaurantID, user.ID); err != nil {
				return nil, err
			}
			rooms = append(rooms, broadcast.RestaurantRoom(restaurantID))
		}

		if menuID != "" {
			menu, err := h.menus.FindByID(r.Context(), menuID)
			if err != nil {
				return nil, apperrors.Database(err)
			}
			if menu == nil {
				return nil, apperrors.NotFound("Menu")
			}
			if err := h.checkRestaurantOwner(r, menu.RestaurantID, user.ID); err != nil {
				return nil, err
			}
			rooms = append(rooms, broadcast.MenuRoom(menuID))
		}
	}

	if len(rooms) == 0 {
		return nil, apperrors.ValidationError("displayId, pairingCode or restaurantId is required")
	}
	return rooms, nil
}

func (h *EventsHandler) checkRestaurantOwner(r *http.Request, restaurantID, userID string) error {
	restaurant, err := h.restaurants.FindByID(r.Context(), restaurantID)
	if err != nil {
		return apperrors.Database(err)
	}
	if restaurant == nil {
		return apperrors.NotFound("Restaurant")
	}
	if restaurant.OwnerID != userID {
		return apperrors.Forbidden("You do not own this restaurant")
	}
	return nil
}

func (h *EventsHandler) sendEvent(w http.ResponseWriter, flusher http.Flusher, eventName string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return h.sendRawEvent(w, flusher, broadcast.Event{Name: eventName, Data: jsonData})
}

func (h *EventsHandler) sendRawEvent(w http.ResponseWriter, flusher http.Flusher, event broadcast.Event) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", event.Name); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", event.Data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
