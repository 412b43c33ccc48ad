package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/menuboard/display-server-go/internal/errors"
	"github.com/menuboard/display-server-go/internal/middleware"
	"github.com/menuboard/display-server-go/internal/service"
)

type RestaurantsHandler struct {
	restaurants *service.RestaurantService
}

func NewRestaurantsHandler(restaurants *service.RestaurantService) *RestaurantsHandler {
	return &RestaurantsHandler{restaurants: restaurants}
}

func (h *RestaurantsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/my/restaurant", h.GetMine)
	r.Get("/{restaurantID}", h.Get)
	r.Put("/{restaurantID}", h.Update)
	r.Get("/{restaurantID}/stats", h.Stats)

	return r
}

// GET /restaurants/{restaurantID}
func (h *RestaurantsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	restaurantID := chi.URLParam(r, "restaurantID")

	restaurant, err := h.restaurants.Get(r.Context(), user.ID, restaurantID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, restaurant)
}

// GET /restaurants/my/restaurant
func (h *RestaurantsHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	restaurant, err := h.restaurants.GetByOwner(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, restaurant)
}

// PUT /restaurants/{restaurantID}
func (h *RestaurantsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	restaurantID := chi.URLParam(r, "restaurantID")

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, apperrors.InvalidInput("name", "must not be empty"))
		return
	}

	restaurant, err := h.restaurants.Update(r.Context(), user.ID, restaurantID, service.UpdateRestaurantInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, restaurant)
}

// GET /restaurants/{restaurantID}/stats
func (h *RestaurantsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	restaurantID := chi.URLParam(r, "restaurantID")

	stats, err := h.restaurants.Stats(r.Context(), user.ID, restaurantID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
