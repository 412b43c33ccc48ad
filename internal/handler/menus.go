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

type MenusHandler struct {
	menus *service.MenuService
}

func NewMenusHandler(menus *service.MenuService) *MenusHandler {
	return &MenusHandler{menus: menus}
}

func (h *MenusHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/restaurants/{restaurantID}", h.Create)
	r.Get("/restaurants/{restaurantID}", h.ListByRestaurant)
	r.Get("/{menuID}", h.Get)
	r.Put("/{menuID}", h.Update)
	r.Delete("/{menuID}", h.Delete)

	return r
}

// POST /menus/restaurants/{restaurantID}
func (h *MenusHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	restaurantID := chi.URLParam(r, "restaurantID")

	var req struct {
		Name        string   `json:"name"`
		Description *string  `json:"description"`
		Items       []string `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, apperrors.MissingRequired("name"))
		return
	}

	menu, err := h.menus.Create(r.Context(), user.ID, restaurantID, service.CreateMenuInput{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ItemIDs:     req.Items,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, menu)
}

// GET /menus/restaurants/{restaurantID}
func (h *MenusHandler) ListByRestaurant(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	restaurantID := chi.URLParam(r, "restaurantID")

	menus, err := h.menus.ListByRestaurant(r.Context(), user.ID, restaurantID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, menus)
}

// GET /menus/{menuID}
func (h *MenusHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	menuID := chi.URLParam(r, "menuID")

	menu, err := h.menus.Get(r.Context(), user.ID, menuID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, menu)
}

// PUT /menus/{menuID}
func (h *MenusHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	menuID := chi.URLParam(r, "menuID")

	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Items       []string `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, apperrors.InvalidInput("name", "must not be empty"))
		return
	}

	menu, err := h.menus.Update(r.Context(), user.ID, menuID, service.UpdateMenuInput{
		Name:        req.Name,
		Description: req.Description,
		ItemIDs:     req.Items,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, menu)
}

// DELETE /menus/{menuID}
func (h *MenusHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	menuID := chi.URLParam(r, "menuID")

	if err := h.menus.Delete(r.Context(), user.ID, menuID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"menuId": menuID})
}
