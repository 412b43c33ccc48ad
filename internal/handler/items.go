package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/menuboard/display-server-go/internal/config"
	apperrors "github.com/menuboard/display-server-go/internal/errors"
	"github.com/menuboard/display-server-go/internal/middleware"
	"github.com/menuboard/display-server-go/internal/service"
	"github.com/menuboard/display-server-go/internal/storage"
)

type ItemsHandler struct {
	items *service.ItemService
	media *storage.MediaStore
}

func NewItemsHandler(items *service.ItemService, media *storage.MediaStore) *ItemsHandler {
	return &ItemsHandler{items: items, media: media}
}

func (h *ItemsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/restaurants/{restaurantID}", h.Create)
	r.Get("/restaurants/{restaurantID}", h.ListByRestaurant)
	r.Put("/{itemID}", h.Update)
	r.Patch("/{itemID}/toggle", h.ToggleAvailability)
	r.Delete("/{itemID}", h.Delete)

	return r
}

// POST /items/restaurants/{restaurantID}
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	restaurantID := chi.URLParam(r, "restaurantID")

	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		Price       float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, apperrors.MissingRequired("name"))
		return
	}
	if req.Price < 0 {
		writeError(w, apperrors.InvalidInput("price", "must not be negative"))
		return
	}

	item, err := h.items.Create(r.Context(), user.ID, restaurantID, service.CreateItemInput{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// GET /items/restaurants/{restaurantID}
func (h *ItemsHandler) ListByRestaurant(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	restaurantID := chi.URLParam(r, "restaurantID")

	items, err := h.items.ListByRestaurant(r.Context(), user.ID, restaurantID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// PUT /items/{itemID}
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	itemID := chi.URLParam(r, "itemID")

	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Available   *bool    `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, apperrors.InvalidInput("name", "must not be empty"))
		return
	}
	if req.Price != nil && *req.Price < 0 {
		writeError(w, apperrors.InvalidInput("price", "must not be negative"))
		return
	}

	item, err := h.items.Update(r.Context(), user.ID, itemID, service.UpdateItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Available:   req.Available,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// PATCH /items/{itemID}/toggle
func (h *ItemsHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	itemID := chi.URLParam(r, "itemID")

	item, err := h.items.ToggleAvailability(r.Context(), user.ID, itemID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// POST /items/{itemID}/upload-image (multipart, image only, <=5MB)
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	itemID := chi.URLParam(r, "itemID")

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxItemImageBytes)

	file, _, err := r.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, apperrors.PayloadTooLarge("Image exceeds the 5MB limit"))
			return
		}
		writeError(w, apperrors.MissingRequired("image"))
		return
	}
	defer file.Close()

	url, err := h.media.SaveImage(file)
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.items.SetImage(r.Context(), user.ID, itemID, url)
	if err != nil {
		h.media.Remove(url)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// DELETE /items/{itemID}
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	itemID := chi.URLParam(r, "itemID")

	if err := h.items.Delete(r.Context(), user.ID, itemID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"itemId": itemID})
}
