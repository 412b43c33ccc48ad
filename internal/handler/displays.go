package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/menuboard/display-server-go/internal/audit"
	"github.com/menuboard/display-server-go/internal/config"
	apperrors "github.com/menuboard/display-server-go/internal/errors"
	"github.com/menuboard/display-server-go/internal/middleware"
	"github.com/menuboard/display-server-go/internal/service"
	"github.com/menuboard/display-server-go/internal/storage"
)

type DisplaysHandler struct {
	displays *service.DisplayService
	media    *storage.MediaStore
}

func NewDisplaysHandler(displays *service.DisplayService, media *storage.MediaStore) *DisplaysHandler {
	return &DisplaysHandler{displays: displays, media: media}
}

// Routes are the authenticated display endpoints. Pair and ResolveCode are
// public and registered separately, as is UploadMedia which carries its own
// body size cap.
func (h *DisplaysHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/restaurants/{restaurantID}", h.Create)
	r.Get("/restaurants/{restaurantID}", h.ListByRestaurant)
	r.Get("/{displayID}", h.Get)
	r.Put("/{displayID}", h.Update)
	r.Patch("/{displayID}/assign-menu", h.AssignMenu)
	r.Delete("/{displayID}/media", h.RemoveMedia)
	r.Patch("/{displayID}/regenerate-pairing-code", h.RegeneratePairingCode)
	r.Delete("/{displayID}", h.Delete)

	return r
}

// POST /displays/restaurants/{restaurantID}
func (h *DisplaysHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	restaurantID := chi.URLParam(r, "restaurantID")

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, apperrors.MissingRequired("name"))
		return
	}

	display, err := h.displays.Create(r.Context(), user.ID, restaurantID, strings.TrimSpace(req.Name))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, display)
}

// GET /displays/restaurants/{restaurantID}
func (h *DisplaysHandler) ListByRestaurant(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	restaurantID := chi.URLParam(r, "restaurantID")

	displays, err := h.displays.ListByRestaurant(r.Context(), user.ID, restaurantID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, displays)
}

// GET /displays/{displayID}
func (h *DisplaysHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	displayID := chi.URLParam(r, "displayID")

	display, err := h.displays.Get(r.Context(), user.ID, displayID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, display)
}

// PUT /displays/{displayID}
func (h *DisplaysHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	displayID := chi.URLParam(r, "displayID")

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, apperrors.MissingRequired("name"))
		return
	}

	display, err := h.displays.UpdateName(r.Context(), user.ID, displayID, strings.TrimSpace(req.Name))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, display)
}

// PATCH /displays/{displayID}/assign-menu
func (h *DisplaysHandler) AssignMenu(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	displayID := chi.URLParam(r, "displayID")

	var req struct {
		MenuID *string `json:"menuId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	display, err := h.displays.AssignMenu(r.Context(), user.ID, displayID, req.MenuID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, display)
}

// POST /displays/{displayID}/upload-media (multipart, image or video, <=50MB)
func (h *DisplaysHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	displayID := chi.URLParam(r, "displayID")

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxDisplayMediaBytes)

	file, _, err := r.FormFile("media")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, apperrors.PayloadTooLarge("Media exceeds the 50MB limit"))
			return
		}
		writeError(w, apperrors.MissingRequired("media"))
		return
	}
	defer file.Close()

	url, mediaType, err := h.media.SaveMedia(file)
	if err != nil {
		writeError(w, err)
		return
	}

	display, previousURL, err := h.displays.SetMedia(r.Context(), user.ID, displayID, url, mediaType)
	if err != nil {
		h.media.Remove(url)
		writeError(w, err)
		return
	}
	if previousURL != nil {
		h.media.Remove(*previousURL)
	}

	writeJSON(w, http.StatusOK, display)
}

// DELETE /displays/{displayID}/media
func (h *DisplaysHandler) RemoveMedia(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	displayID := chi.URLParam(r, "displayID")

	display, previousURL, err := h.displays.RemoveMedia(r.Context(), user.ID, displayID)
	if err != nil {
		writeError(w, err)
		return
	}
	if previousURL != nil {
		h.media.Remove(*previousURL)
	}

	writeJSON(w, http.StatusOK, display)
}

// PATCH /displays/{displayID}/regenerate-pairing-code
func (h *DisplaysHandler) RegeneratePairingCode(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	displayID := chi.URLParam(r, "displayID")

	display, err := h.displays.RegeneratePairingCode(r.Context(), user.ID, displayID)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventCodeRegenerate,
		UserID:    user.ID,
		DisplayID: displayID,
	})

	writeJSON(w, http.StatusOK, display)
}

// DELETE /displays/{displayID}
func (h *DisplaysHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	displayID := chi.URLParam(r, "displayID")

	mediaURL, err := h.displays.Delete(r.Context(), user.ID, displayID)
	if err != nil {
		writeError(w, err)
		return
	}
	if mediaURL != nil {
		h.media.Remove(*mediaURL)
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventDisplayDelete,
		UserID:    user.ID,
		DisplayID: displayID,
	})

	writeJSON(w, http.StatusOK, map[string]string{"displayId": displayID})
}

// POST /displays/pair (public)
func (h *DisplaysHandler) Pair(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PairingCode string `json:"pairingCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.PairingCode == "" {
		writeError(w, apperrors.MissingRequired("pairingCode"))
		return
	}

	display, err := h.displays.Pair(r.Context(), req.PairingCode)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventDisplayPaired,
		DisplayID: display.ID,
	})

	writeJSON(w, http.StatusOK, display)
}

// GET /displays/pair/{pairingCode} (public)
func (h *DisplaysHandler) ResolveCode(w http.ResponseWriter, r *http.Request) {
	pairingCode := chi.URLParam(r, "pairingCode")

	display, err := h.displays.ResolveCode(r.Context(), pairingCode)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, display)
}
