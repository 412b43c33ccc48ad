package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/menuboard/display-server-go/internal/audit"
	apperrors "github.com/menuboard/display-server-go/internal/errors"
	"github.com/menuboard/display-server-go/internal/service"
)

const minPasswordLength = 8

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	return r
}

// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email          string `json:"email"`
		Password       string `json:"password"`
		RestaurantName string `json:"restaurantName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	if strings.TrimSpace(req.Email) == "" || !strings.Contains(req.Email, "@") {
		writeError(w, apperrors.InvalidInput("email", "must be a valid email address"))
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, apperrors.InvalidInput("password", "must be at least 8 characters"))
		return
	}
	if strings.TrimSpace(req.RestaurantName) == "" {
		writeError(w, apperrors.MissingRequired("restaurantName"))
		return
	}

	result, err := h.auth.Register(r.Context(), req.Email, req.Password, strings.TrimSpace(req.RestaurantName))
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:   audit.EventRegister,
		UserID: result.User.ID,
	})

	writeJSON(w, http.StatusCreated, result)
}

// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, apperrors.ValidationError("email and password are required"))
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		audit.LogFromRequest(r, audit.Event{
			Type:    audit.EventLoginFailure,
			Details: map[string]interface{}{"email": req.Email},
		})
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:   audit.EventLoginSuccess,
		UserID: result.User.ID,
	})

	writeJSON(w, http.StatusOK, result)
}
