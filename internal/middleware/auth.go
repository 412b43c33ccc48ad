package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/menuboard/display-server-go/internal/errors"
	"github.com/menuboard/display-server-go/internal/httputil"
	"github.com/menuboard/display-server-go/internal/model"
	"github.com/menuboard/display-server-go/internal/repository"
	"github.com/menuboard/display-server-go/internal/util"
)

type contextKey string

const UserContextKey contextKey = "user"

func GetUser(ctx context.Context) *model.User {
	if user, ok := ctx.Value(UserContextKey).(*model.User); ok {
		return user
	}
	return nil
}

type AuthMiddleware struct {
	users     repository.UserRepository
	jwtSecret string
}

func NewAuthMiddleware(users repository.UserRepository, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{users: users, jwtSecret: jwtSecret}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		if token == "" {
			httputil.WriteError(w, apperrors.Unauthorized("Missing authentication token"))
			return
		}

		user, err := m.Resolve(r.Context(), token)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Resolve validates a bearer token and loads its user. Shared with the events
// endpoint, which authenticates dashboard subscriptions itself.
func (m *AuthMiddleware) Resolve(ctx context.Context, token string) (*model.User, error) {
	userID, err := util.ParseAccessToken(m.jwtSecret, token)
	if err != nil {
		if errors.Is(err, util.ErrTokenExpired) {
			return nil, apperrors.TokenExpired()
		}
		log.Warn().Msg("auth middleware: invalid token attempt")
		return nil, apperrors.InvalidToken("Invalid token")
	}

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Msg("auth middleware: database error")
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.InvalidToken("Invalid token")
	}
	return user, nil
}

// ExtractToken reads the bearer credential from the Authorization header,
// falling back to a token query parameter for EventSource clients that
// cannot set headers.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return r.URL.Query().Get("token")
}
