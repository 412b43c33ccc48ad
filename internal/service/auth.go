package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/menuboard/display-server-go/internal/errors"
	"github.com/menuboard/display-server-go/internal/model"
	"github.com/menuboard/display-server-go/internal/repository"
	"github.com/menuboard/display-server-go/internal/util"
)

type AuthService struct {
	users      repository.UserRepository
	jwtSecret  string
	jwtTTL     time.Duration
	bcryptCost int
}

func NewAuthService(users repository.UserRepository, jwtSecret string, jwtTTL time.Duration, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		jwtSecret:  jwtSecret,
		jwtTTL:     jwtTTL,
		bcryptCost: bcryptCost,
	}
}

type AuthResult struct {
	Token      string            `json:"token"`
	User       *model.User       `json:"user"`
	Restaurant *model.Restaurant `json:"restaurant,omitempty"`
}

func (s *AuthService) Register(ctx context.Context, email, password, restaurantName string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	passwordHash, err := util.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, restaurant, err := s.users.CreateOwner(ctx, model.CreateUserParams{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
	}, uuid.NewString(), restaurantName)
	if err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintUserEmail) {
			return nil, apperrors.AlreadyExists("Email")
		}
		return nil, apperrors.Database(err)
	}

	token, err := util.NewAccessToken(s.jwtSecret, user.ID, s.jwtTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	log.Info().
		Str("userId", user.ID).
		Str("restaurantId", restaurant.ID).
		Msg("user registered")

	return &AuthResult{Token: token, User: user, Restaurant: restaurant}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil || !util.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	token, err := util.NewAccessToken(s.jwtSecret, user.ID, s.jwtTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}
