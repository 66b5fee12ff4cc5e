package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stockroomhq/stockroom-backend/internal/users"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/token"
)

// Service exposes the login flow.
type Service interface {
	Login(ctx context.Context, input LoginRequest) (*LoginResponse, error)
}

type service struct {
	users  users.Service
	jwtCfg config.JWTConfig
	now    token.Clock
}

// NewService constructs the auth service. A nil clock falls back to time.Now.
func NewService(usersSvc users.Service, jwtCfg config.JWTConfig, clock token.Clock) (Service, error) {
	if usersSvc == nil {
		return nil, fmt.Errorf("users service required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &service{users: usersSvc, jwtCfg: jwtCfg, now: clock}, nil
}

// Login verifies the credentials and mints an access token. Every credential
// failure collapses into the same unauthorized response so callers cannot
// probe which usernames exist or which accounts were deactivated.
func (s *service) Login(ctx context.Context, input LoginRequest) (*LoginResponse, error) {
	account, err := s.users.Authenticate(ctx, input.Username, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrAccountNotFound),
			errors.Is(err, users.ErrWrongPassword),
			errors.Is(err, users.ErrAccountDeactivated):
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		default:
			return nil, err
		}
	}

	signed, err := token.MintAccessToken(s.jwtCfg, s.now(), account.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	profile, err := s.users.GetProfile(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{AccessToken: signed, Account: profile}, nil
}
