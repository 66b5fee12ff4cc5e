package auth

import (
	"github.com/stockroomhq/stockroom-backend/internal/users"
)

// LoginRequest carries the credentials posted to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterRequest carries the payload posted to the register endpoint.
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=3"`
	Password string  `json:"password" validate:"required,min=6"`
	Email    *string `json:"email,omitempty" validate:"omitempty,contains=@"`
}

// LoginResponse returns the freshly minted access token and the account it
// belongs to.
type LoginResponse struct {
	AccessToken string            `json:"access_token"`
	Account     *users.AccountDTO `json:"account"`
}
