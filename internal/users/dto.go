package users

import (
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// AccountDTO is the public projection of an account. The password hash never
// leaves the service layer.
type AccountDTO struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         *string   `json:"email,omitempty"`
	IsActive      bool      `json:"is_active"`
	TotalProducts int64     `json:"total_products"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RegisterInput holds the validated payload to create an account.
type RegisterInput struct {
	Username string
	Password string
	Email    *string
}

// UpdateProfileInput holds optional mutation values for the caller's account.
type UpdateProfileInput struct {
	Email    *string
	Password *string
}

func toAccountDTO(account *models.Account, totalProducts int64) *AccountDTO {
	return &AccountDTO{
		ID:            account.ID,
		Username:      account.Username,
		Email:         account.Email,
		IsActive:      account.IsActive,
		TotalProducts: totalProducts,
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	}
}
