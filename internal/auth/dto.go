package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/andreviana/cellshop-pos-backend/pkg/db/models"
)

// LoginRequest captures the operator credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest provisions an operator account for an allow-listed store.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"omitempty,max=120"`
}

// AccountDTO is the operator identity returned after login.
type AccountDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// LoginResponse contains the token pair and account produced by a successful
// login.
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	Account      *AccountDTO `json:"account"`
}

// FromModel maps an account row to its read model.
func FromModel(account *models.StoreAccount) *AccountDTO {
	return &AccountDTO{
		ID:          account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		LastLoginAt: account.LastLoginAt,
	}
}
