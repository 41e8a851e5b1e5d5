package auth

import (
	"github.com/google/uuid"

	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db/models"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/enums"
)

// RegisterRequest is the payload for creating a customer account.
type RegisterRequest struct {
	Name     string  `json:"name" validate:"required,min=2"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=8"`
}

// LoginRequest carries customer credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest rotates a session using the expired access token plus the
// refresh token issued alongside it.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserDTO is the account projection returned to clients.
type UserDTO struct {
	ID    uuid.UUID      `json:"id"`
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Role  enums.UserRole `json:"role"`
}

// SessionResponse bundles the token pair issued on login and refresh.
type SessionResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         UserDTO `json:"user"`
}

func toUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}
