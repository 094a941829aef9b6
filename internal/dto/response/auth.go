package response

import (
	"time"

	"tour-booking/internal/data/entity"
)

type AuthResponse struct {
	UserID      string          `json:"user_id"`
	Token       string          `json:"token"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Email       string          `json:"email"`
	DisplayName *string         `json:"display_name,omitempty"`
	Role        entity.UserRole `json:"role"`
}

type UserResponse struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	DisplayName *string         `json:"display_name,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	Role        entity.UserRole `json:"role"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Helper converters
func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Phone:       user.Phone,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
	}
}

func AuthToResponse(user *entity.User, session *entity.Session) AuthResponse {
	resp := AuthResponse{
		UserID:      user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}

	if session != nil {
		resp.Token = session.Token.String()
		resp.ExpiresAt = session.ExpiresAt
	}

	return resp
}
