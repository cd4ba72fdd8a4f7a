package dto

import "github.com/baechuer/sports-portal/services/auth-service/internal/domain"

// TokenResponse answers register and login. The refresh token travels only
// in the cookie.
type TokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type MeResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	Role      string `json:"role"`
}

func NewMeResponse(c domain.Claims) MeResponse {
	return MeResponse{
		ID:        c.UserID,
		Email:     c.Email,
		FirstName: c.FirstName,
		Role:      string(c.Role),
	}
}
