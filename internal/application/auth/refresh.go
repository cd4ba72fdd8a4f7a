package auth

import (
	"context"

	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
)

// Refresh redeems a refresh token for a new access token carrying the same
// claims. The refresh token itself is not rotated. Expired and tampered
// tokens fail identically.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", domain.ErrRefreshTokenMissing()
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", domain.ErrRefreshTokenInvalid()
	}

	access, err := s.tokens.IssueAccessToken(claims)
	if err != nil {
		return "", asDomain(err, domain.ErrTokenSignFailed)
	}

	s.audit(ctx, "refresh", map[string]string{"user_id": claims.UserID})
	return access, nil
}
