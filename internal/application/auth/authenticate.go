package auth

import "github.com/baechuer/sports-portal/services/auth-service/internal/domain"

// Authenticate verifies a bearer access token.
func (s *Service) Authenticate(accessToken string) (domain.Claims, error) {
	if accessToken == "" {
		return domain.Claims{}, domain.ErrTokenMissing()
	}
	return s.tokens.VerifyAccessToken(accessToken)
}
