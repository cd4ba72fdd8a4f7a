package auth

import (
	"context"

	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
)

// Login authenticates against whichever partition holds the email and
// issues a fresh token pair from the stored record.
// Unknown emails are reported as ErrUserNotFound, distinct from a wrong
// password.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return TokenPair{}, domain.ErrMissingField("email")
	}
	if password == "" {
		return TokenPair{}, domain.ErrMissingField("password")
	}

	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			s.audit(ctx, "login_failed", map[string]string{"email": email, "reason": domainCode(err)})
		}
		return TokenPair{}, asDomain(err, domain.ErrDBUnavailable)
	}

	ok, err := s.hasher.Verify(ctx, password, u.PasswordHash)
	if err != nil {
		return TokenPair{}, asDomain(err, domain.ErrInternal)
	}
	if !ok {
		s.audit(ctx, "login_failed", map[string]string{
			"email":   email,
			"user_id": u.ID,
			"reason":  "invalid_credentials",
		})
		return TokenPair{}, domain.ErrInvalidCredentials()
	}

	pair, err := s.issueTokens(u.Claims())
	if err != nil {
		return TokenPair{}, err
	}

	s.audit(ctx, "login", map[string]string{"user_id": u.ID, "role": string(u.Role)})
	return pair, nil
}
