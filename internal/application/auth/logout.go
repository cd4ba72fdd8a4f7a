package auth

import "context"

// Logout is stateless: the transport clears the cookie, and tokens already
// handed out stay valid until they expire. It never fails.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	fields := map[string]string{}
	if refreshToken != "" {
		if c, err := s.tokens.VerifyRefreshToken(refreshToken); err == nil {
			fields["user_id"] = c.UserID
		}
	}
	s.audit(ctx, "logout", fields)
}
