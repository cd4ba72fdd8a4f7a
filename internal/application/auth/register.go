package auth

import (
	"context"

	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
)

// Register validates the variant, enforces joint email uniqueness, stores
// the hashed credential in the role's partition and issues a token pair.
func (s *Service) Register(ctx context.Context, reg domain.Registration) (TokenPair, error) {
	if reg == nil {
		return TokenPair{}, domain.ErrInvalidRole("")
	}
	reg = reg.Normalize()
	if err := reg.Validate(); err != nil {
		return TokenPair{}, err
	}
	acct := reg.Credentials()

	exists, err := s.store.EmailExists(ctx, acct.Email)
	if err != nil {
		return TokenPair{}, asDomain(err, domain.ErrDBUnavailable)
	}
	if exists {
		return TokenPair{}, domain.ErrEmailAlreadyExists()
	}

	hash, err := s.hasher.Hash(ctx, acct.Password)
	if err != nil {
		return TokenPair{}, asDomain(err, domain.ErrHashFailed)
	}

	// The pre-check above can race; the store's own constraint is final.
	var id string
	switch r := reg.(type) {
	case domain.StudentRegistration:
		id, err = s.store.InsertStudent(ctx, r.Record(hash))
	case domain.TrainerRegistration:
		id, err = s.store.InsertTrainer(ctx, r.Record(hash))
	default:
		return TokenPair{}, domain.ErrInvalidRole(string(reg.Role()))
	}
	if err != nil {
		return TokenPair{}, asDomain(err, domain.ErrDBUnavailable)
	}

	claims := domain.Claims{
		UserID:    id,
		Email:     acct.Email,
		FirstName: acct.FirstName,
		Role:      reg.Role(),
	}
	pair, err := s.issueTokens(claims)
	if err != nil {
		return TokenPair{}, err
	}

	s.publishRegistered(ctx, claims)
	s.audit(ctx, "register", map[string]string{
		"user_id": id,
		"role":    string(claims.Role),
		"email":   acct.Email,
	})
	return pair, nil
}
