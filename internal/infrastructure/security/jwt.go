package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
)

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// JWTIssuer signs access and refresh tokens with separate HS256 secrets.
type JWTIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewJWTIssuer(cfg JWTConfig) (*JWTIssuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("jwt: access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("jwt: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("jwt: token TTLs must be positive")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &JWTIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		issuer:        cfg.Issuer,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           cfg.Now,
	}, nil
}

func (s *JWTIssuer) RefreshTTL() time.Duration { return s.refreshTTL }

type tokenClaims struct {
	UserID    string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

func (s *JWTIssuer) IssueAccessToken(c domain.Claims) (string, error) {
	return s.sign(c, s.accessSecret, s.accessTTL)
}

func (s *JWTIssuer) IssueRefreshToken(c domain.Claims) (string, error) {
	return s.sign(c, s.refreshSecret, s.refreshTTL)
}

func (s *JWTIssuer) VerifyAccessToken(token string) (domain.Claims, error) {
	return s.verify(token, s.accessSecret)
}

func (s *JWTIssuer) VerifyRefreshToken(token string) (domain.Claims, error) {
	return s.verify(token, s.refreshSecret)
}

func (s *JWTIssuer) sign(c domain.Claims, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID:    c.UserID,
		Email:     c.Email,
		FirstName: c.FirstName,
		Role:      string(c.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

func (s *JWTIssuer) verify(token string, secret []byte) (domain.Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrTokenInvalid()
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Claims{}, domain.ErrTokenExpired()
		}
		return domain.Claims{}, domain.ErrTokenInvalid()
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid || claims.UserID == "" || !domain.IsValidRole(claims.Role) {
		return domain.Claims{}, domain.ErrTokenInvalid()
	}

	return domain.Claims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		Role:      domain.Role(claims.Role),
	}, nil
}
