package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
)

var testClaims = domain.Claims{
	UserID:    "u1",
	Email:     "anna@example.com",
	FirstName: "Anna",
	Role:      domain.RoleStudent,
}

func newTestIssuer(t *testing.T, now func() time.Time) *JWTIssuer {
	t.Helper()
	s, err := NewJWTIssuer(JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		Issuer:        "auth-service",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Now:           now,
	})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return s
}

func TestNewJWTIssuer_RejectsBadSecrets(t *testing.T) {
	t.Parallel()

	cases := []JWTConfig{
		{AccessSecret: "", RefreshSecret: "r", AccessTTL: time.Minute, RefreshTTL: time.Hour},
		{AccessSecret: "a", RefreshSecret: "", AccessTTL: time.Minute, RefreshTTL: time.Hour},
		{AccessSecret: "same", RefreshSecret: "same", AccessTTL: time.Minute, RefreshTTL: time.Hour},
		{AccessSecret: "a", RefreshSecret: "r", AccessTTL: 0, RefreshTTL: time.Hour},
	}
	for i, c := range cases {
		if _, err := NewJWTIssuer(c); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestJWTIssuer_AccessRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestIssuer(t, nil)
	tok, err := s.IssueAccessToken(testClaims)
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("expected jwt with 3 segments, got %q", tok)
	}

	got, err := s.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("verify err: %v", err)
	}
	if got != testClaims {
		t.Fatalf("unexpected claims: %+v", got)
	}
}

func TestJWTIssuer_WirePayloadFields(t *testing.T) {
	t.Parallel()

	s := newTestIssuer(t, nil)
	tok, _ := s.IssueAccessToken(testClaims)

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, mc); err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, k := range []string{"id", "email", "first_name", "role", "iss", "sub", "iat", "exp", "jti"} {
		if _, ok := mc[k]; !ok {
			t.Fatalf("missing claim %q in %v", k, mc)
		}
	}
	if mc["role"] != "student" || mc["first_name"] != "Anna" {
		t.Fatalf("unexpected payload: %v", mc)
	}
}

func TestJWTIssuer_SecretsAreNotInterchangeable(t *testing.T) {
	t.Parallel()

	s := newTestIssuer(t, nil)
	access, _ := s.IssueAccessToken(testClaims)
	refresh, _ := s.IssueRefreshToken(testClaims)

	if _, err := s.VerifyRefreshToken(access); !domain.Is(err, "token_invalid") {
		t.Fatalf("access token must not verify as refresh, got %v", err)
	}
	if _, err := s.VerifyAccessToken(refresh); !domain.Is(err, "token_invalid") {
		t.Fatalf("refresh token must not verify as access, got %v", err)
	}
	if _, err := s.VerifyRefreshToken(refresh); err != nil {
		t.Fatalf("refresh verify err: %v", err)
	}
}

func TestJWTIssuer_EveryIssuanceIsUnique(t *testing.T) {
	t.Parallel()

	fixed := time.Now()
	s := newTestIssuer(t, func() time.Time { return fixed })

	a, _ := s.IssueAccessToken(testClaims)
	b, _ := s.IssueAccessToken(testClaims)
	if a == b {
		t.Fatalf("expected distinct tokens for identical claims and time")
	}
}

func TestJWTIssuer_Expired_ReturnsTokenExpired(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-8 * 24 * time.Hour)
	old := newTestIssuer(t, func() time.Time { return past })
	tok, err := old.IssueRefreshToken(testClaims)
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}

	s := newTestIssuer(t, nil)
	if _, err := s.VerifyRefreshToken(tok); !domain.Is(err, "token_expired") {
		t.Fatalf("expected token_expired, got %v", err)
	}
}

func TestJWTIssuer_AccessExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	now := time.Now()
	clock := now
	s := newTestIssuer(t, func() time.Time { return clock })
	tok, _ := s.IssueAccessToken(testClaims)

	clock = now.Add(14 * time.Minute)
	if _, err := s.VerifyAccessToken(tok); err != nil {
		t.Fatalf("should be valid before ttl, got %v", err)
	}
	clock = now.Add(16 * time.Minute)
	if _, err := s.VerifyAccessToken(tok); !domain.Is(err, "token_expired") {
		t.Fatalf("expected token_expired, got %v", err)
	}
}

func TestJWTIssuer_Tampered_ReturnsTokenInvalid(t *testing.T) {
	t.Parallel()

	s := newTestIssuer(t, nil)
	tok, _ := s.IssueAccessToken(testClaims)

	parts := strings.Split(tok, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := s.VerifyAccessToken(tampered); !domain.Is(err, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", err)
	}
}

func TestJWTIssuer_WrongIssuer_ReturnsTokenInvalid(t *testing.T) {
	t.Parallel()

	other, _ := NewJWTIssuer(JWTConfig{
		AccessSecret: "access-secret", RefreshSecret: "refresh-secret",
		Issuer: "someone-else", AccessTTL: time.Minute, RefreshTTL: time.Hour,
	})
	tok, _ := other.IssueAccessToken(testClaims)

	s := newTestIssuer(t, nil)
	if _, err := s.VerifyAccessToken(tok); !domain.Is(err, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", err)
	}
}

func TestJWTIssuer_Verify_AlgConfusion_Rejected(t *testing.T) {
	t.Parallel()

	// Unsigned "none" token must be rejected.
	claims := jwt.MapClaims{
		"id":   "u1",
		"role": "student",
		"iss":  "auth-service",
		"sub":  "u1",
		"exp":  time.Now().Add(time.Minute).Unix(),
		"iat":  time.Now().Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, claims)

	unsigned, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("unexpected signing err: %v", err)
	}

	s := newTestIssuer(t, nil)
	if _, verr := s.VerifyAccessToken(unsigned); !domain.Is(verr, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", verr)
	}
}

func TestJWTIssuer_Verify_UnknownRole_Rejected(t *testing.T) {
	t.Parallel()

	claims := jwt.MapClaims{
		"id":   "u1",
		"role": "admin",
		"iss":  "auth-service",
		"exp":  time.Now().Add(time.Minute).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	s := newTestIssuer(t, nil)
	if _, err := s.VerifyAccessToken(signed); !domain.Is(err, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", err)
	}
}

func TestJWTIssuer_Verify_Garbage_ReturnsTokenInvalid(t *testing.T) {
	t.Parallel()

	s := newTestIssuer(t, nil)
	if _, err := s.VerifyAccessToken("not.a.jwt"); !domain.Is(err, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", err)
	}
}
