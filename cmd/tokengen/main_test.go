package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
	"github.com/baechuer/sports-portal/services/auth-service/internal/infrastructure/security"
)

func TestMint_TokensVerify(t *testing.T) {
	o := options{n: 3, role: "trainer", issuer: "auth-service", accessTTL: time.Minute, accessKey: "a-secret", refreshKey: "r-secret"}

	var buf bytes.Buffer
	require.NoError(t, mint(o, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	iss, err := security.NewJWTIssuer(security.JWTConfig{
		AccessSecret: "a-secret", RefreshSecret: "r-secret", Issuer: "auth-service",
		AccessTTL: time.Minute, RefreshTTL: time.Minute,
	})
	require.NoError(t, err)

	c, err := iss.VerifyAccessToken(lines[2])
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTrainer, c.Role)
	assert.Equal(t, "load-2@example.com", c.Email)
}

func TestMint_RequiresSecrets(t *testing.T) {
	o := options{n: 1, role: "student", accessTTL: time.Minute}
	assert.Error(t, mint(o, &bytes.Buffer{}))
}

func TestParseFlags_Validation(t *testing.T) {
	_, err := parseFlags([]string{"-role", "admin"})
	assert.True(t, domain.Is(err, "invalid_role"))

	_, err = parseFlags([]string{"-n", "0"})
	assert.Error(t, err)

	t.Setenv("ACCESS_TOKEN_SECRET", "a")
	t.Setenv("REFRESH_TOKEN_SECRET", "b")
	o, err := parseFlags([]string{"-n", "5"})
	require.NoError(t, err)
	assert.Equal(t, 5, o.n)
	assert.Equal(t, "a", o.accessKey)
}
