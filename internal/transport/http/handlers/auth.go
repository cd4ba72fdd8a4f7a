package http_handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/sports-portal/services/auth-service/internal/application/auth"
	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
	"github.com/baechuer/sports-portal/services/auth-service/internal/infrastructure/security"
	"github.com/baechuer/sports-portal/services/auth-service/internal/logger"
	"github.com/baechuer/sports-portal/services/auth-service/internal/transport/http/dto"
	"github.com/baechuer/sports-portal/services/auth-service/internal/transport/http/middleware"
	"github.com/baechuer/sports-portal/services/auth-service/internal/transport/http/response"
)

// AuthService is what the handlers need from the application layer.
type AuthService interface {
	Register(ctx context.Context, reg domain.Registration) (auth.TokenPair, error)
	Login(ctx context.Context, email, password string) (auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string)
}

type AuthHandler struct {
	svc           AuthService
	refreshTTL    time.Duration
	secureCookies bool
}

func NewAuthHandler(svc AuthService, refreshTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		svc:           svc,
		refreshTTL:    refreshTTL,
		secureCookies: secureCookies,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	reg, err := req.ToRegistration()
	if err != nil {
		middleware.RegistrationsTotal.WithLabelValues(roleLabel(req.Role), middleware.StatusLabel(err)).Inc()
		response.WriteError(w, r, err)
		return
	}

	pair, err := h.svc.Register(r.Context(), reg)
	middleware.RegistrationsTotal.WithLabelValues(string(reg.Role()), middleware.StatusLabel(err)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", pair.Claims.UserID).
		Str("role", string(pair.Claims.Role)).
		Msg("user_registered")

	security.SetRefreshToken(w, pair.RefreshToken, h.refreshTTL, h.secureCookies)
	response.OK(w, dto.TokenResponse{Message: "Registered successfully.", Token: pair.AccessToken})
}

// roleLabel keeps client input out of metric labels.
func roleLabel(raw string) string {
	if domain.IsValidRole(raw) {
		return raw
	}
	return "invalid"
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		middleware.LoginAttemptsTotal.WithLabelValues(middleware.StatusLabel(err)).Inc()
		response.WriteError(w, r, err)
		return
	}

	pair, err := h.svc.Login(r.Context(), req.Email, req.Password)
	middleware.LoginAttemptsTotal.WithLabelValues(middleware.StatusLabel(err)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	security.SetRefreshToken(w, pair.RefreshToken, h.refreshTTL, h.secureCookies)
	response.OK(w, dto.TokenResponse{Message: "Logged in successfully.", Token: pair.AccessToken})
}

// Refresh redeems the refresh cookie for a new access token. The cookie is
// left untouched.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	access, err := h.svc.Refresh(r.Context(), security.ReadRefreshToken(r))
	middleware.TokenRefreshTotal.WithLabelValues(middleware.StatusLabel(err)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.RefreshResponse{AccessToken: access})
}

// Logout always succeeds and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.svc.Logout(r.Context(), security.ReadRefreshToken(r))

	security.ClearRefreshToken(w, h.secureCookies)
	response.Message(w, "Logged out")
}

// Me echoes the identity carried by the bearer token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	response.OK(w, dto.NewMeResponse(claims))
}
