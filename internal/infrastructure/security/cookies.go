package security

import (
	"net/http"
	"time"
)

const RefreshCookieName = "refreshToken"

func refreshCookie(value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure, // prod=true, dev=false
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

func SetRefreshToken(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, refreshCookie(token, int(ttl.Seconds()), secure))
}

// ClearRefreshToken uses the same attributes as SetRefreshToken so browsers
// match and drop the stored cookie.
func ClearRefreshToken(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, refreshCookie("", -1, secure))
}

// ReadRefreshToken returns "" when the cookie is absent.
func ReadRefreshToken(r *http.Request) string {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
