package response

import (
	"net/http"

	pkgctx "github.com/baechuer/sports-portal/services/auth-service/internal/pkg/context"
)

// RequestIDFromContext returns the id set by the RequestID middleware.
func RequestIDFromContext(r *http.Request) string {
	return pkgctx.GetRequestID(r.Context())
}
