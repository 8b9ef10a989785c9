package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/omerfdemir/teklifix-backend/pkg/logger"
)

const cartTokenHeader = "X-Cart-Token"

// CartSession resolves the opaque cart token for a browsing session. A missing
// or malformed token gets a freshly minted one; the active token is always
// echoed back so the storefront can persist it.
func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(cartTokenHeader))
			if _, err := uuid.Parse(token); err != nil {
				token = uuid.NewString()
			}

			w.Header().Set(cartTokenHeader, token)

			ctx := WithCartToken(r.Context(), token)
			if logg != nil {
				ctx = logg.WithField(ctx, "cart_token", token)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
