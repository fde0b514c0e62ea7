package middleware

import (
	"context"
	"net/http"
	"strings"

	ierr "github.com/minidebet/backend/internal/errors"
	"github.com/minidebet/backend/internal/logger"
	"github.com/minidebet/backend/internal/services"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenVerifier resolves a bearer token to its claims.
type TokenVerifier interface {
	Authenticate(ctx context.Context, token string) (*services.Claims, error)
}

// Auth rejects requests without a valid bearer token. The wrapped handler
// only runs when verification succeeded and can read the claims with
// ClaimsFromContext.
func Auth(verifier TokenVerifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := verifier.Authenticate(r.Context(), token)
			if err != nil {
				if ierr.IsUnauthenticated(err) {
					unauthorized(w)
					return
				}
				services.WriteError(w, log, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by Auth.
func ClaimsFromContext(ctx context.Context) (*services.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*services.Claims)
	return claims, ok && claims != nil
}

// WithClaims stores claims on ctx the way Auth does.
func WithClaims(ctx context.Context, claims *services.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="minidebet"`)
	services.SendErrorResponse(w, "Invalid or expired token", http.StatusUnauthorized, nil)
}
