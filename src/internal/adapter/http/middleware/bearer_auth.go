package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/api-sage/interop-settlement/src/internal/logger"
	"github.com/golang-jwt/jwt/v5"
)

// BearerAuth admits requests carrying an HS256 token signed with secret. The
// token subject becomes the actor.
func BearerAuth(secret []byte) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(secret) == 0 {
				logger.Error("bearer auth middleware missing server configuration", nil, logger.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
				})
				http.Error(w, "server auth configuration is missing", http.StatusInternalServerError)
				return
			}

			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				unauthorized(w, r, errors.New("missing bearer token"))
				return
			}

			var claims jwt.RegisteredClaims
			_, err := parser.ParseWithClaims(strings.TrimSpace(raw), &claims, func(*jwt.Token) (any, error) {
				return secret, nil
			})
			if err != nil {
				unauthorized(w, r, err)
				return
			}
			if claims.Subject == "" {
				unauthorized(w, r, errors.New("token has no subject"))
				return
			}

			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), claims.Subject)))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, reason error) {
	logger.Info("bearer auth middleware unauthorized request", logger.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"reason": reason.Error(),
	})
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
