package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/token"
)

// Auth validates a bearer token and seeds the request context with the
// account id. The three failure modes stay distinguishable in the response
// message: missing credentials, invalid token, token expired.
func Auth(cfg config.JWTConfig, clock token.Clock, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			bearer := raw
			if strings.HasPrefix(strings.ToLower(bearer), "bearer ") {
				bearer = strings.TrimSpace(bearer[7:])
			}
			if bearer == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := token.ParseAccessToken(cfg, bearer, clock)
			if err != nil {
				switch {
				case errors.Is(err, token.ErrMissingToken):
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				case errors.Is(err, token.ErrExpiredToken):
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "token expired"))
				default:
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				}
				return
			}

			ctx := WithAccountID(r.Context(), claims.AccountID)
			if logg != nil {
				ctx = logg.WithAccountID(ctx, strconv.FormatInt(claims.AccountID, 10))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
