package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"mdexport/internal/models"
	utils "mdexport/internal/utils/http_errors"
)

const tokenHeader = "X-Session-Token"

// Auth resolves the session token into the requesting user and the session
// identity download tickets are bound to.
func Auth(log *slog.Logger, authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op := pkg + "Auth"

			log := log.With(slog.String("op", op))

			token := r.URL.Query().Get("token")
			if token == "" {
				token = r.Header.Get(tokenHeader)
			}

			requester, session, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				log.Warn("failed get user by token", slog.String("error", err.Error()))
				utils.WriteJSONError(w, http.StatusForbidden, "token is invalid")
				return
			}

			ctx := context.WithValue(r.Context(), models.UserContextKey, requester)
			ctx = context.WithValue(ctx, models.SessionContextKey, session)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
