package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Saideepak144/KodBank/internal/auth"
	"github.com/Saideepak144/KodBank/internal/domain"
	"github.com/Saideepak144/KodBank/internal/handler"
	"github.com/Saideepak144/KodBank/internal/logging"
)

type sessionChecker interface {
	GetValid(ctx context.Context, tokenValue string) (*domain.SessionToken, error)
}

// Auth accepts the session token from the "token" cookie or a Bearer
// header, in that order. A request is authenticated only when the JWT
// signature verifies AND the token still has a live server-side row, so
// logout takes effect immediately.
func Auth(secret string, sessions sessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			if _, err := sessions.GetValid(r.Context(), token); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					handler.RespondAppError(w, handler.ErrInvalidToken, nil)
					return
				}
				logging.FromContext(r.Context()).Error("session lookup failed", "error", err)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
				return
			}

			ctx := auth.ContextWithUserID(r.Context(), claims.UserID)
			ctx = auth.ContextWithToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie("token"); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found && token != "" {
		return token
	}
	return ""
}
