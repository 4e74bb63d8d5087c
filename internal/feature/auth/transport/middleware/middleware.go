// Package middleware provides the authorization gate for protected routes.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"secrets_web/internal/feature/auth/domain/entity"
	"secrets_web/internal/feature/auth/usecase"
)

// SessionCookie is the name of the cookie carrying the signed session token.
const SessionCookie = "secrets_session"

// ContextUser is the gin context key holding the authenticated *entity.User.
const ContextUser = "currentUser"

// SessionResolver resolves a session cookie token to a live user.
// Following Go convention: interfaces are defined by the consumer (middleware), not the provider (usecase).
type SessionResolver interface {
	// CurrentUser returns the authenticated user behind the token, or
	// usecase.ErrInvalidSession when the session cannot be resolved.
	CurrentUser(ctx context.Context, token string) (*entity.User, error)
}

// RequireLogin returns a Gin middleware that restricts access to
// authenticated sessions. Unauthenticated requests are redirected to the
// login page before the protected handler runs or mutates anything.
func RequireLogin(auth SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		user, err := auth.CurrentUser(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, usecase.ErrInvalidSession) {
				// Store fault, not a stale session; still fail closed
				slog.Error("session resolution failed", "error", err, "remote_addr", c.ClientIP())
			}
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(ContextUser, user)
		c.Next()
	}
}

// UserFromContext returns the authenticated user stored by RequireLogin.
func UserFromContext(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*entity.User)
	return user, ok
}
