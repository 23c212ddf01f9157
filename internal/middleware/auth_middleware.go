package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/collex/internal/models"
	"github.com/example/collex/internal/session"
)

// TokenVerifier checks bearer ID tokens.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*models.AuthUser, error)
}

// SessionGate resolves the auth state of a browser session.
type SessionGate interface {
	Mount(ctx context.Context, sessionID string) (session.View, error)
	Await(ctx context.Context, sessionID string, pred func(session.View) bool) (session.View, error)
}

// AuthMiddleware authenticates requests by bearer token or browser session.
type AuthMiddleware struct {
	tokens TokenVerifier
	gate   SessionGate
	logger *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(tokens TokenVerifier, gate SessionGate, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, gate: gate, logger: logger}
}

// RequireUser lets the request through only for a signed-in user and sets
// the user's ID, email and display name in the gin context. A request carrying
// an Authorization header is judged by its token alone.
func (m *AuthMiddleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			m.bearer(c, header)
			return
		}

		sid := c.GetString(ContextSessionID)
		if sid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Please sign in to continue"})
			return
		}
		view, err := m.resolve(c.Request.Context(), sid)
		if err != nil {
			// The client went away; nothing to answer.
			c.Abort()
			return
		}
		if view.State != session.StateAuthenticated || view.User == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Please sign in to continue"})
			return
		}
		setUser(c, view.User)
		c.Next()
	}
}

func (m *AuthMiddleware) resolve(ctx context.Context, sid string) (session.View, error) {
	view, err := m.gate.Mount(ctx, sid)
	if err != nil {
		return view, err
	}
	if view.State == session.StateAuthenticating {
		return m.gate.Await(ctx, sid, session.Settled)
	}
	return view, nil
}

func (m *AuthMiddleware) bearer(c *gin.Context, header string) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
		return
	}
	user, err := m.tokens.VerifyIDToken(c.Request.Context(), parts[1])
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			m.logger.Info("Rejected bearer token", zap.Error(err))
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
		return
	}
	setUser(c, user)
	c.Next()
}

func setUser(c *gin.Context, u *models.AuthUser) {
	c.Set(ContextUserID, u.ID)
	c.Set(ContextUserEmail, u.Email)
	if u.DisplayName != "" {
		c.Set(ContextUserDisplayName, u.DisplayName)
	}
}

// CurrentUser returns the user set by RequireUser.
func CurrentUser(c *gin.Context) models.AuthUser {
	return models.AuthUser{
		ID:          c.GetString(ContextUserID),
		Email:       c.GetString(ContextUserEmail),
		DisplayName: c.GetString(ContextUserDisplayName),
	}
}
