package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/collex/internal/core"
	"github.com/example/collex/internal/middleware"
	"github.com/example/collex/internal/models"
	"github.com/example/collex/internal/session"
)

// SessionGate is the read side of the authentication gate plus the
// authenticating marker used around sign-in.
type SessionGate interface {
	Mount(ctx context.Context, sessionID string) (session.View, error)
	Await(ctx context.Context, sessionID string, pred func(session.View) bool) (session.View, error)
	BeginAuthenticating(sessionID string)
	AbortAuthenticating(sessionID string)
}

// AuthHandler handles sign-up, sign-in, sign-out and the session view.
type AuthHandler struct {
	authService core.AuthService
	gate        SessionGate
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as core.AuthService, gate SessionGate, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: as, gate: gate, logger: logger}
}

// SignUp handles POST /auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := h.authService.SignUp(c.Request.Context(), req); err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: core.MsgSignUpSuccess})
}

// Login handles POST /auth/login. The session becomes authenticated only
// through the SIGNED_IN event; the handler waits for the gate to settle.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	sid := c.GetString(middleware.ContextSessionID)
	ctx := c.Request.Context()

	h.gate.BeginAuthenticating(sid)
	if err := h.authService.SignIn(ctx, sid, req); err != nil {
		h.gate.AbortAuthenticating(sid)
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	view, err := h.gate.Await(ctx, sid, session.Settled)
	if err != nil {
		c.Abort()
		return
	}
	middleware.RenewBrowserSession(c)
	c.JSON(http.StatusOK, view)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sid := c.GetString(middleware.ContextSessionID)
	ctx := c.Request.Context()
	if err := h.authService.SignOut(ctx, sid); err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	if _, err := h.gate.Await(ctx, sid, session.SignedOut); err != nil {
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, session.View{State: session.StateAnonymous})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	sid := c.GetString(middleware.ContextSessionID)
	if err := h.authService.Refresh(c.Request.Context(), sid); err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Session refreshed"})
}

// Session handles GET /auth/session: the gate's {state, user} view.
func (h *AuthHandler) Session(c *gin.Context) {
	view, err := h.gate.Mount(c.Request.Context(), c.GetString(middleware.ContextSessionID))
	if err != nil {
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, view)
}
