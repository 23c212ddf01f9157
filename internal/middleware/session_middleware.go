package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Gin context keys set by this package.
const (
	ContextSessionID       = "sessionID"
	ContextUserID          = "userID"
	ContextUserEmail       = "userEmail"
	ContextUserDisplayName = "userDisplayName"
)

// ErrorResponse is the JSON error body. It mirrors api.ErrorResponse to avoid
// an import cycle.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

const contextSessionCookie = "sessionCookie"

type sessionCookie struct {
	name   string
	ttl    time.Duration
	secure bool
}

func (sc sessionCookie) set(c *gin.Context, sid string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.name, sid, int(sc.ttl.Seconds()), "/", "", sc.secure, true)
}

// BrowserSession issues a random session ID cookie on first contact and
// exposes it as ContextSessionID. The ID keys every piece of per-browser state.
// The cookie's lifetime starts when it is issued and is only extended by
// RenewBrowserSession.
func BrowserSession(cookieName string, ttl time.Duration, secure bool) gin.HandlerFunc {
	sc := sessionCookie{name: cookieName, ttl: ttl, secure: secure}
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookieName)
		if err != nil || !validSessionID(sid) {
			sid = uuid.NewString()
			sc.set(c, sid)
		}
		c.Set(ContextSessionID, sid)
		c.Set(contextSessionCookie, sc)
		c.Next()
	}
}

// RenewBrowserSession restarts the session cookie's lifetime, so that it
// lasts as long as a session signed in now.
func RenewBrowserSession(c *gin.Context) {
	v, ok := c.Get(contextSessionCookie)
	if !ok {
		return
	}
	sid := c.GetString(ContextSessionID)
	if sid == "" {
		return
	}
	v.(sessionCookie).set(c, sid)
}

func validSessionID(sid string) bool {
	_, err := uuid.Parse(sid)
	return err == nil
}
