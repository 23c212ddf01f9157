package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// MsgSubmissionInProgress is returned for a duplicate concurrent submission.
const MsgSubmissionInProgress = "A submission is already in progress"

// RejectionObserver counts refused submissions.
type RejectionObserver interface {
	ObserveRejectedSubmission(action string)
}

// SubmissionGuard holds a busy flag per user and action. While a submission
// runs, a second one of the same action by the same user is refused before
// any remote call.
type SubmissionGuard struct {
	busy     sync.Map
	observer RejectionObserver
}

// NewSubmissionGuard creates a SubmissionGuard. observer may be nil.
func NewSubmissionGuard(observer RejectionObserver) *SubmissionGuard {
	return &SubmissionGuard{observer: observer}
}

// Guard wraps one action. It must run after RequireUser.
func (g *SubmissionGuard) Guard(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(ContextUserID) + ":" + action
		if _, loaded := g.busy.LoadOrStore(key, struct{}{}); loaded {
			if g.observer != nil {
				g.observer.ObserveRejectedSubmission(action)
			}
			c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{Error: MsgSubmissionInProgress})
			return
		}
		defer g.busy.Delete(key)
		c.Next()
	}
}
