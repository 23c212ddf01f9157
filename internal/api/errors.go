package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/collex/internal/core"
	"github.com/example/collex/internal/middleware"
	"github.com/example/collex/internal/storage"
)

// mapCoreErrorToStatus maps errors from the core services to HTTP status
// codes and an ErrorResponse. A request whose context was cancelled gets no
// response body.
func mapCoreErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, context.Canceled):
		c.Abort()
		return
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrEmailDomain):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: core.UserMessage(err)}
	case errors.Is(err, core.ErrProfileIncomplete):
		statusCode = http.StatusUnprocessableEntity
		errResponse = ErrorResponse{Error: core.MsgProfileIncomplete}
	case errors.Is(err, core.ErrListingNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.MsgListingNotFound}
	case errors.Is(err, core.ErrProfileNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "Profile not found"}
	case errors.Is(err, core.ErrUnknownProfileField):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Unknown profile field", Details: err.Error()}
	case errors.Is(err, core.ErrNotEditingField):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: "Start editing this field before saving it"}
	case errors.Is(err, core.ErrEmailRegistered):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: "An account with this email already exists"}
	case errors.Is(err, core.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: "Invalid email or password"}
	case errors.Is(err, core.ErrSessionNotFound):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: "Your session has expired. Please sign in again."}
	case errors.Is(err, core.ErrUpload):
		statusCode = http.StatusBadGateway
		if errors.Is(err, storage.ErrObjectExists) {
			statusCode = http.StatusConflict
		}
		errResponse = ErrorResponse{Error: core.UserMessage(err)}
	default:
		logger.Error("Internal Server Error", zap.String("path", c.FullPath()), zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

func userID(c *gin.Context) (string, bool) {
	id := c.GetString(middleware.ContextUserID)
	if id == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return "", false
	}
	return id, true
}
