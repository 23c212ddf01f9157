package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/collex/internal/core"
	"github.com/example/collex/internal/middleware"
	"github.com/example/collex/internal/models"
)

// ProfileHandler handles the profile screen.
type ProfileHandler struct {
	profileService core.ProfileService
	maxUpload      int64
	logger         *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(ps core.ProfileService, maxUpload int64, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: ps, maxUpload: maxUpload, logger: logger}
}

// GetProfile handles GET /profile, creating the profile on first visit.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()
	profile, created, err := h.profileService.GetOrCreate(ctx, middleware.CurrentUser(c))
	if err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	st, err := h.profileService.EditState(ctx, c.GetString(middleware.ContextSessionID))
	if err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{Profile: profile, Created: created, Editing: string(st.Field)})
}

// SaveProfile handles PUT /profile
func (h *ProfileHandler) SaveProfile(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	profile, err := h.profileService.Save(c.Request.Context(), uid, req)
	if err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: core.MsgProfileSaved, Data: profile})
}

// StartEdit handles POST /profile/edit/:field
func (h *ProfileHandler) StartEdit(c *gin.Context) {
	st, err := h.profileService.StartEdit(c.Request.Context(), c.GetString(middleware.ContextSessionID), models.ProfileField(c.Param("field")))
	if err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// CancelEdit handles DELETE /profile/edit
func (h *ProfileHandler) CancelEdit(c *gin.Context) {
	st, err := h.profileService.CancelEdit(c.Request.Context(), c.GetString(middleware.ContextSessionID))
	if err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// CommitField handles PUT /profile/fields/:field
func (h *ProfileHandler) CommitField(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req models.UpdateProfileFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	field := models.ProfileField(c.Param("field"))
	profile, err := h.profileService.CommitField(c.Request.Context(), c.GetString(middleware.ContextSessionID), uid, field, req.Value)
	if err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: core.FieldUpdatedMessage(field), Data: profile})
}

// UploadAvatar handles POST /profile/avatar (multipart "avatar" file).
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	file, err := readUpload(c, "avatar", h.maxUpload)
	if err != nil || file == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.MsgInvalidImage})
		return
	}
	profile, err := h.profileService.UploadAvatar(c.Request.Context(), uid, *file)
	if err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: core.MsgAvatarUploaded, Data: profile})
}
