package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/collex/internal/core"
	"github.com/example/collex/internal/middleware"
	"github.com/example/collex/internal/models"
	"github.com/example/collex/internal/search"
)

// SearchHandler is the single writer of per-session search state.
type SearchHandler struct {
	store          *search.Store
	listingService core.ListingService
	logger         *zap.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(store *search.Store, ls core.ListingService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{store: store, listingService: ls, logger: logger}
}

func (h *SearchHandler) apply(c *gin.Context, fn func(search.State) search.State) {
	st, err := h.store.Apply(c.Request.Context(), c.GetString(middleware.ContextSessionID), fn)
	if err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, st.View())
}

// View handles GET /search
func (h *SearchHandler) View(c *gin.Context) {
	view, err := h.store.View(c.Request.Context(), c.GetString(middleware.ContextSessionID))
	if err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetQuery handles PUT /search
func (h *SearchHandler) SetQuery(c *gin.Context) {
	var req models.SearchQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	h.apply(c, func(s search.State) search.State { return s.SetQuery(req.Query) })
}

// Submit handles POST /search/submit
func (h *SearchHandler) Submit(c *gin.Context) {
	h.apply(c, search.State.Trigger)
}

// Clear handles DELETE /search
func (h *SearchHandler) Clear(c *gin.Context) {
	h.apply(c, search.State.Clear)
}

// Key handles POST /search/keys
func (h *SearchHandler) Key(c *gin.Context) {
	var req models.SearchKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	h.apply(c, func(s search.State) search.State { return s.HandleKey(req.Key) })
}

// SelectSuggestion handles POST /search/suggestions
func (h *SearchHandler) SelectSuggestion(c *gin.Context) {
	var req models.SearchSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	h.apply(c, func(s search.State) search.State { return s.SelectSuggestion(req.Suggestion) })
}

// Suggestions handles GET /search/suggestions
func (h *SearchHandler) Suggestions(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.store.Load(ctx, c.GetString(middleware.ContextSessionID))
	if err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	popular, err := h.listingService.PopularCategories(ctx, search.MaxPopular)
	if err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, search.BuildSuggestions(st, popular))
}
