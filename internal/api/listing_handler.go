package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/collex/internal/core"
	"github.com/example/collex/internal/middleware"
	"github.com/example/collex/internal/models"
	"github.com/example/collex/internal/search"
	"github.com/example/collex/pkg/cache"
)

// ListingHandler handles API endpoints related to listings.
type ListingHandler struct {
	listingService core.ListingService
	searchStore    *search.Store
	mine           *myListingsSnapshot
	maxUpload      int64
	logger         *zap.Logger
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(ls core.ListingService, searchStore *search.Store, c cache.Cache, snapshotTTL time.Duration, maxUpload int64, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{
		listingService: ls,
		searchStore:    searchStore,
		mine:           &myListingsSnapshot{cache: c, ttl: snapshotTTL},
		maxUpload:      maxUpload,
		logger:         logger,
	}
}

// Feed handles GET /feed. The ?q= parameter, when present, overrides the
// session's search query without changing it.
func (h *ListingHandler) Feed(c *gin.Context) {
	ctx := c.Request.Context()
	listings, err := h.listingService.GetFeed(ctx)
	if err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}

	view := search.View{}
	if q, ok := c.GetQuery("q"); ok {
		view = search.State{}.SetQuery(q).View()
	} else {
		view, err = h.searchStore.View(ctx, c.GetString(middleware.ContextSessionID))
		if err != nil {
			mapCoreErrorToStatus(c, h.logger, err)
			return
		}
	}

	c.JSON(http.StatusOK, FeedResponse{
		Query:     view.Query,
		Searching: view.Searching,
		Listings:  nonNil(search.Filter(listings, view.Query)),
	})
}

// CreateListing handles POST /listings (JSON, or multipart with an optional "image" file).
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var req models.CreateListingRequest
	if err := bindForm(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	image, err := readUpload(c, "image", h.maxUpload)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.MsgInvalidImage, Details: err.Error()})
		return
	}

	listing, err := h.listingService.CreateListing(c.Request.Context(), middleware.CurrentUser(c), req, image)
	if err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Message: "Listing created successfully", Data: listing})
}

// GetListing handles GET /listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	detail, err := h.listingService.GetListingDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, core.ErrListingNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Listing not found"})
			return
		}
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// LoadForEdit handles GET /listings/:id/edit
func (h *ListingHandler) LoadForEdit(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	view, err := h.listingService.LoadForEdit(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateListing handles PUT /listings/:id
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req models.UpdateListingRequest
	if err := bindForm(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	image, err := readUpload(c, "image", h.maxUpload)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.MsgInvalidImage, Details: err.Error()})
		return
	}

	listing, err := h.listingService.UpdateListing(c.Request.Context(), uid, c.Param("id"), req, image)
	if err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Listing updated successfully", Data: listing})
}

// MyListings handles GET /my-listings and remembers the result for the session.
func (h *ListingHandler) MyListings(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	listings, err := h.listingService.ListMine(ctx, uid)
	if err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}
	listings = nonNil(listings)
	if err := h.mine.save(ctx, c.GetString(middleware.ContextSessionID), listings); err != nil {
		h.logger.Warn("Failed to store my-listings snapshot", zap.Error(err))
	}
	c.JSON(http.StatusOK, listings)
}

// DeleteMyListing handles DELETE /my-listings/:id?confirm=true. The session's
// snapshot loses exactly the deleted listing; a failed delete leaves it as is.
func (h *ListingHandler) DeleteMyListing(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusPreconditionRequired, ErrorResponse{Error: core.MsgDeleteConfirm})
		return
	}
	ctx := c.Request.Context()
	sid := c.GetString(middleware.ContextSessionID)
	listingID := c.Param("id")

	if err := h.listingService.DeleteListing(ctx, uid, listingID); err != nil {
		mapCoreErrorToStatus(c, h.logger, err)
		return
	}

	snapshot, found, err := h.mine.load(ctx, sid)
	if err != nil {
		h.logger.Warn("Failed to load my-listings snapshot", zap.Error(err))
	}
	var remaining []*models.Listing
	if found {
		remaining = RemoveListing(snapshot, listingID)
	} else {
		remaining, err = h.listingService.ListMine(ctx, uid)
		if err != nil {
			mapCoreErrorToStatus(c, h.logger, err)
			return
		}
	}
	remaining = nonNil(remaining)
	if err := h.mine.save(ctx, sid, remaining); err != nil {
		h.logger.Warn("Failed to store my-listings snapshot", zap.Error(err))
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Listing deleted successfully", Data: remaining})
}

func nonNil(listings []*models.Listing) []*models.Listing {
	if listings == nil {
		return []*models.Listing{}
	}
	return listings
}
