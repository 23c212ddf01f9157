package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/collex/internal/core"
	"github.com/example/collex/internal/middleware"
	"github.com/example/collex/internal/search"
	"github.com/example/collex/pkg/cache"
)

// RouteDeps are the services and stores the routes are built from.
type RouteDeps struct {
	AuthService    core.AuthService
	ListingService core.ListingService
	ProfileService core.ProfileService
	MediaService   core.MediaService
	Gate           SessionGate
	SearchStore    *search.Store
	Cache          cache.Cache
	Guard          *middleware.SubmissionGuard
	MetricsHandler http.Handler // nil disables /metrics
	SessionTTL     time.Duration
	MaxUploadBytes int64
}

// SetupRoutes configures all the application routes with their handlers and
// middleware. Global middleware (logging, recovery, cors, browser session) is
// expected to be applied to router before this call.
func SetupRoutes(router *gin.Engine, deps RouteDeps, logger *zap.Logger) {
	authMW := middleware.NewAuthMiddleware(deps.AuthService, deps.Gate, logger)
	requireUser := authMW.RequireUser()
	guard := deps.Guard.Guard

	authHandler := NewAuthHandler(deps.AuthService, deps.Gate, logger)
	listingHandler := NewListingHandler(deps.ListingService, deps.SearchStore, deps.Cache, deps.SessionTTL, deps.MaxUploadBytes, logger)
	profileHandler := NewProfileHandler(deps.ProfileService, deps.MaxUploadBytes, logger)
	searchHandler := NewSearchHandler(deps.SearchStore, deps.ListingService, logger)
	uploadHandler := NewUploadHandler(deps.MediaService, deps.MaxUploadBytes, logger)

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.SignUp)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/session", authHandler.Session)
		}

		apiV1.GET("/feed", requireUser, listingHandler.Feed)

		searchGroup := apiV1.Group("/search")
		{
			searchGroup.GET("", searchHandler.View)
			searchGroup.PUT("", searchHandler.SetQuery)
			searchGroup.DELETE("", searchHandler.Clear)
			searchGroup.POST("/submit", searchHandler.Submit)
			searchGroup.POST("/keys", searchHandler.Key)
			searchGroup.GET("/suggestions", requireUser, searchHandler.Suggestions)
			searchGroup.POST("/suggestions", searchHandler.SelectSuggestion)
		}

		apiV1.POST("/uploads/listing-image", requireUser, guard("upload-listing-image"), uploadHandler.UploadListingImage)

		listingsGroup := apiV1.Group("/listings")
		{
			listingsGroup.POST("", requireUser, guard("create-listing"), listingHandler.CreateListing)
			listingsGroup.GET("/:id", listingHandler.GetListing)
			listingsGroup.GET("/:id/edit", requireUser, listingHandler.LoadForEdit)
			listingsGroup.PUT("/:id", requireUser, guard("update-listing"), listingHandler.UpdateListing)
		}

		myListingsGroup := apiV1.Group("/my-listings", requireUser)
		{
			myListingsGroup.GET("", listingHandler.MyListings)
			myListingsGroup.DELETE("/:id", guard("delete-listing"), listingHandler.DeleteMyListing)
		}

		profileGroup := apiV1.Group("/profile", requireUser)
		{
			profileGroup.GET("", profileHandler.GetProfile)
			profileGroup.PUT("", guard("save-profile"), profileHandler.SaveProfile)
			profileGroup.POST("/edit/:field", profileHandler.StartEdit)
			profileGroup.DELETE("/edit", profileHandler.CancelEdit)
			profileGroup.PUT("/fields/:field", guard("save-profile-field"), profileHandler.CommitField)
			profileGroup.POST("/avatar", guard("upload-avatar"), profileHandler.UploadAvatar)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Collex backend is healthy."})
	})
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	logger.Info("API routes configured successfully under /api/v1, /health and /ping.")
}
