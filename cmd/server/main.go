package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebaseapp "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/collex/internal/api"
	"github.com/example/collex/internal/config"
	"github.com/example/collex/internal/core"
	"github.com/example/collex/internal/crypto"
	"github.com/example/collex/internal/db"
	"github.com/example/collex/internal/firebase"
	"github.com/example/collex/internal/identity"
	"github.com/example/collex/internal/metrics"
	"github.com/example/collex/internal/middleware"
	"github.com/example/collex/internal/search"
	"github.com/example/collex/internal/session"
	"github.com/example/collex/internal/storage"
	"github.com/example/collex/pkg/cache"
	"github.com/example/collex/pkg/mailer"
	"github.com/example/collex/pkg/messagequeue"
)

func main() {
	// --- 1. Logger and configuration ---
	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	if appConfig.IsRelease() {
		if prod, err := zap.NewProduction(); err == nil {
			zapLogger = prod
		}
	}
	zapLogger.Info("Application configuration loaded successfully.")

	// --- 2. Firebase Admin SDK: Firestore and Auth ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()

	app, err := firebase.NewApp(initCtx, appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase app", zap.Error(err))
	}
	if err := db.InitFirestore(initCtx, app, zapLogger); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore and Firebase Auth", zap.Error(err))
	}
	defer db.Close()

	provider, err := identity.NewFirebaseProvider(initCtx, db.GetFirebaseAuthClient(), appConfig.FirebaseWebAPIKey)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize identity provider", zap.Error(err))
	}

	// --- 3. Repositories ---
	firestoreClient := db.GetFirestoreClient()
	listingRepo, err := db.NewFirestoreListingRepository(firestoreClient, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to create listing repository", zap.Error(err))
	}
	profileRepo, err := db.NewFirestoreProfileRepository(firestoreClient)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to create profile repository", zap.Error(err))
	}
	auditRepo, err := db.NewFirestoreAuditRepository(firestoreClient)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to create audit repository", zap.Error(err))
	}

	// --- 4. Buckets, cache, queue, mail ---
	listingImages, avatars, err := openBuckets(initCtx, app, appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to open storage buckets", zap.Error(err))
	}

	var appCache cache.Cache = cache.NewMemoryCache()
	if appConfig.RedisAddress != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cache.NewRedisCacheConfig{
			Address:   appConfig.RedisAddress,
			Password:  appConfig.RedisPassword,
			DB:        appConfig.RedisDB,
			KeyPrefix: "collex:",
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to Redis", zap.Error(err))
		}
		defer redisCache.Close()
		appCache = redisCache
	} else {
		zapLogger.Warn("REDIS_ADDRESS not set, sessions and screen state are kept in process memory")
	}

	var queue messagequeue.MessageQueue = messagequeue.NewMemoryQueue(0)
	if appConfig.RabbitMQURL != "" {
		rabbit, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL}, zapLogger)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to RabbitMQ", zap.Error(err))
		}
		queue = rabbit
	}
	defer queue.Close()

	var appMailer mailer.Mailer = mailer.NewLogMailer(zapLogger)
	if appConfig.SMTPHost != "" {
		smtpMailer, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     appConfig.SMTPHost,
			Port:     appConfig.SMTPPort,
			Username: appConfig.SMTPUsername,
			Password: appConfig.SMTPPassword,
			From:     appConfig.MailFrom,
		})
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to configure SMTP mailer", zap.Error(err))
		}
		appMailer = smtpMailer
	}

	key, err := appConfig.EncryptionKeyBytes()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Invalid encryption key", zap.Error(err))
	}
	sealer, err := crypto.NewSealer(key)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to create sealer", zap.Error(err))
	}

	metricsManager := metrics.NewMetricsManager("collex")

	// --- 5. Services ---
	hub := session.NewHub()
	sessionStore := session.NewStore(appCache)

	auditService := core.NewAuditService(auditRepo)
	mediaService := core.NewMediaService(listingImages, avatars, appConfig.MaxUploadBytes, metricsManager, zapLogger)
	profileService := core.NewProfileService(profileRepo, mediaService, sealer, auditService, appCache, appConfig.SessionTTL, zapLogger)
	listingEvents := core.NewQueueListingPublisher(queue, appConfig.ListingEventsQueue)
	listingService := core.NewListingService(listingRepo, profileService, mediaService, auditService, listingEvents, metricsManager, zapLogger)
	authService := core.NewAuthService(provider, sessionStore, hub, appMailer, metricsManager, core.AuthConfig{
		AllowedDomain: appConfig.AllowedEmailDomain,
		SessionTTL:    appConfig.SessionTTL,
	}, zapLogger)

	gate := session.NewGate(hub, authService, zapLogger)

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()
	go gate.Run(runCtx)

	notifier := core.NewListingEventNotifier(appMailer, zapLogger)
	go func() {
		if err := queue.Consume(runCtx, appConfig.ListingEventsQueue, notifier.Handle); err != nil {
			zapLogger.Error("Listing event consumer stopped", zap.Error(err))
		}
	}()
	zapLogger.Info("Core services initialized successfully.")

	// --- 6. Gin engine and middleware ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = appConfig.MaxUploadBytes + 1<<20

	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	if appConfig.MetricsEnabled {
		router.Use(middleware.RequestMetrics(metricsManager))
	}
	corsMW, err := middleware.CORSMiddleware(appConfig.ClientURL)
	if err != nil {
		zapLogger.Warn("CORS Middleware SKIPPED", zap.Error(err))
	} else {
		router.Use(corsMW)
		zapLogger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	}
	router.Use(middleware.BrowserSession(appConfig.SessionCookieName, appConfig.SessionTTL, appConfig.IsRelease()))

	deps := api.RouteDeps{
		AuthService:    authService,
		ListingService: listingService,
		ProfileService: profileService,
		MediaService:   mediaService,
		Gate:           gate,
		SearchStore:    search.NewStore(appCache, appConfig.SessionTTL),
		Cache:          appCache,
		Guard:          middleware.NewSubmissionGuard(metricsManager),
		SessionTTL:     appConfig.SessionTTL,
		MaxUploadBytes: appConfig.MaxUploadBytes,
	}
	if appConfig.MetricsEnabled {
		deps.MetricsHandler = metricsManager.Handler()
	}
	api.SetupRoutes(router, deps, zapLogger)

	// --- 7. HTTP server and graceful shutdown ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	stopRun()
	zapLogger.Info("Server exiting gracefully.")
}

// openBuckets opens the listing-images and avatars buckets on the configured backend.
func openBuckets(ctx context.Context, app *firebaseapp.App, cfg *config.Config, logger *zap.Logger) (storage.Bucket, storage.Bucket, error) {
	if cfg.StorageBackend == config.StorageBackendMinio {
		client, err := storage.NewMinioClient(storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, nil, err
		}
		images, err := storage.NewMinioBucket(ctx, client, cfg.ListingImagesBucket, cfg.StoragePublicBaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		avatars, err := storage.NewMinioBucket(ctx, client, cfg.AvatarsBucket, cfg.StoragePublicBaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		return images, avatars, nil
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("app.Storage: %w", err)
	}
	images, err := storage.NewFirebaseBucket(client, cfg.ListingImagesBucket, cfg.StoragePublicBaseURL)
	if err != nil {
		return nil, nil, err
	}
	avatars, err := storage.NewFirebaseBucket(client, cfg.AvatarsBucket, cfg.StoragePublicBaseURL)
	if err != nil {
		return nil, nil, err
	}
	return images, avatars, nil
}
