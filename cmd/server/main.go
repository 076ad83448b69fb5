package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/clock"
	"github.com/quocanhngo/spark/internal/config"
	"github.com/quocanhngo/spark/internal/database"
	"github.com/quocanhngo/spark/internal/handler"
	"github.com/quocanhngo/spark/internal/logger"
	"github.com/quocanhngo/spark/internal/messenger"
	"github.com/quocanhngo/spark/internal/middleware"
	"github.com/quocanhngo/spark/internal/notify"
	"github.com/quocanhngo/spark/internal/presence"
	"github.com/quocanhngo/spark/internal/ratelimit"
	"github.com/quocanhngo/spark/internal/repository"
	"github.com/quocanhngo/spark/internal/service"
	"github.com/quocanhngo/spark/internal/ws"
	"github.com/quocanhngo/spark/pkg/auth"
	"github.com/quocanhngo/spark/pkg/mailer"
	"github.com/quocanhngo/spark/pkg/notification"
	"github.com/quocanhngo/spark/pkg/storage"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Spark API
// @version         1.0
// @description     Dating match & messaging API with Go, Gin, WebSocket, Redis Pub/Sub.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@spark.local

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      api.localhost
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// ==================== Load Config ====================
	cfg := config.Load()
	logger.InitFromConfig(cfg)
	logger.Info("starting spark api server", "env", cfg.App.Env)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	clk := clock.RealClockProvider()

	// ==================== Database ====================
	db, err := database.Open(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database", "driver", cfg.DB.Driver)

	if err := database.Migrate(db, cfg); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrated successfully")

	// ==================== Redis ====================
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Error("failed to connect to redis", "addr", cfg.Redis.Addr(), "error", err)
		os.Exit(1)
	}
	logger.Info("connected to redis", "addr", cfg.Redis.Addr())

	// ==================== Rate Limiting & Presence ====================
	var counters ratelimit.CounterStore = ratelimit.NewRedisStore(rdb)
	if cfg.RateLimit.Store == "memory" {
		mem := ratelimit.NewMemoryStore(clk)
		counters = mem
		go sweepCounters(ctx, mem, cfg.Presence.Sweep)
	}
	limiter := ratelimit.New(counters, clk, ratelimit.RulesFromConfig(cfg.RateLimit))

	var presenceStore presence.Store = presence.NewRedisStore(rdb)
	if cfg.Presence.Store == "memory" {
		presenceStore = presence.NewMemoryStore()
	}
	tracker := presence.NewTracker(presenceStore, clk, cfg.Presence.TTL)
	go tracker.Run(ctx, cfg.Presence.Sweep)
	logger.Info("rate limiter and presence ready", "limiter_store", cfg.RateLimit.Store, "presence_store", cfg.Presence.Store)

	// ==================== Initialize Layers ====================
	// JWT Manager
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry).WithClock(clk)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	swipeRepo := repository.NewSwipeRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	reportRepo := repository.NewReportRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	// WebSocket Hub (with Redis Pub/Sub for horizontal scaling)
	hub := ws.NewHub(rdb, func(userID uuid.UUID, online bool) {
		if !online {
			if err := tracker.Disconnect(context.Background(), userID); err != nil {
				logger.Warn("failed to mark user offline", "user_id", userID, "error", err)
			}
		}
		logger.Debug("user connection status changed", "user_id", userID, "online", online)
	})
	go hub.Run(ctx)
	select {
	case <-hub.Ready():
		logger.Info("websocket hub ready")
	case <-time.After(5 * time.Second):
		logger.Warn("redis pub/sub not confirmed yet, hub keeps retrying")
	}
	msgr := messenger.New(hub)

	// Notifications (FCM push + SMTP email)
	var pusher notify.Pusher
	fcm, err := notification.NewNotificationService(cfg.Firebase.CredentialsFile, userRepo)
	if err != nil {
		logger.Warn("push notifications disabled", "error", err)
	} else if fcm != nil {
		pusher = fcm
	}
	mailClient := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})
	logger.Info("smtp configured", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)

	dispatcher := notify.New(pusher, mailClient, tracker, cfg.Notify.QueueSize)
	go dispatcher.Run(ctx, cfg.Notify.Workers)

	// MinIO Storage
	var photoStorage storage.Storage
	minioStorage, err := storage.NewMinIO(storage.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		PublicURL: cfg.MinIO.PublicURL,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		logger.Warn("minio not available, photo upload disabled", "error", err)
	} else {
		photoStorage = minioStorage
		logger.Info("connected to minio", "bucket", cfg.MinIO.Bucket)
	}

	// Services
	authService := service.NewAuthService(userRepo, prefRepo, jwtManager, rdb, clk)
	profileService := service.NewProfileService(userRepo, photoRepo, photoStorage, clk)
	browseService := service.NewBrowseService(userRepo, prefRepo, swipeRepo, blockRepo, clk, cfg.Browse.Limit)
	swipeService := service.NewSwipeService(userRepo, swipeRepo, matchRepo, blockRepo, limiter, msgr, dispatcher, clk)
	chatService := service.NewChatService(matchRepo, msgRepo, userRepo, limiter, msgr, dispatcher, clk)
	blockService := service.NewBlockService(userRepo, blockRepo, limiter)
	reportService := service.NewReportService(reportRepo, userRepo, limiter, clk)
	accountService := service.NewAccountService(accountRepo, userRepo, photoStorage, authService, clk)

	// ==================== Gin Router ====================
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())

	// Serve swagger.json at /docs/swagger.json to avoid conflict with /swagger/* wildcard
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")
	url := ginSwagger.URL("/docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))

	// Global middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.Origins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "spark-api",
			"time":    clk.Now().Format(time.RFC3339),
		})
	})

	// ==================== API Routes ====================
	handler.Routes(router, handler.Deps{
		JWT:         jwtManager,
		Revocations: authService,
		Auth:        handler.NewAuthHandler(authService),
		Profile:     handler.NewProfileHandler(profileService),
		Account:     handler.NewAccountHandler(accountService),
		Browse:      handler.NewBrowseHandler(browseService, swipeService),
		Match:       handler.NewMatchHandler(chatService, blockService),
		Report:      handler.NewReportHandler(reportService),
		Presence:    handler.NewPresenceHandler(tracker, clk),
		WS:          handler.NewWSHandler(hub, chatService, tracker, cfg.CORS.Origins),
	})

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("spark api running",
		"addr", "http://0.0.0.0:"+cfg.App.Port,
		"docs", "/swagger/index.html",
		"websocket", "/ws?token=<jwt>",
	)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give ongoing requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	stop()
	if err := rdb.Close(); err != nil {
		logger.Warn("failed to close redis", "error", err)
	}
	logger.Info("server exited gracefully")
}

// sweepCounters drops expired in-memory rate-limit windows
func sweepCounters(ctx context.Context, store *ratelimit.MemoryStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				logger.Debug("rate limit windows evicted", "count", n)
			}
		}
	}
}
