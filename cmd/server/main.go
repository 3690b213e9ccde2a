package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/qudsystem/storybook-backend/docs"
	"github.com/qudsystem/storybook-backend/internal/assets"
	"github.com/qudsystem/storybook-backend/internal/auth"
	"github.com/qudsystem/storybook-backend/internal/config"
	"github.com/qudsystem/storybook-backend/internal/genai"
	"github.com/qudsystem/storybook-backend/internal/handlers"
	"github.com/qudsystem/storybook-backend/internal/i18n"
	"github.com/qudsystem/storybook-backend/internal/logger"
	"github.com/qudsystem/storybook-backend/internal/middleware"
	"github.com/qudsystem/storybook-backend/internal/navigation"
	"github.com/qudsystem/storybook-backend/internal/repositories"
	"github.com/qudsystem/storybook-backend/internal/services"
	"github.com/qudsystem/storybook-backend/internal/tts"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title Storybook API
// @version 1.0
// @description API for the interactive storybook app: library, rewards, store, narration and the creative playground

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Storybook API")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Load locale tables
	translator, err := i18n.New()
	if err != nil {
		logger.Logger.Fatal("Failed to load locales", zap.Error(err))
	}

	// Initialize JWT token generator
	tokenGenerator := auth.NewTokenGenerator(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)

	// Initialize the Gemini client; without an API key every generative
	// call reports itself as not configured
	genaiClient := genai.NewClient(genai.Config{
		APIKey:      cfg.Gemini.APIKey,
		TextModel:   cfg.Gemini.TextModel,
		ImageModel:  cfg.Gemini.ImageModel,
		SpeechModel: cfg.Gemini.SpeechModel,
		VideoModel:  cfg.Gemini.VideoModel,
	})
	if !genaiClient.Configured() {
		logger.Logger.Warn("GEMINI_API_KEY is not set, generative features are disabled")
	}

	// Speech chain: Gemini first, PlayHT as fallback
	speech := tts.NewChain(logger.Logger,
		tts.NewGemini(genaiClient),
		tts.NewPlayHT(cfg.PlayHT.APIKey, cfg.PlayHT.UserID),
	)

	// Asset storage for story illustrations and avatars
	var assetStore services.AvatarAssetStore
	assetStore, err = assets.NewCloudinaryStore(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.APIKey,
		cfg.Cloudinary.APISecret,
	)
	if err != nil {
		logger.Logger.Warn("Cloudinary is not configured, uploads are disabled", zap.Error(err))
		assetStore = assets.DisabledStore{}
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	bookRepo := repositories.NewBookRepository(db)

	// Periodically sweep expired refresh tokens
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := tokenRepo.DeleteExpired(cleanupCtx)
				if err != nil {
					logger.Logger.Error("Failed to delete expired refresh tokens", zap.Error(err))
					continue
				}
				if deleted > 0 {
					logger.Logger.Info("Deleted expired refresh tokens", zap.Int("count", deleted))
				}
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	// Initialize services
	clock := services.SystemClock()
	notifier := services.NewNotifier(clock)
	rewardService := services.NewRewardService(profileRepo, bookRepo, notifier, userRepo, translator, clock, logger.Logger)
	authService := services.NewAuthService(userRepo, tokenRepo, tokenGenerator, logger.Logger)
	bookService := services.NewBookService(bookRepo, rewardService, clock, logger.Logger)
	quizService := services.NewQuizService(bookRepo, genaiClient, rewardService, clock)
	storyService := services.NewStoryService(bookRepo, genaiClient, assetStore, rewardService, logger.Logger)
	profileService := services.NewProfileService(userRepo, profileRepo, assetStore, logger.Logger)
	storeService := services.NewStoreService(profileRepo, userRepo, translator, logger.Logger)
	sessions := navigation.NewManager(cfg.Session.TTL)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger.Logger)
	bookHandler := handlers.NewBookHandler(bookService, logger.Logger)
	quizHandler := handlers.NewQuizHandler(quizService, logger.Logger)
	storyHandler := handlers.NewStoryHandler(storyService, logger.Logger)
	profileHandler := handlers.NewProfileHandler(profileService, logger.Logger)
	storeHandler := handlers.NewStoreHandler(storeService, logger.Logger)
	notificationHandler := handlers.NewNotificationHandler(notifier, logger.Logger)
	sessionHandler := handlers.NewSessionHandler(sessions, logger.Logger)
	narrationHandler := handlers.NewNarrationHandler(bookService, speech, logger.Logger)
	playgroundHandler := handlers.NewPlaygroundHandler(genaiClient, logger.Logger)
	documentHandler := handlers.NewDocumentHandler(genaiClient, logger.Logger)

	// Initialize auth middleware
	authMiddleware := middleware.Auth(tokenGenerator)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger.Logger))
	r.Use(middleware.Recovery(logger.Logger))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middleware.RequestSizeLimit(25 * 1024 * 1024)) // 25MB, PDF uploads included

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		authHandler.RegisterRoutes(r)

		// Everything else requires a signed-in user
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			bookHandler.RegisterRoutes(r)
			quizHandler.RegisterRoutes(r)
			storyHandler.RegisterRoutes(r)
			profileHandler.RegisterRoutes(r)
			storeHandler.RegisterRoutes(r)
			notificationHandler.RegisterRoutes(r)
			sessionHandler.RegisterRoutes(r)
			narrationHandler.RegisterRoutes(r)
			playgroundHandler.RegisterRoutes(r)
			documentHandler.RegisterRoutes(r)
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "storybook_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
