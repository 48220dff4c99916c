package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/contentflow/configs"
	"github.com/maheshrc27/contentflow/internal/api/handlers"
	"github.com/maheshrc27/contentflow/internal/api/middleware"
	job "github.com/maheshrc27/contentflow/internal/jobs"
	"github.com/maheshrc27/contentflow/internal/queue"
	"github.com/maheshrc27/contentflow/internal/repository"
	"github.com/maheshrc27/contentflow/internal/service"
	"github.com/maheshrc27/contentflow/pkg/utils"
	"github.com/robfig/cron"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg == nil {
		return
	}

	appLog := newLogger(cfg.LogLevel)
	slog.SetDefault(appLog)

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	version, dirty, err := repository.RunMigrations(db)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	appLog.Info("database migrated", "version", version, "dirty", dirty)

	cipher, err := utils.NewTokenCipher([]byte(cfg.SecretKey))
	if err != nil {
		log.Fatalf("Invalid secret key: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	googleOAuth := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			"https://www.googleapis.com/auth/analytics.readonly",
			"https://www.googleapis.com/auth/business.manage",
		},
	}

	txr := repository.NewTransactor(db)
	postRepo := repository.NewContentPostRepository(db)
	postAccountRepo := repository.NewContentPostAccountRepository(db)
	connectionRepo := repository.NewPlatformConnectionRepository(db)
	resultRepo := repository.NewPublishResultRepository(db)
	metaPageRepo := repository.NewMetaPageRepository(db)
	googleRepo := repository.NewGoogleConnectionRepository(db)

	httpClient := service.NewHTTPClient(cfg.HTTPTimeout)
	publishers := service.Publishers{
		Facebook:  service.NewFacebookPublisher(cfg.MetaGraphURL, httpClient, appLog),
		Instagram: service.NewInstagramPublisher(cfg.MetaGraphURL, httpClient, cfg.IGPollInterval, cfg.IGPollAttempts, appLog),
	}

	credentialResolver := service.NewCredentialResolver(cipher, metaPageRepo, googleRepo)
	publishService := service.NewPublishService(appLog, postRepo, postAccountRepo, connectionRepo, resultRepo, credentialResolver, publishers)
	contentService := service.NewContentService(txr, postRepo, postAccountRepo, connectionRepo, resultRepo)
	connectionService := service.NewConnectionService(connectionRepo, metaPageRepo, googleRepo)
	analyticsService := service.NewAnalyticsService(appLog, googleRepo, cipher, googleOAuth)

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error(err.Error())
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(contentService, publishService, client)
	api.Post("/posts/validate", post.ValidatePost)
	api.Post("/posts", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/:id", post.GetPost)
	api.Put("/posts/:id", post.UpdatePost)
	api.Delete("/posts/:id", post.RemovePost)
	api.Post("/posts/:id/publish", post.PublishPost)

	platform := handlers.NewPlatformHandler(contentService, connectionService)
	api.Get("/platforms", platform.PlatformSpecs)
	api.Get("/connections", platform.ListConnections)
	api.Post("/connections", platform.Connect)
	api.Delete("/connections/:id", platform.Disconnect)

	storage, err := service.NewR2Storage(context.Background(), cfg.R2)
	if err != nil {
		appLog.Warn("media mirroring disabled", "error", err.Error())
	} else {
		mediaService := service.NewMediaService(appLog, storage,
			service.NewGuardedHTTPClient(cfg.HTTPTimeout, false),
			service.MediaOptions{MaxBytes: cfg.MediaMaxBytes})
		media := handlers.NewMediaHandler(mediaService)
		api.Post("/media/upload-url", media.UploadFromURL)
	}

	analytics := handlers.NewAnalyticsHandler(analyticsService)
	api.Get("/analytics/dashboard", analytics.Dashboard)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(appLog, googleRepo, cipher, googleOAuth)

	c := cron.New()
	if err := c.AddFunc(cfg.TokenRefreshSpec, refreshTokenJob.Run); err != nil {
		log.Fatalf("Invalid token refresh schedule: %v", err)
	}
	c.Start()
	defer c.Stop()

	//queue
	queueW := queue.NewQueue(appLog, publishService)
	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
	})

	go func() {
		mux := asynq.NewServeMux()
		queueW.Register(mux)

		appLog.Info("starting the asynq server")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	appLog.Info("server is running", "port", cfg.Port)

	gracefulShutdown(app, server)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, server *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	slog.Info("shutting down server")

	if err := app.Shutdown(); err != nil {
		slog.Error("failed to shut down server", "error", err.Error())
	}
	server.Shutdown()

	slog.Info("server shutdown complete")
}
