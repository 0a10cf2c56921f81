package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/userauth/internal/config"
	"github.com/example/userauth/internal/database"
	"github.com/example/userauth/internal/handlers"
	"github.com/example/userauth/internal/logging"
	"github.com/example/userauth/internal/repository"
	"github.com/example/userauth/internal/routes"
	"github.com/example/userauth/internal/services"
	"github.com/example/userauth/internal/utils"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)
	ctx := context.Background()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("close postgres", "error", err)
		}
	}()

	var denylist services.TokenDenylist = services.NewMemoryDenylist()
	if cfg.RedisURL != "" {
		cache, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				log.Warn("close redis", "error", err)
			}
		}()
		denylist = services.NewRedisDenylist(cache)
	}

	tokens, err := utils.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		log.Error("build token issuer", "error", err)
		os.Exit(1)
	}

	var notifier services.ResetNotifier
	if cfg.Mail.Enabled() {
		notifier = services.NewSMTPMailer(cfg.Mail)
	} else {
		log.Warn("EMAIL_USER not set, reset links are logged instead of mailed")
		notifier = services.NewLogMailer(log)
	}

	store, uploadDir, err := avatarStore(ctx, cfg)
	if err != nil {
		log.Error("build avatar store", "error", err)
		os.Exit(1)
	}

	repo := repository.NewGormUserRepository(db)
	validator := utils.NewValidator()

	authService := services.NewAuthService(repo, tokens, notifier, denylist, validator, log, services.AuthOptions{
		SessionTTL:  cfg.SessionTTL,
		ResetTTL:    cfg.ResetTTL,
		FrontendURL: cfg.FrontendURL,
	})
	profileService := services.NewProfileService(repo, store, validator, log, cfg.Avatar.MaxBytes)

	app := fiber.New(fiber.Config{
		AppName:      "User Auth Backend",
		ErrorHandler: handlers.ErrorHandler(log),
		BodyLimit:    int(cfg.Avatar.MaxBytes) + 1<<20,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	routes.Register(app, routes.Deps{
		Port:      cfg.AppPort,
		Auth:      authService,
		Profile:   profileService,
		UploadDir: uploadDir,
	})

	srvErrCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.Address())
		srvErrCh <- app.Listen(cfg.Address())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server exited cleanly")
}

// avatarStore returns the configured store and, for local storage, the
// directory to serve statically.
func avatarStore(ctx context.Context, cfg *config.Config) (services.AvatarStore, string, error) {
	if cfg.Avatar.Storage == config.StorageS3 {
		store, err := services.NewS3AvatarStore(ctx, cfg.Avatar)
		return store, "", err
	}
	local := services.NewLocalAvatarStore(cfg.Avatar.UploadDir, cfg.PublicURL)
	return local, local.Dir(), nil
}
