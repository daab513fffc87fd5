// @title           Admin Panel API
// @version         1.0
// @description     Authentication and role-based user administration.
// @BasePath        /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-panel/internal/api"
	"github.com/99minutos/admin-panel/internal/core/service"
	"github.com/99minutos/admin-panel/internal/infrastructure/bootstrap"
	mongodb "github.com/99minutos/admin-panel/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/admin-panel/internal/infrastructure/db/redis"
	"github.com/99minutos/admin-panel/internal/infrastructure/http/handlers"
	"github.com/99minutos/admin-panel/internal/infrastructure/security"
	"github.com/99minutos/admin-panel/internal/pkg/config"
	"github.com/99minutos/admin-panel/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "admin-panel",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Credential store ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "admin-panel",
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongodb.Disconnect(client, shutdownTimeout); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}

	// --- Login throttle ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	throttle := redisdb.NewLoginThrottle(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)

	// --- Security primitives ---
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens, err := security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	// --- Bootstrap ---
	seeder := bootstrap.NewSeeder(users, hasher, log)
	if _, err := seeder.EnsureSuperAdmin(ctx, bootstrap.AdminAccount{
		Email:     cfg.Bootstrap.AdminEmail,
		Password:  cfg.Bootstrap.AdminPassword,
		FirstName: cfg.Bootstrap.AdminFirstName,
		LastName:  cfg.Bootstrap.AdminLastName,
	}); err != nil {
		return err
	}
	if cfg.Bootstrap.SeedFile != "" {
		if _, err := seeder.SeedFile(ctx, cfg.Bootstrap.SeedFile); err != nil {
			return err
		}
	}

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		AuthService: service.NewAuthService(users, hasher, tokens, throttle, log),
		UserService: service.NewUserService(users, hasher, log),
		Tokens:      tokens,
		Health: handlers.NewHealthDependenciesHandler(map[string]handlers.Probe{
			"mongodb": handlers.MongoProbe(db),
			"redis":   handlers.RedisProbe(rdb),
		}),
		Logger:        log,
		EnableMetrics: true,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
