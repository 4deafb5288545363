package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/routergate/internal/adapter/driven/credcipher"
	"github.com/ericfisherdev/routergate/internal/adapter/driven/jwtauth"
	"github.com/ericfisherdev/routergate/internal/adapter/driven/smtpmail"
	sqliteadapter "github.com/ericfisherdev/routergate/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/routergate/internal/adapter/driven/vendor"
	httphandler "github.com/ericfisherdev/routergate/internal/adapter/driving/http"
	"github.com/ericfisherdev/routergate/internal/application"
	"github.com/ericfisherdev/routergate/internal/clock"
	"github.com/ericfisherdev/routergate/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid values).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"proxy_timeout", cfg.ProxyTimeout,
		"session_ttl", cfg.SessionTTL,
	)
	if cfg.UsesDefaultEncryptionKey() {
		logger.Warn("ROUTERGATE_ENCRYPTION_KEY is not set; stored secrets are sealed with the public development key")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	logger.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		return err
	}
	logger.Info("migrations complete", "version", version)

	// 5. Wire driven adapters.
	cipher, err := credcipher.New(cfg.EncryptionKey, logger)
	if err != nil {
		return err
	}
	userStore := sqliteadapter.NewUserRepo(db)
	settingsStore := sqliteadapter.NewSettingsRepo(db, cipher)
	tokenStore := sqliteadapter.NewResetTokenRepo(db)
	mailer := smtpmail.NewMailer(logger)
	registry := vendor.NewRegistry(vendor.WithTimeout(cfg.ProxyTimeout), vendor.WithLogger(logger))

	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		jwtSecret, err = randomSecret()
		if err != nil {
			return err
		}
		logger.Warn("ROUTERGATE_JWT_SECRET is not set; sessions will not survive a restart")
	}
	sessions, err := jwtauth.NewIssuer(jwtSecret, cfg.SessionTTL, clock.Real())
	if err != nil {
		return err
	}

	// 6. Create application services.
	tokens := application.NewResetTokenManager(tokenStore, clock.Real(), logger)
	accounts := application.NewAccountService(userStore, tokens, settingsStore, mailer, sessions, cfg.ResetBaseURL, logger)
	settings := application.NewSettingsService(settingsStore, mailer, logger)
	gateway := application.NewProxyGateway(registry, logger)

	// 7. Seed the first account on an empty database.
	if err := seedAdmin(ctx, accounts, cfg, logger); err != nil {
		return err
	}

	// 8. Create HTTP handler and register API routes.
	handler := httphandler.NewServeMux(httphandler.NewHandler(accounts, settings, gateway, logger), logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.ProxyTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	logger.Info("routergate started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	logger.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout for in-flight proxy calls.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func seedAdmin(ctx context.Context, accounts *application.AccountService, cfg *config.Config, logger *slog.Logger) error {
	if cfg.AdminPassword == "" {
		users, err := accounts.ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("check users: %w", err)
		}
		if len(users) == 0 {
			logger.Warn("no user accounts exist; set ROUTERGATE_ADMIN_EMAIL and ROUTERGATE_ADMIN_PASSWORD to create one")
		}
		return nil
	}

	created, err := accounts.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		logger.Info("initial admin account created", "email", cfg.AdminEmail)
	}
	return nil
}

func randomSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	return b, nil
}
