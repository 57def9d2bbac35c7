package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	specpkg "github.com/kopiteras/cafe/api"
	"github.com/kopiteras/cafe/internal/account"
	"github.com/kopiteras/cafe/internal/api"
	"github.com/kopiteras/cafe/internal/api/handler"
	"github.com/kopiteras/cafe/internal/auth"
	"github.com/kopiteras/cafe/internal/auth/oidc"
	"github.com/kopiteras/cafe/internal/cart"
	"github.com/kopiteras/cafe/internal/config"
	"github.com/kopiteras/cafe/internal/database"
	"github.com/kopiteras/cafe/internal/menu"
	"github.com/kopiteras/cafe/internal/metrics"
	"github.com/kopiteras/cafe/internal/order"
	"github.com/kopiteras/cafe/internal/wishlist"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL, cfg.PoolOptions()...)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db.Pool()); err != nil {
			slog.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
	}

	accounts := account.NewRepository(db.Pool())
	m := metrics.New()
	tokens := auth.NewTokenManager([]byte(cfg.SessionSecret), cfg.SessionIssuer, cfg.SessionTTL)
	authService := auth.NewService(accounts, tokens, cfg.BcryptCost,
		auth.WithSuperOperator(cfg.SuperOperatorEmail),
		auth.WithMetrics(m),
	)

	if cfg.SuperOperatorEmail != "" {
		slog.Warn("super-operator override enabled", "email", cfg.SuperOperatorEmail)
	}

	if _, err := authService.BootstrapAdmin(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
		slog.Error("failed to bootstrap admin account", "error", err)
		os.Exit(1)
	}

	var federated handler.FederatedProvider
	if cfg.FederatedLoginEnabled() {
		p, err := oidc.NewProvider(ctx, oidc.Config{
			Name:         "google",
			Issuer:       cfg.OIDCIssuer,
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL,
			CookieSecure: cfg.CookieSecure,
			CookiePath:   "/auth/oidc",
		})
		if err != nil {
			slog.Warn("federated login disabled", "error", err)
		} else {
			federated = p
		}
	}

	router := api.NewRouter(api.RouterDeps{
		DBPinger:      db,
		Version:       cfg.Version,
		OpenAPISpec:   specpkg.OpenAPISpec,
		AuthService:   authService,
		Federated:     federated,
		SecureCookies: cfg.CookieSecure,
		Accounts:      accounts,
		Menu:          menu.NewRepository(db.Pool()),
		Cart:          cart.NewRepository(db.Pool()),
		Wishlist:      wishlist.NewRepository(db.Pool()),
		Orders:        order.NewRepository(db.Pool()),
		Metrics:       m,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting cafe server", "port", cfg.Port, "version", cfg.Version, "federatedLogin", federated != nil)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		db.Close()
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		db.Close()
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
