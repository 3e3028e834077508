package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/apsfd-portal/internal/api"
	"github.com/ashureev/apsfd-portal/internal/config"
	"github.com/ashureev/apsfd-portal/internal/domain"
	"github.com/ashureev/apsfd-portal/internal/gateway"
	"github.com/ashureev/apsfd-portal/internal/health"
	"github.com/ashureev/apsfd-portal/internal/identity"
	"github.com/ashureev/apsfd-portal/internal/live"
	"github.com/ashureev/apsfd-portal/internal/middleware"
	"github.com/ashureev/apsfd-portal/internal/session"
	"github.com/ashureev/apsfd-portal/internal/store"
	"github.com/ashureev/apsfd-portal/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout     = 10 * time.Second
	healthProbeInterval = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portal HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return err
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		return err
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := repo.Ping(ctx); err != nil {
		slog.Error("Database health check failed", "error", err)
		return err
	}
	seeded, err := repo.SeedModules(ctx, domain.DefaultCatalog())
	if err != nil {
		slog.Error("Failed to seed training catalog", "error", err)
		return err
	}
	slog.Info("Database connected", "modules_seeded", seeded)

	// Initialize services.
	gw := gateway.New(gateway.Endpoints{
		Auth:        cfg.Webhooks.Auth,
		ChatGeneral: cfg.Webhooks.ChatGeneral,
		ChatCEI:     cfg.Webhooks.ChatCEI,
		Upload:      cfg.Webhooks.Upload,
	}, cfg.Webhooks.Timeout)
	hub := live.NewHub(slog.Default())
	sessions := session.NewStore(gw, gw, repo,
		session.WithNotifier(hub),
		session.WithUploadNoticeTTL(cfg.Upload.NoticeTTL),
		session.WithUploadQueueLimit(cfg.Upload.MaxQueueBytes),
	)
	codec := identity.NewCodec(cfg.Session.Secret)

	// Setup router.
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(identity.Middleware(codec, sessions))

	api.NewHealthHandler(repo, sessions).RegisterHealth(r)
	api.NewHandler(sessions, gw, hub, codec, cfg).RegisterRoutes(r)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// Chat sends block until the webhook answers, so no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	var healthLis net.Listener
	if cfg.GRPCHealthPort != "" {
		healthLis, err = net.Listen("tcp", ":"+cfg.GRPCHealthPort)
		if err != nil {
			slog.Error("Failed to listen for gRPC health", "error", err)
			return fmt.Errorf("listen grpc health: %w", err)
		}
	}

	reaperDone := sessions.StartReaper(ctx, cfg.Session.IdleTTL, cfg.Session.SweepInterval, nil)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if healthLis != nil {
		hs := health.NewServer(repo, slog.Default())
		g.Go(func() error {
			return hs.Serve(gctx, healthLis, healthProbeInterval)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	stop()
	<-reaperDone

	if err != nil {
		slog.Error("Server stopped with error", "error", err)
		return err
	}
	slog.Info("Server stopped successfully")
	return nil
}
