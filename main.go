package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dms/internal/config"
	"dms/internal/handlers"
	"dms/internal/logger"
	"dms/internal/middleware"
	"dms/internal/repositories"
	"dms/internal/services"
	"dms/internal/store"
	"dms/pkg/password"
	"dms/pkg/rabbitmq"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dms",
		Short:        "Document and identity directory service",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "run schema migrations before serving")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.Logger())
			defer log.Sync()

			st, err := store.Open(cfg.Store(), log)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}
			log.Info("schema migrated", zap.String("driver", cfg.DatabaseDriver))
			return nil
		},
	}
}

func serve(ctx context.Context, cfg config.Config, migrate bool) error {
	log := logger.New(cfg.Logger())
	defer log.Sync()

	// --- Store ---
	st, err := store.Open(cfg.Store(), log)
	if err != nil {
		return err
	}
	defer st.Close()
	if migrate {
		if err := st.Migrate(ctx); err != nil {
			return err
		}
	}

	// --- Events ---
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		publisher, err := rabbitmq.Dial(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.EventsExchange}, log.Named("rabbitmq"))
		if err != nil {
			return err
		}
		defer publisher.Close()
		events = publisher
	} else {
		log.Info("RABBITMQ_URL is empty, domain events are disabled")
	}

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app, err := newApp(appDeps{
		store:    st,
		cfg:      cfg,
		log:      log,
		events:   events,
		registry: registry,
	})
	if err != nil {
		return err
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", cfg.Port), zap.String("env", cfg.Env))
		serverErr <- app.Listen(cfg.Port)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server gracefully stopped")
	return nil
}

type appDeps struct {
	store    *store.Store
	cfg      config.Config
	log      *zap.Logger
	events   services.EventPublisher
	registry *prometheus.Registry
}

// newApp wires repositories, services and handlers into a Fiber app.
func newApp(d appDeps) (*fiber.App, error) {
	if d.log == nil {
		d.log = zap.NewNop()
	}
	if d.registry == nil {
		d.registry = prometheus.NewRegistry()
	}

	sqlDB, err := d.store.SQL()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if err := d.registry.Register(collectors.NewDBStatsCollector(sqlDB, "dms")); err != nil {
		return nil, fmt.Errorf("register db stats collector: %w", err)
	}
	metrics, err := middleware.NewMetrics(d.registry)
	if err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}

	// --- Repositories ---
	profileRepo := repositories.NewGORMProfileRepository(d.store)
	loginRepo := repositories.NewGORMLoginRepository(d.store)
	documentRepo := repositories.NewGORMDocumentRepository(d.store)

	// --- Services ---
	hasher := password.NewBcrypt(d.cfg.BcryptCost)
	profileService := services.NewProfileService(d.store, profileRepo, loginRepo, documentRepo, hasher, d.events, d.log)
	documentService := services.NewDocumentService(d.store, documentRepo, profileRepo, d.events, d.log)
	searchService := services.NewSearchService(profileRepo, documentRepo, d.log)

	app := fiber.New(fiber.Config{
		AppName:               "dms",
		DisableStartupMessage: true,
	})
	app.Use(middleware.RequestLogger(d.log), metrics.Handler())

	apiV1 := app.Group("/api/v1")
	handlers.NewProfileHandler(profileService, d.log).RegisterRoutes(apiV1)
	handlers.NewDocumentHandler(documentService, d.log).RegisterRoutes(apiV1)
	handlers.NewSearchHandler(searchService, d.log).RegisterRoutes(apiV1)

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		eventsStatus := "disabled"
		if d.events != nil {
			eventsStatus = "enabled"
		}
		if err := d.store.Ping(ctx); err != nil {
			d.log.Error("health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "unreachable",
				"events":   eventsStatus,
			})
		}
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "connected",
			"events":   eventsStatus,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{})))

	return app, nil
}
