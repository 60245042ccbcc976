package cli

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

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/mindvault-app/mindvault/internal/ai"
	"github.com/mindvault-app/mindvault/internal/api/handlers"
	"github.com/mindvault-app/mindvault/internal/config"
	"github.com/mindvault-app/mindvault/internal/database"
	"github.com/mindvault-app/mindvault/internal/ratelimit"
	"github.com/mindvault-app/mindvault/internal/repository"
	"github.com/mindvault-app/mindvault/internal/server"
	"github.com/mindvault-app/mindvault/internal/service"
	"github.com/mindvault-app/mindvault/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the mindvault API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	var modelClient service.ModelClient
	if cfg.HasAI() {
		switch cfg.AIProvider {
		case config.ProviderOpenAI:
			adapter, err := ai.NewOpenAIAdapter(cfg.OpenAIAPIKey)
			if err != nil {
				return fmt.Errorf("failed to create OpenAI client: %w", err)
			}
			modelClient = ai.NewClient(adapter, adapter)
		default:
			adapter, err := ai.NewGeminiAdapter(ctx, cfg.GeminiAPIKey)
			if err != nil {
				return fmt.Errorf("failed to create Gemini client: %w", err)
			}
			modelClient = ai.NewClient(adapter, adapter)
		}
		log.Printf("AI provider: %s", cfg.AIProvider)
	} else {
		modelClient = &noOpModelClient{}
		log.Println("no AI provider configured: enrichment and query answering disabled")
	}

	knowledgeRepo := repository.NewKnowledgeRepository(pool)
	enrichmentSvc := service.NewEnrichmentService(modelClient)
	knowledgeSvc := service.NewKnowledgeService(knowledgeRepo, enrichmentSvc, nil)
	querySvc := service.NewQueryService(knowledgeRepo, enrichmentSvc, nil)

	metrics := telemetry.NewMetrics()

	routerCfg := server.RouterConfig{
		KnowledgeHandler: handlers.NewKnowledgeHandler(knowledgeSvc),
		AIHandler:        handlers.NewAIHandler(querySvc, enrichmentSvc, metrics),
		Limiter:          ratelimit.NewLimiter(),
		Metrics:          metrics,
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.NewRouter(routerCfg),
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

type noOpModelClient struct{}

func (c *noOpModelClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("AI provider not configured: API key required")
}

func (c *noOpModelClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("AI provider not configured: API key required")
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
