package admin

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
	openaiapi "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/loreforge/loreforge/internal/api/handlers"
	"github.com/loreforge/loreforge/internal/config"
	"github.com/loreforge/loreforge/internal/database"
	"github.com/loreforge/loreforge/internal/jobs"
	"github.com/loreforge/loreforge/internal/openai"
	"github.com/loreforge/loreforge/internal/repository"
	"github.com/loreforge/loreforge/internal/server"
	"github.com/loreforge/loreforge/internal/service"
	"github.com/loreforge/loreforge/internal/sourcetext"
	"github.com/loreforge/loreforge/internal/storage"
	"github.com/loreforge/loreforge/internal/telemetry"
	"github.com/loreforge/loreforge/internal/vectorstore"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the loreforge API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
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

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
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

	worldRepo := repository.NewWorldRepository(pool)
	conceptRepo := repository.NewConceptRepository(pool)
	pageRepo := repository.NewPageRepository(pool)
	characteristicRepo := repository.NewCharacteristicRepository(pool)
	agentRepo := repository.NewAgentRepository(pool)
	sourceRepo := repository.NewSourceRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	var store vectorstore.Store
	switch cfg.VectorStore {
	case "weaviate":
		if !cfg.HasWeaviate() {
			return fmt.Errorf("LOREFORGE_VECTOR_STORE=weaviate requires LOREFORGE_WEAVIATE_HOST")
		}
		ws, err := vectorstore.NewWeaviateStore(vectorstore.WeaviateConfig{
			Host:   cfg.WeaviateHost,
			Scheme: cfg.WeaviateScheme,
			APIKey: cfg.WeaviateAPIKey,
		})
		if err != nil {
			return fmt.Errorf("failed to create weaviate store: %w", err)
		}
		store = ws
		log.Printf("vector store: weaviate (%s)", cfg.WeaviateHost)
	case "memory":
		store = vectorstore.NewMemoryStore()
		log.Println("vector store: in-memory (volatile)")
	default:
		store = vectorstore.NewPgStore(pool)
		log.Println("vector store: pgvector")
	}

	if !cfg.HasOpenAI() {
		log.Println("warning: LOREFORGE_OPENAI_API_KEY not set; indexing and search will fail")
	}
	embedder := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      openaiapi.EmbeddingModel(cfg.OpenAIEmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	})

	var objects sourcetext.ObjectStore
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		objects = s3Client
	}
	resolver := sourcetext.NewResolver(objects)

	indexSvc := service.NewIndexService(store, embedder, pageRepo, conceptRepo, characteristicRepo, agentRepo, sourceRepo, resolver, txRunner)
	searchSvc := service.NewSearchService(store, embedder)
	crosslinkSvc := service.NewCrosslinkService(pageRepo)
	refSvc := service.NewReferenceIntegrityService(characteristicRepo)
	transferSvc := service.NewTransferService(store)

	jobStore, err := jobs.NewFileJobStore(cfg.JobDir)
	if err != nil {
		return fmt.Errorf("failed to open job store: %w", err)
	}
	orchestrator := jobs.NewOrchestrator(jobStore, cfg.JobWorkers)
	jobs.RegisterHandlers(orchestrator, indexSvc, crosslinkSvc, refSvc)
	orchestrator.Start(ctx)

	routerCfg := server.RouterConfig{
		PageHandler:     handlers.NewPageHandler(pageRepo, orchestrator, indexSvc),
		SearchHandler:   handlers.NewSearchHandler(searchSvc, worldRepo, agentRepo),
		JobsHandler:     handlers.NewJobsHandler(orchestrator, agentRepo),
		TransferHandler: handlers.NewTransferHandler(transferSvc),
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

	orchestrator.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
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
