package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ragchat/widget/internal/answer"
	"github.com/ragchat/widget/internal/api"
	"github.com/ragchat/widget/internal/config"
	"github.com/ragchat/widget/internal/index"
	"github.com/ragchat/widget/internal/ingest"
	"github.com/ragchat/widget/internal/logging"
	"github.com/ragchat/widget/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "ragchat-server",
	Short: "Document chat backend for the ragchat widget",
	Long: `Serves the /chat and /upload endpoints used by the ragchat widget.

Uploaded .txt, .md and .pdf documents are stored, split into chunks and
indexed in DuckDB; chat questions are answered from the best matching chunks.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "ragchat.yaml", "path to the YAML configuration file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Advanced.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level, "")
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	chunkIndex, err := index.Open(cfg.Storage.IndexPath, index.Options{
		Threads:     cfg.Advanced.DuckDBThreads,
		MemoryLimit: cfg.Advanced.DuckDBMemoryLimit,
	}, logger.Named("index"))
	if err != nil {
		return fmt.Errorf("failed to open chunk index: %w", err)
	}
	defer chunkIndex.Close()

	ingestMgr := ingest.NewManager(fileStore, chunkIndex, cfg.Retrieval.ChunkSize, logger.Named("ingest"))

	// Start background job cleanup
	cleanupEvery := time.Duration(cfg.Retrieval.CleanupIntervalMinutes) * time.Minute
	if cleanupEvery <= 0 {
		cleanupEvery = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(cleanupEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := ingestMgr.CleanupOldJobs(time.Duration(cfg.Retrieval.JobRetentionMinutes) * time.Minute); n > 0 {
					logger.Debug("cleaned up ingest jobs", zap.Int("removed", n))
				}
			}
		}
	}()

	answerer, err := newAnswerer(cfg, chunkIndex, logger)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, api.MiddlewareOptions{
		RequestLogging: cfg.Advanced.EnableRequestLogging,
		BodyLimit:      cfg.Server.BodyLimit,
		EnableCORS:     cfg.Server.EnableCORS,
		AllowOrigins:   cfg.Server.AllowOrigins,
	}, logger.Named("http"))

	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Store:    fileStore,
		Index:    chunkIndex,
		Ingester: ingestMgr,
		Answerer: answerer,
		Version:  Version,
		Logger:   logger,
	}))

	// Configure server with settings from the YAML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	printBanner(cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.StartServer(s)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newAnswerer picks the chat model backend when an OpenAI key is configured
// and falls back to quoting the retrieved chunks.
func newAnswerer(cfg *config.AppConfig, search answer.Searcher, logger *zap.Logger) (api.Answerer, error) {
	if cfg.Retrieval.OpenAIAPIKey == "" {
		logger.Info("no OpenAI API key configured, replies quote the documents")
		return answer.New(search, cfg.Retrieval.TopK, logger.Named("answer")), nil
	}

	gen, err := answer.NewGenerator(search, answer.GeneratorOptions{
		APIKey:       cfg.Retrieval.OpenAIAPIKey,
		BaseURL:      cfg.Retrieval.OpenAIBaseURL,
		Model:        cfg.Retrieval.ChatModel,
		SystemPrompt: cfg.Retrieval.SystemPrompt,
		TopK:         cfg.Retrieval.TopK,
		MaxRetries:   cfg.Retrieval.OpenAIMaxRetries,
	}, logger.Named("answer"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat model: %w", err)
	}
	logger.Info("replies generated by chat model", zap.String("model", cfg.Retrieval.ChatModel))
	return gen, nil
}

func printBanner(cfg *config.AppConfig) {
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           ragchat Server                                  ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("║  Index:     %-46s║\n", cfg.Storage.IndexPath)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
}
