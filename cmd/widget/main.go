package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ragchat/widget/internal/chatclient"
	"github.com/ragchat/widget/internal/config"
	"github.com/ragchat/widget/internal/logging"
	"github.com/ragchat/widget/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	serverURL  string
	logFile    string
	verbose    bool
	noMarkdown bool
)

var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Chat with your documents from the terminal",
	Long: `ragchat is a terminal chat widget for a document question-answering backend.

Type a question and press enter. Paste file paths (or drag files onto the
terminal) to upload .txt, .md and .pdf documents, or press ctrl+o to browse.
ctrl+b shows or hides the file list.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "ragchat.yaml", "path to the YAML configuration file")
	rootCmd.Flags().StringVarP(&serverURL, "server", "s", "", "backend URL (overrides client.server_url)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file (overrides client.log_file)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&noMarkdown, "no-markdown", false, "show bot replies as plain text")
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
	if serverURL != "" {
		cfg.Client.ServerURL = serverURL
	}
	if logFile != "" {
		cfg.Client.LogFile = logFile
	}
	if noMarkdown {
		cfg.Client.RenderMarkdown = false
	}

	level := cfg.Advanced.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.ForTerminalUI(level, cfg.Client.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("starting widget",
		zap.String("server", cfg.Client.ServerURL),
		zap.Duration("chat_timeout", cfg.ChatTimeout()),
		zap.Duration("upload_timeout", cfg.UploadTimeout()))

	client := chatclient.New(cfg.Client.ServerURL)
	model := tui.New(ctx, tui.Options{
		Chat:              client,
		Upload:            client,
		ChatTimeout:       cfg.ChatTimeout(),
		UploadTimeout:     cfg.UploadTimeout(),
		Title:             "ragchat · " + cfg.Client.ServerURL,
		Suggestions:       cfg.Client.Suggestions,
		SidebarBreakpoint: cfg.Client.SidebarBreakpoint,
		RenderMarkdown:    cfg.Client.RenderMarkdown,
		Logger:            logger,
	})

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("running widget: %w", err)
	}
	return nil
}
