// Package config provides YAML-based configuration for the widget and its backend.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig represents the root configuration structure
type AppConfig struct {
	// Widget (terminal client) configuration
	Client ClientConfig `yaml:"client"`

	// Backend HTTP server configuration
	Server ServerConfig `yaml:"server"`

	// Document storage configuration
	Storage StorageConfig `yaml:"storage"`

	// Retrieval configuration
	Retrieval RetrievalConfig `yaml:"retrieval"`

	// Advanced options
	Advanced AdvancedConfig `yaml:"advanced"`
}

// ClientConfig contains widget settings
type ClientConfig struct {
	ServerURL            string   `yaml:"server_url"`
	ChatTimeoutSeconds   int      `yaml:"chat_timeout_seconds"`
	UploadTimeoutSeconds int      `yaml:"upload_timeout_seconds"`
	Suggestions          []string `yaml:"suggestions"`
	SidebarBreakpoint    int      `yaml:"sidebar_breakpoint"` // columns below which the sidebar starts hidden
	RenderMarkdown       bool     `yaml:"render_markdown"`
	LogFile              string   `yaml:"log_file"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bind_address"`
	EnableCORS   bool   `yaml:"enable_cors"`
	AllowOrigins string `yaml:"allow_origins"`
	ReadTimeout  int    `yaml:"read_timeout_seconds"`
	WriteTimeout int    `yaml:"write_timeout_seconds"`
	IdleTimeout  int    `yaml:"idle_timeout_seconds"`
	BodyLimit    string `yaml:"body_limit"`
}

// StorageConfig contains document storage settings
type StorageConfig struct {
	DataDirectory    string `yaml:"data_directory"`
	UploadsDirectory string `yaml:"uploads_directory"`
	IndexPath        string `yaml:"index_path"`
}

// RetrievalConfig contains chunking and search settings
type RetrievalConfig struct {
	ChunkSize              int `yaml:"chunk_size"`
	TopK                   int `yaml:"top_k"`
	JobRetentionMinutes    int `yaml:"job_retention_minutes"`
	CleanupIntervalMinutes int `yaml:"cleanup_interval_minutes"`

	// Replies are generated by a chat model when a key is set, otherwise
	// they are quoted from the retrieved chunks.
	OpenAIAPIKey     string `yaml:"openai_api_key"`
	OpenAIBaseURL    string `yaml:"openai_base_url"`
	ChatModel        string `yaml:"chat_model"`
	SystemPrompt     string `yaml:"system_prompt"`
	OpenAIMaxRetries int    `yaml:"openai_max_retries"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `yaml:"log_level"`
	EnableRequestLogging bool   `yaml:"enable_request_logging"`
	DuckDBThreads        int    `yaml:"duckdb_threads"`
	DuckDBMemoryLimit    string `yaml:"duckdb_memory_limit"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Client: ClientConfig{
			ServerURL:            "http://localhost:8089",
			ChatTimeoutSeconds:   60,
			UploadTimeoutSeconds: 300,
			Suggestions: []string{
				"What can you do?",
				"Who made you?",
				"Summarize my documents",
			},
			SidebarBreakpoint: 100,
			RenderMarkdown:    true,
		},
		Server: ServerConfig{
			Port:         8089,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  60,
			WriteTimeout: 60,
			IdleTimeout:  120,
			BodyLimit:    "64M",
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			UploadsDirectory: "./data/uploads",
			IndexPath:        "./data/index.duckdb",
		},
		Retrieval: RetrievalConfig{
			ChunkSize:              1000,
			TopK:                   3,
			JobRetentionMinutes:    60,
			CleanupIntervalMinutes: 5,
			ChatModel:              "gpt-4o-mini",
			OpenAIMaxRetries:       2,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
			DuckDBThreads:        4,
			DuckDBMemoryLimit:    "1GB",
		},
	}
}

// LoadConfig loads configuration from a YAML file, writing the defaults
// there first if the file does not exist.
func LoadConfig(configPath string) (*AppConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Missing keys keep their defaults
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# ragchat configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
		c.Storage.UploadsDirectory = filepath.Join(dataDir, "uploads")
		c.Storage.IndexPath = filepath.Join(dataDir, "index.duckdb")
	}

	if serverURL := os.Getenv("RAGCHAT_SERVER_URL"); serverURL != "" {
		c.Client.ServerURL = serverURL
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Retrieval.OpenAIAPIKey = key
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		c.Retrieval.OpenAIBaseURL = baseURL
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
	resolve(&c.Storage.DataDirectory)
	resolve(&c.Storage.UploadsDirectory)
	resolve(&c.Storage.IndexPath)
	resolve(&c.Client.LogFile)
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetUploadDir returns the absolute uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// ChatTimeout returns the per-request chat deadline.
func (c *AppConfig) ChatTimeout() time.Duration {
	return time.Duration(c.Client.ChatTimeoutSeconds) * time.Second
}

// UploadTimeout returns the per-request upload deadline.
func (c *AppConfig) UploadTimeout() time.Duration {
	return time.Duration(c.Client.UploadTimeoutSeconds) * time.Second
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
		filepath.Dir(c.Storage.IndexPath),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
