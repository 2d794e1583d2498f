// Package config loads the wizard configuration.
//
// Configuration is loaded using Viper from a YAML file and environment
// variables. A .env file in the working directory is read first so that
// secrets such as GROQ_API_KEY can live outside the shell profile.
//
// Priority (highest to lowest):
//  1. Environment variables (WIZARD_ prefix, "." replaced by "_")
//  2. GROQ_API_KEY for llm.api_key
//  3. Config file given to LoadFromFile, or ./wizard.yaml
//  4. [DefaultConfig] defaults
package config

import (
	"time"

	"github.com/aibee/wizard/internal/sanitize"
	"github.com/aibee/wizard/pkg/domain"
	"github.com/aibee/wizard/pkg/llm"
)

// Config is the root configuration container.
type Config struct {
	// Table is the path of the transition table (line format or YAML).
	Table string `mapstructure:"table"`

	// Defaults is the path of the default-value side table used by @name markers.
	Defaults string `mapstructure:"defaults"`

	// EntryStep is the step every new session starts at.
	EntryStep string `mapstructure:"entry_step"`

	// Watch reloads the table when the file changes.
	Watch bool `mapstructure:"watch"`

	// MaxAnswerSize bounds each free-text answer in bytes.
	MaxAnswerSize int `mapstructure:"max_answer_size"`

	LLM    LLMConfig    `mapstructure:"llm"`
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Output OutputConfig `mapstructure:"output"`
	Log    LogConfig    `mapstructure:"log"`
}

// LLMConfig configures the prompt runner.
type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	TopP        float64       `mapstructure:"top_p"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`

	// Concurrency > 1 runs the prompt actions of a step in parallel.
	Concurrency int `mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig selects the session store.
type StoreConfig struct {
	// Kind is one of memory, file or redis.
	Kind     string        `mapstructure:"kind"`
	Path     string        `mapstructure:"path"`
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`

	// EncryptionKey is a base64 AES-256 key. When set, sessions are sealed
	// before they reach the store.
	EncryptionKey string `mapstructure:"encryption_key"`
	// FallbackKeys are retired keys still accepted for decryption.
	FallbackKeys []string `mapstructure:"fallback_keys"`
}

// OutputConfig configures document output.
type OutputConfig struct {
	// Path is where the CLI writes rendered documents.
	Path string `mapstructure:"path"`
	// Format is docx or markdown.
	Format string `mapstructure:"format"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// DefaultConfig returns a configuration that works out of the box with a
// local transition table and in-memory sessions.
func DefaultConfig() *Config {
	llmDefaults := llm.DefaultConfig()
	return &Config{
		Table:         "steps.txt",
		Defaults:      "prompts_with_json.json",
		EntryStep:     domain.DefaultEntryStep,
		MaxAnswerSize: sanitize.DefaultMaxInputSize,
		LLM: LLMConfig{
			BaseURL:     llmDefaults.BaseURL,
			Model:       llmDefaults.Model,
			Temperature: llmDefaults.Temperature,
			TopP:        llmDefaults.TopP,
			MaxTokens:   llmDefaults.MaxTokens,
			Timeout:     llmDefaults.Timeout,
			MaxAttempts: llm.DefaultRetryConfig().MaxAttempts,
			Concurrency: 1,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Kind: StoreMemory,
			Path: ".wizard/sessions",
		},
		Output: OutputConfig{
			Path:   "PC1_Report.docx",
			Format: "docx",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LLMRunnerConfig converts the section into the client configuration.
func (c LLMConfig) LLMRunnerConfig() llm.Config {
	return llm.Config{
		BaseURL:     c.BaseURL,
		APIKey:      c.APIKey,
		Model:       c.Model,
		Temperature: c.Temperature,
		TopP:        c.TopP,
		MaxTokens:   c.MaxTokens,
		Timeout:     c.Timeout,
	}
}

// RetryConfig returns the retry policy with the configured attempt count.
func (c LLMConfig) RetryConfig() llm.RetryConfig {
	rc := llm.DefaultRetryConfig()
	if c.MaxAttempts > 0 {
		rc.MaxAttempts = c.MaxAttempts
	}
	return rc
}
