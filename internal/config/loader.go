package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WIZARD"

// Loader handles Viper-based configuration loading.
type Loader struct {
	v       *viper.Viper
	envFile string
}

// NewLoader creates a Loader with defaults and environment bindings applied.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return &Loader{v: v, envFile: ".env"}
}

// WithEnvFile changes the dotenv file read before loading. Empty disables it.
func (l *Loader) WithEnvFile(path string) *Loader {
	l.envFile = path
	return l
}

// Load reads ./wizard.yaml when present and falls back to defaults otherwise.
func (l *Loader) Load() (*Config, error) {
	if err := l.loadEnvFile(); err != nil {
		return nil, err
	}
	l.v.SetConfigName("wizard")
	l.v.SetConfigType("yaml")
	l.v.AddConfigPath(".")
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return l.unmarshal()
}

// LoadFromFile reads the given YAML file. A missing file is an error.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	if err := l.loadEnvFile(); err != nil {
		return nil, err
	}
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return l.unmarshal()
}

// Viper exposes the underlying instance so commands can bind flags.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// loadEnvFile reads the dotenv file. A missing file is not an error.
func (l *Loader) loadEnvFile() error {
	if l.envFile == "" {
		return nil
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error reading env file %s: %w", l.envFile, err)
	}
	return nil
}

func (l *Loader) unmarshal() (*Config, error) {
	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if c.Store.RedisURL == "" {
			return errors.New("store.redis_url is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}
	switch c.Output.Format {
	case "docx", "markdown":
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("table", d.Table)
	v.SetDefault("defaults", d.Defaults)
	v.SetDefault("entry_step", d.EntryStep)
	v.SetDefault("watch", d.Watch)
	v.SetDefault("max_answer_size", d.MaxAnswerSize)

	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.top_p", d.LLM.TopP)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_attempts", d.LLM.MaxAttempts)
	v.SetDefault("llm.concurrency", d.LLM.Concurrency)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("store.kind", d.Store.Kind)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.redis_url", "")
	v.SetDefault("store.ttl", d.Store.TTL)
	v.SetDefault("store.encryption_key", "")
	v.SetDefault("store.fallback_keys", []string{})

	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.format", d.Output.Format)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}
