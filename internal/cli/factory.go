// Package cli holds the wiring shared by the wizard commands: building an
// engine from configuration and driving a session from a terminal.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aibee/wizard"
	"github.com/aibee/wizard/internal/config"
	"github.com/aibee/wizard/pkg/adapters/file"
	"github.com/aibee/wizard/pkg/adapters/memory"
	"github.com/aibee/wizard/pkg/adapters/redis"
	"github.com/aibee/wizard/pkg/llm"
	"github.com/aibee/wizard/pkg/observability"
	"github.com/aibee/wizard/pkg/persistence/middleware"
	"github.com/aibee/wizard/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// LockPrefix namespaces the distributed session locks in redis; the locker appends "lock:<session>".
const LockPrefix = "wizard:"

// Stores bundles a session store with its optional locker and cleanup.
type Stores struct {
	Store  ports.SessionStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases connections held by the store.
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// NewStores creates the session store selected by cfg, sealed with the
// configured encryption key when there is one.
func NewStores(cfg config.StoreConfig) (*Stores, error) {
	stores, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.EncryptionKey == "" {
		return stores, nil
	}

	mw, err := encryptionMiddleware(cfg)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}
	stores.Store = middleware.Chain(stores.Store, mw)
	return stores, nil
}

func encryptionMiddleware(cfg config.StoreConfig) (middleware.Middleware, error) {
	active, err := middleware.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, encoded := range cfg.FallbackKeys {
		key, err := middleware.ParseKey(encoded)
		if err != nil {
			return nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return middleware.NewEncryptionMiddleware(enc)
}

func newBackend(cfg config.StoreConfig) (*Stores, error) {
	switch cfg.Kind {
	case config.StoreMemory, "":
		return &Stores{Store: memory.NewStore()}, nil
	case config.StoreFile:
		return &Stores{Store: file.NewStore(cfg.Path)}, nil
	case config.StoreRedis:
		opts, err := backend.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client := backend.NewClient(opts)
		return &Stores{
			Store:  redis.NewFromClient(client, redis.WithTTL(cfg.TTL)),
			Locker: redis.NewLocker(client, LockPrefix),
			close:  client.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}

// NewPromptRunner creates the completion client. Without an API key prompts
// are skipped and their fields stay unset.
func NewPromptRunner(cfg config.LLMConfig, logger *slog.Logger, onDelta func(string)) ports.PromptRunner {
	if cfg.APIKey == "" {
		logger.Warn("No LLM API key configured, prompt actions will be skipped")
		return nil
	}
	opts := []llm.Option{
		llm.WithLogger(logger),
		llm.WithRetryConfig(cfg.RetryConfig()),
	}
	if onDelta != nil {
		opts = append(opts, llm.WithDeltaHandler(onDelta))
	}
	return llm.New(cfg.LLMRunnerConfig(), opts...)
}

// EngineOptions tunes NewEngine for a particular command.
type EngineOptions struct {
	Metrics *observability.Metrics
	OnDelta func(string)
	Extra   []wizard.Option
}

// NewEngine builds a wizard Engine from configuration. The returned Stores
// must be closed by the caller.
func NewEngine(cfg *config.Config, logger *slog.Logger, eo EngineOptions) (*wizard.Engine, *Stores, error) {
	if _, err := os.Stat(cfg.Table); err != nil {
		return nil, nil, fmt.Errorf("transition table not found: %w", err)
	}

	defaults, err := wizard.LoadDefaults(cfg.Defaults)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	stores, err := NewStores(cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	hooks := observability.Aggregate(observability.LoggingHooks(logger))
	if eo.Metrics != nil {
		hooks = observability.Aggregate(hooks, eo.Metrics.Hooks())
	}

	opts := []wizard.Option{
		wizard.WithLogger(logger),
		wizard.WithStore(stores.Store),
		wizard.WithDefaults(defaults),
		wizard.WithEntryStep(cfg.EntryStep),
		wizard.WithConcurrentPrompts(cfg.LLM.Concurrency),
		wizard.WithMaxAnswerSize(cfg.MaxAnswerSize),
		wizard.WithLifecycleHooks(hooks),
	}
	if stores.Locker != nil {
		opts = append(opts, wizard.WithLocker(stores.Locker))
	}
	if runner := NewPromptRunner(cfg.LLM, logger, eo.OnDelta); runner != nil {
		opts = append(opts, wizard.WithPromptRunner(runner))
	}
	opts = append(opts, eo.Extra...)

	engine, err := wizard.New(cfg.Table, opts...)
	if err != nil {
		_ = stores.Close()
		return nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, stores, nil
}
