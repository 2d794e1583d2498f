package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aibee/wizard/internal/config"
	"github.com/aibee/wizard/internal/logging"
	"github.com/aibee/wizard/pkg/adapters/file"
	"github.com/aibee/wizard/pkg/adapters/memory"
	"github.com/aibee/wizard/pkg/adapters/redis"
	"github.com/aibee/wizard/pkg/domain"
	"github.com/aibee/wizard/pkg/observability"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStores(t *testing.T) {
	s, err := NewStores(config.StoreConfig{Kind: config.StoreMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, s.Store)
	assert.Nil(t, s.Locker)
	assert.NoError(t, s.Close())

	s, err = NewStores(config.StoreConfig{Kind: config.StoreFile, Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &file.Store{}, s.Store)

	mr := miniredis.RunT(t)
	s, err = NewStores(config.StoreConfig{Kind: config.StoreRedis, RedisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &redis.Store{}, s.Store)
	assert.IsType(t, &redis.Locker{}, s.Locker)

	ctx := context.Background()
	require.NoError(t, s.Store.Save(ctx, "abc", domain.NewSession("abc", "q1")))
	ids, err := s.Store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, ids)

	unlock, err := s.Locker.Lock(ctx, "abc", time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("wizard:lock:abc"))
	require.NoError(t, unlock(ctx))
	assert.NoError(t, s.Close())

	_, err = NewStores(config.StoreConfig{Kind: config.StoreRedis, RedisURL: "://nope"})
	assert.Error(t, err)

	_, err = NewStores(config.StoreConfig{Kind: "etcd"})
	assert.ErrorContains(t, err, "unknown store kind")
}

func TestNewPromptRunner(t *testing.T) {
	logger := logging.NewNop()
	assert.Nil(t, NewPromptRunner(config.LLMConfig{}, logger, nil))

	cfg := config.DefaultConfig().LLM
	cfg.APIKey = "key"
	assert.NotNil(t, NewPromptRunner(cfg, logger, func(string) {}))
}

func TestNewEngine(t *testing.T) {
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "steps.txt")
	require.NoError(t, os.WriteFile(tablePath, []byte(table), 0644))
	defaultsPath := filepath.Join(dir, "defaults.json")
	require.NoError(t, os.WriteFile(defaultsPath, []byte(`{"capitalCost": {"data": []}}`), 0644))

	cfg := config.DefaultConfig()
	cfg.Table = tablePath
	cfg.Defaults = defaultsPath
	cfg.Store = config.StoreConfig{Kind: config.StoreFile, Path: filepath.Join(dir, "sessions")}

	metrics := observability.NewMetrics()
	eng, stores, err := NewEngine(cfg, logging.NewNop(), EngineOptions{Metrics: metrics})
	require.NoError(t, err)
	defer stores.Close()

	ctx := context.Background()
	adv, _, err := eng.Submit(ctx, "s", domain.Answers{"projectName": domain.String("Road")})
	require.NoError(t, err)
	assert.Equal(t, "q2", adv.NextStep)

	ids, err := stores.Store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s"}, ids)

	cfg.Table = filepath.Join(dir, "missing.txt")
	_, _, err = NewEngine(cfg, logging.NewNop(), EngineOptions{})
	assert.ErrorContains(t, err, "transition table not found")
}

func TestNewStores_Encrypted(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	dir := t.TempDir()

	s, err := NewStores(config.StoreConfig{Kind: config.StoreFile, Path: dir, EncryptionKey: key})
	require.NoError(t, err)

	ctx := context.Background()
	sess := domain.NewSession("e", "q1")
	sess.Answers["projectName"] = domain.String("Hidden Road")
	require.NoError(t, s.Store.Save(ctx, "e", sess))

	raw, err := file.NewStore(dir).Load(ctx, "e")
	require.NoError(t, err)
	assert.NotContains(t, raw.Answers, "projectName")

	loaded, err := s.Store.Load(ctx, "e")
	require.NoError(t, err)
	assert.Equal(t, "Hidden Road", loaded.Answers["projectName"].Text())

	_, err = NewStores(config.StoreConfig{Kind: config.StoreMemory, EncryptionKey: "c2hvcnQ="})
	assert.ErrorContains(t, err, "32 bytes")

	_, err = NewStores(config.StoreConfig{Kind: config.StoreMemory, EncryptionKey: key, FallbackKeys: []string{"!"}})
	assert.ErrorContains(t, err, "fallback key 0")
}
