package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/aibee/wizard/pkg/adapters/memory"
	"github.com/aibee/wizard/pkg/domain"
	"github.com/aibee/wizard/pkg/persistence/middleware"
	"github.com/aibee/wizard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.SessionStore, cfg middleware.EncryptionConfig) ports.SessionStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	ctx := context.Background()
	sess := domain.NewSession("s", "q1")
	sess.Answers["projectName"] = domain.String("Secret Road")
	sess.History = append(sess.History, "q2")
	sess.CurrentStep = "q2"
	require.NoError(t, secure.Save(ctx, "s", sess))

	stored, err := underlying.Load(ctx, "s")
	require.NoError(t, err)
	assert.NotContains(t, stored.Answers, "projectName")
	assert.Equal(t, "encrypted", stored.CurrentStep)
	assert.Empty(t, stored.History)
	assert.Equal(t, domain.StatusActive, stored.Status)

	loaded, err := secure.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "Secret Road", loaded.Answers["projectName"].Text())
	assert.Equal(t, "q2", loaded.CurrentStep)
	assert.Equal(t, []string{"q1", "q2"}, loaded.History)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	oldStore := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	sess := domain.NewSession("r", "q1")
	sess.Answers["data"] = domain.String("old")
	require.NoError(t, oldStore.Save(ctx, "r", sess))

	newStore := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	loaded, err := newStore.Load(ctx, "r")
	require.NoError(t, err, "fallback key should decrypt")
	assert.Equal(t, "old", loaded.Answers["data"].Text())

	loaded.Answers["data"] = domain.String("new")
	require.NoError(t, newStore.Save(ctx, "r", loaded))

	_, err = oldStore.Load(ctx, "r")
	assert.Error(t, err, "old key alone cannot read data sealed with the new key")
}

func TestEncryptionMiddleware_RejectsPlainSessions(t *testing.T) {
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(context.Background(), "plain", domain.NewSession("plain", "q1")))

	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := secure.Load(context.Background(), "plain")
	assert.ErrorIs(t, err, middleware.ErrNotEncrypted)
}

func TestNewEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	parsed, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, parsed)

	_, err = middleware.ParseKey("not base64!")
	assert.ErrorContains(t, err, "base64")

	_, err = middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorContains(t, err, "32 bytes")
}

func TestChain(t *testing.T) {
	underlying := memory.NewStore()
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.SessionStore) ports.SessionStore {
			return recordingStore{SessionStore: next, name: name, order: &order}
		}
	}

	store := middleware.Chain(underlying, tag("outer"), tag("inner"))
	require.NoError(t, store.Save(context.Background(), "c", domain.NewSession("c", "q1")))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

type recordingStore struct {
	ports.SessionStore
	name  string
	order *[]string
}

func (r recordingStore) Save(ctx context.Context, id string, sess *domain.Session) error {
	*r.order = append(*r.order, r.name)
	return r.SessionStore.Save(ctx, id, sess)
}
