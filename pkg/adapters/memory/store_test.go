package memory_test

import (
	"context"
	"testing"

	"github.com/aibee/wizard/pkg/adapters/memory"
	"github.com/aibee/wizard/pkg/domain"
	"github.com/aibee/wizard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	sess := domain.NewSession("s1", "q1")
	sess.Answers["a"] = domain.String("1")
	require.NoError(t, store.Save(ctx, "s1", sess))

	sess.Answers["a"] = domain.String("changed")
	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "1", loaded.Answers["a"].Text())

	loaded.Answers["b"] = domain.String("x")
	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	_, ok := again.Answers["b"]
	assert.False(t, ok)
}
