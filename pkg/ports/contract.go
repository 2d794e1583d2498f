package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aibee/wizard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		sess := domain.NewSession(sessionID, "q1")
		sess.Answers["projectName"] = domain.String("Road")
		sess.Answers["budget"] = domain.Number("1500.50")
		sess.Answers["scope"] = domain.Map(
			domain.Field{Key: "b", Value: domain.Int(1)},
			domain.Field{Key: "a", Value: domain.List(domain.String("x"), domain.Null())},
		)

		err := store.Save(ctx, sessionID, sess)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sess.CurrentStep, loaded.CurrentStep)
		assert.Equal(t, sess.Status, loaded.Status)
		assert.Equal(t, "Road", loaded.Answers["projectName"].Text())

		// Number literals and mapping key order must survive persistence.
		assert.Equal(t, "1500.50", loaded.Answers["budget"].Text())
		assert.Equal(t, []string{"b", "a"}, loaded.Answers["scope"].Keys())
		assert.Equal(t, sess.Answers["scope"].JSON(), loaded.Answers["scope"].JSON())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Save Empty ID", func(t *testing.T) {
		err := store.Save(ctx, "", domain.NewSession("", "q1"))
		assert.ErrorIs(t, err, domain.ErrEmptySessionID)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSession(sessionID, "q1"))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Deleting twice should be a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(id1, "q1"))
		_ = store.Save(ctx, id2, domain.NewSession(id2, "q1"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
