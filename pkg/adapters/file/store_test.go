package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aibee/wizard/pkg/adapters/file"
	"github.com/aibee/wizard/pkg/domain"
	"github.com/aibee/wizard/pkg/ports"
)

// Ensure Store implements SessionStore
var _ ports.SessionStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, file.NewStore(t.TempDir()))
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.NewStore(dir)
	ctx := context.Background()

	sess := domain.NewSession("session-1", "q1")
	sess.Answers["projectName"] = domain.String("Road")
	if err := store.Save(ctx, "session-1", sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "session-1.json")); err != nil {
		t.Errorf("expected session file on disk: %v", err)
	}

	// Stray temp files are not sessions.
	if err := os.WriteFile(filepath.Join(dir, "tmp-x-123.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	ids, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "session-1" {
		t.Errorf("expected [session-1], got %v", ids)
	}

	if err := store.Save(ctx, "../escape", sess); err == nil {
		t.Error("expected path separators in session id to be rejected")
	}
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.NewStore(filepath.Join(t.TempDir(), "nope"))
	ids, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no sessions, got %v", ids)
	}
}
