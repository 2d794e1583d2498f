package tests

import (
	"context"
	"testing"

	"github.com/aibee/wizard/pkg/ports"
)

// TableLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.TableLoader.
// want maps each step name to the number of candidate steps registered under it.
func TableLoaderContractTest(t *testing.T, loader ports.TableLoader, want map[string]int) {
	t.Helper()

	t.Run("LoadTable_Success", func(t *testing.T) {
		table, err := loader.LoadTable(context.Background())
		if err != nil {
			t.Fatalf("unexpected error loading table: %v", err)
		}

		if len(table.Names()) != len(want) {
			t.Errorf("expected %d step names, got %d", len(want), len(table.Names()))
		}

		for name, count := range want {
			if got := len(table.Candidates(name)); got != count {
				t.Errorf("step %s: expected %d candidates, got %d", name, count, got)
			}
		}
	})

	t.Run("LoadTable_Stable", func(t *testing.T) {
		first, err := loader.LoadTable(context.Background())
		if err != nil {
			t.Fatalf("unexpected error loading table: %v", err)
		}
		second, err := loader.LoadTable(context.Background())
		if err != nil {
			t.Fatalf("unexpected error reloading table: %v", err)
		}

		a, b := first.Names(), second.Names()
		if len(a) != len(b) {
			t.Fatalf("reload changed step count: %d vs %d", len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("reload changed step order at %d: %s vs %s", i, a[i], b[i])
			}
		}
	})

	t.Run("LoadTable_Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := loader.LoadTable(ctx); err == nil {
			t.Error("expected error for canceled context, got nil")
		}
	})
}
