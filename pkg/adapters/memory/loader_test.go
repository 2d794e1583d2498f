package memory_test

import (
	"testing"

	"github.com/aibee/wizard/internal/compiler"
	"github.com/aibee/wizard/pkg/adapters/memory"
	"github.com/aibee/wizard/pkg/domain"
	"github.com/aibee/wizard/pkg/ports/tests"
	"github.com/stretchr/testify/require"
)

func TestMemoryLoader_Contract(t *testing.T) {
	loader := memory.NewLoader(
		domain.Step{Name: "q1", NextStep: "q2"},
		domain.Step{Name: "q2", Condition: "x", NextStep: "q3"},
		domain.Step{Name: "q2", NextStep: "q3"},
		domain.Step{Name: "q3"},
	)
	tests.TableLoaderContractTest(t, loader, map[string]int{"q1": 1, "q2": 2, "q3": 1})
}

func TestMemoryLoader_FromSource(t *testing.T) {
	loader, err := memory.NewFromSource(`q1,null,null,["Name?"],["name"],[],[],[],null`, compiler.FormatLines)
	require.NoError(t, err)
	tests.TableLoaderContractTest(t, loader, map[string]int{"q1": 1})
}
