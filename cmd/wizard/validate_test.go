package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunValidate(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		wantErr string
	}{
		{
			name: "Valid",
			table: `q1, null, null, ["Name?"], ["name"], null, null, null, q2
q2, q1, null, ["Sector?"], ["sector"], null, null, null, null
`,
		},
		{
			name:    "Dangling Next Step",
			table:   `q1, null, null, ["Name?"], ["name"], null, null, null, q9` + "\n",
			wantErr: "Missing step: 'q9'",
		},
		{
			name:    "Missing Entry",
			table:   `q5, null, null, ["Name?"], ["name"], null, null, null, null` + "\n",
			wantErr: "Missing entry step",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "steps.txt")
			require.NoError(t, os.WriteFile(path, []byte(tt.table), 0644))

			err := runValidate(path, "q1")
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	assert.Error(t, runValidate(filepath.Join(t.TempDir(), "missing.txt"), "q1"))
}
