package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a temporary YAML config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
staleAfterDays: 60
closeAfterStaleDays: 14
staleLabel: inactive
staleMessage: "Marking as inactive."
closeMessage: "Closing."
exemptLabels:
  - pinned
  - security
onlyLabels:
  - triage
removeLabelOnUpdate: false
operationsPerRunBudget: 100
workers: 8
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 60*24*time.Hour, cfg.Policy.StaleAfter)
	assert.Equal(t, 14*24*time.Hour, cfg.Policy.CloseAfterStale)
	assert.Equal(t, "inactive", cfg.Policy.StaleLabel)
	assert.Equal(t, "Marking as inactive.", cfg.Policy.StaleMessage)
	assert.Equal(t, "Closing.", cfg.Policy.CloseMessage)
	assert.Equal(t, []string{"pinned", "security"}, cfg.Policy.ExemptLabels)
	assert.Equal(t, []string{"triage"}, cfg.Policy.OnlyLabels)
	assert.False(t, cfg.Policy.RemoveLabelOnUpdate)
	assert.Equal(t, 100, cfg.Budget)
	assert.Equal(t, 8, cfg.Workers)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "staleAfterDays: 30\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*24*time.Hour, cfg.Policy.StaleAfter)
	assert.Equal(t, time.Duration(DefaultCloseAfterStaleDays)*24*time.Hour, cfg.Policy.CloseAfterStale)
	assert.Equal(t, DefaultStaleLabel, cfg.Policy.StaleLabel)
	assert.Empty(t, cfg.Policy.StaleMessage)
	assert.Equal(t, DefaultCloseMessage, cfg.Policy.CloseMessage)
	assert.Empty(t, cfg.Policy.ExemptLabels)
	assert.Empty(t, cfg.Policy.OnlyLabels)
	assert.True(t, cfg.Policy.RemoveLabelOnUpdate)
	assert.Equal(t, DefaultOperationsBudget, cfg.Budget)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
}

func TestLoad_ZeroCloseAfterStaleIsValid(t *testing.T) {
	path := writeConfig(t, "staleAfterDays: 30\ncloseAfterStaleDays: 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Policy.CloseAfterStale)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name        string
		content     string
		expectedErr string
	}{
		{
			name:        "missing staleAfterDays",
			content:     "staleLabel: stale\n",
			expectedErr: "staleAfterDays must be a positive integer",
		},
		{
			name:        "negative staleAfterDays",
			content:     "staleAfterDays: -1\n",
			expectedErr: "staleAfterDays must be a positive integer",
		},
		{
			name:        "negative closeAfterStaleDays",
			content:     "staleAfterDays: 30\ncloseAfterStaleDays: -1\n",
			expectedErr: "closeAfterStaleDays must not be negative",
		},
		{
			name:        "empty stale label",
			content:     "staleAfterDays: 30\nstaleLabel: \"\"\n",
			expectedErr: "staleLabel must not be empty",
		},
		{
			name:        "zero operation budget",
			content:     "staleAfterDays: 30\noperationsPerRunBudget: 0\n",
			expectedErr: "operationsPerRunBudget must be a positive integer",
		},
		{
			name:        "zero workers",
			content:     "staleAfterDays: 30\nworkers: 0\n",
			expectedErr: "workers must be a positive integer",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tc.content))
			assert.Nil(t, cfg)
			assert.ErrorContains(t, err, tc.expectedErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "failed to read config file")
}
