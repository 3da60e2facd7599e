package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1000, cfg.Memory.CapacityShort)
	assert.Equal(t, 100, cfg.Memory.CapacityWorking)
	assert.Equal(t, 0.7, cfg.Reasoning.AdaptiveThreshold)
	assert.Len(t, cfg.Reasoning.BackendsEnabled, len(allBackends))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("COG_MEMORY_CAPACITY_SHORT", "50")
	t.Setenv("COG_REASONING_ADAPTIVE_THRESHOLD", "0.9")
	t.Setenv("COG_LOGGING_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Memory.CapacityShort)
	assert.Equal(t, 0.9, cfg.Reasoning.AdaptiveThreshold)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := Default()
	cfg.Reasoning.BackendsEnabled = []string{"not-a-backend"}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsOutOfRangeThreshold(t *testing.T) {
	cfg := Default()
	cfg.Reasoning.AdaptiveThreshold = 1.5
	assert.Error(t, cfg.Validate())
}

func TestSaveAndLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Server.Name = "custom-core"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom-core", loaded.Server.Name)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestIsBackendEnabled(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.IsBackendEnabled("classical"))
	cfg.Reasoning.BackendsEnabled = []string{"classical"}
	assert.False(t, cfg.IsBackendEnabled("fuzzy"))
}
