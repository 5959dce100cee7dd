package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mnemo.json")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Retrieval.VectorWeight)
	assert.NotEmpty(t, cfg.DataDir)
	assert.NotEmpty(t, cfg.Logging.File)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mnemo.json")
	content := `{
		"data_dir": "` + dir + `",
		"retrieval": {"vector_weight": 0.5, "lexical_weight": 0.5, "default_limit": 10},
		"tiers": {"profile_ceiling": 400, "digest_ceiling": 6000, "digest_target_low": 4000, "digest_target_high": 5000, "horizon_days": 7, "max_oracle_calls": 2}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 0.5, cfg.Retrieval.VectorWeight)
	assert.Equal(t, 10, cfg.Retrieval.DefaultLimit)
	assert.Equal(t, 400, cfg.Tiers.ProfileCeiling)
	assert.Equal(t, 7, cfg.Tiers.HorizonDays)
	assert.Equal(t, filepath.Join(dir, "mnemo.log"), cfg.Logging.File)
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mnemo.json")
	content := `{"retrieval": {"vector_weight": 3.0, "lexical_weight": 0.3, "default_limit": 5}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := NewLoader(path).Load()
	assert.Error(t, err)
}
