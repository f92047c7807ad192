package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 5, cfg.Retrieval.InitialK)
	assert.Equal(t, 3, cfg.Retrieval.RefineK)
	assert.Equal(t, 10, cfg.Retrieval.MergeLimit)
	assert.Equal(t, ReviewFailOpen, cfg.Review.FailurePolicy)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxRetries)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolvd.yaml")
	data := []byte("max_retries: 4\nreview:\n  failure_policy: fail-closed\nretrieval:\n  initial_k: 7\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxRetries)
	assert.Equal(t, ReviewFailClosed, cfg.Review.FailurePolicy)
	assert.Equal(t, 7, cfg.Retrieval.InitialK)
	// Untouched keys keep their defaults.
	assert.Equal(t, 3, cfg.Retrieval.RefineK)
}

func TestEnvOverridesWinOverYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolvd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_retries: 4\n"), 0644))

	t.Setenv("RESOLVD_MAX_RETRIES", "1")
	t.Setenv("RESOLVD_REVIEW_FAILURE_POLICY", "fail-closed")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, ReviewFailClosed, cfg.Review.FailurePolicy)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := Default()
	cfg.Review.FailurePolicy = "fail-sideways"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MaxRetries = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Retrieval.ChunkOverlap = cfg.Retrieval.ChunkSize
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Embeddings.Provider = "mystery"
	assert.Error(t, cfg.Validate())
}
