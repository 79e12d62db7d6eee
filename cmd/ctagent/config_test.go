package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagearbor/clinicalTrials-s2f/internal/config"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfig_ReadsJSON(t *testing.T) {
	repoRoot := t.TempDir()
	writeTestFile(t, filepath.Join(repoRoot, ".ctagent", "config.json"), `{
  "llm": {"provider": "openai", "model": "gpt-4o-mini"},
  "paths": {"output_dir": "artifacts"}
}`)

	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("config", filepath.Join(".ctagent", "config.json"))

	cfg, err := loadConfig(repoRoot)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "artifacts", cfg.Paths.OutputDir)
	// Defaults still fill the unset paths.
	assert.Equal(t, filepath.Join("config", "checklist.yml"), filepath.FromSlash(cfg.Paths.Checklist))
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	repoRoot := t.TempDir()

	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("config", filepath.Join(".ctagent", "config.json"))

	cfg, err := loadConfig(repoRoot)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderNone, cfg.LLM.Provider)
	assert.Equal(t, "output", cfg.Paths.OutputDir)
}

func TestLoadConfig_RejectsUnknownProvider(t *testing.T) {
	repoRoot := t.TempDir()
	writeTestFile(t, filepath.Join(repoRoot, ".ctagent", "config.json"), `{
  "llm": {"provider": "oracle", "model": "m"}
}`)

	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("config", filepath.Join(".ctagent", "config.json"))

	_, err := loadConfig(repoRoot)
	require.Error(t, err)
}
