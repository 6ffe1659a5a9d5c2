package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-contam/internal/contam"
)

func TestConfigSetGet(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "contam.yaml")
	require.NoError(t, os.WriteFile(cfg, nil, 0644))

	code, stdout, stderr := runCLI(t, "--config", cfg, "config", "set", "estimate.min_depth", "25")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Set estimate.min_depth = 25 in "+cfg)

	code, stdout, stderr = runCLI(t, "--config", cfg, "config", "set", "estimate.snv_only", "yes")
	require.Equal(t, ExitSuccess, code, stderr)

	code, stdout, stderr = runCLI(t, "--config", cfg, "config", "get", "estimate.min_depth")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "25\n", stdout)

	code, stdout, _ = runCLI(t, "--config", cfg, "config")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "# Config file: "+cfg)
	assert.Contains(t, stdout, "snv_only: true")
}

func TestConfigGet_Unset(t *testing.T) {
	code, _, stderr := runCLI(t, "config", "get", "no.such.key")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, `key "no.such.key" is not set`)
}

func TestConfig_MissingExplicitFile(t *testing.T) {
	code, _, stderr := runCLI(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "config")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "reading config")
}

func TestInitConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	v := viper.New()
	require.NoError(t, initConfig(v, ""))

	assert.Equal(t, 0, v.GetInt(keyMinDepth))
	assert.False(t, v.GetBool(keySNVOnly))
	assert.Equal(t, contam.DefaultGridStart, v.GetFloat64(keyGridStart))
	assert.Equal(t, contam.DefaultGridStep, v.GetFloat64(keyGridStep))
	assert.Equal(t, contam.DefaultGridStop, v.GetFloat64(keyGridStop))
	assert.Empty(t, v.GetString(keyDB))
}

func TestInitConfig_HomeFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".vibe-contam.yaml"),
		[]byte("grid:\n  stop: 0.2\nworkers: 4\n"), 0644))

	v := viper.New()
	require.NoError(t, initConfig(v, ""))
	assert.Equal(t, 0.2, v.GetFloat64(keyGridStop))
	assert.Equal(t, 4, v.GetInt(keyWorkers))
	assert.Equal(t, contam.DefaultGridStart, v.GetFloat64(keyGridStart))
}
