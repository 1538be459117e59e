package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Chdir(t.TempDir())

	loader := NewLoader()
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100, cfg.Job.Saturation)
	assert.Equal(t, 800, cfg.Preview.MaxEdge)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadWithFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	configFile := filepath.Join(dir, "photoflow.yaml")
	content := `
log_level: debug
job:
  input_folder: /photos/in
  output_folder: /photos/out
  saturation: 130
  border:
    thickness_px: 20
    color: "#336699"
  filename_prefix: "final_"
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o600))

	loader := NewLoader()
	cfg, err := loader.LoadWithFile(configFile)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/photos/in", cfg.Job.InputFolder)
	assert.Equal(t, "/photos/out", cfg.Job.OutputFolder)
	assert.Equal(t, 130, cfg.Job.Saturation)
	assert.Equal(t, 20, cfg.Job.Border.ThicknessPx)
	assert.Equal(t, "#336699", cfg.Job.Border.Color)
	assert.Equal(t, "final_", cfg.Job.FilenamePrefix)
	assert.Equal(t, 9090, cfg.Server.Port)

	// Unset values fall back to defaults.
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 800, cfg.Preview.MaxEdge)

	assert.Equal(t, configFile, loader.GetConfigFileUsed())
}

func TestLoadWithFile_Watermarks(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	configFile := filepath.Join(dir, "photoflow.yaml")
	content := `
job:
  watermarks:
    - id: logo
      image_path: /assets/logo.png
      position: bottom-right
      opacity: 0.7
      scale_percent: 15
      margin_px: 24
    - id: badge
      image_path: /assets/badge.png
      position: top-left
      opacity: 1.0
      scale_percent: 10
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o600))

	cfg, err := NewLoader().LoadWithFile(configFile)
	require.NoError(t, err)

	require.Len(t, cfg.Job.Watermarks, 2)
	assert.Equal(t, "logo", cfg.Job.Watermarks[0].ID)
	assert.Equal(t, "/assets/logo.png", cfg.Job.Watermarks[0].ImagePath)
	assert.InDelta(t, 0.7, cfg.Job.Watermarks[0].Opacity, 1e-9)
	assert.Equal(t, 15, cfg.Job.Watermarks[0].ScalePercent)
	assert.Equal(t, "badge", cfg.Job.Watermarks[1].ID)
}

func TestLoadWithFile_MissingFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, err := NewLoader().LoadWithFile("/nonexistent/photoflow.yaml")
	assert.ErrorContains(t, err, "config file does not exist")
}

func TestLoadWithFile_InvalidValuesRejected(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	configFile := filepath.Join(dir, "photoflow.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("log_level: shouting\n"), 0o600))

	_, err := NewLoader().LoadWithFile(configFile)
	assert.ErrorContains(t, err, "invalid log level")
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Chdir(t.TempDir())
	t.Setenv("PHOTOFLOW_LOG_LEVEL", "warn")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestGetConfigSearchPaths(t *testing.T) {
	paths := GetConfigSearchPaths()

	assert.Contains(t, paths, ".")
	assert.Contains(t, paths, "/etc/photoflow")
}
