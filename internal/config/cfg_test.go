package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 1, cfg.Version)
	assert.True(t, cfg.Inliner.RemoveStyleTags)
	assert.True(t, cfg.Inliner.UseDocumentStyles)
	assert.Equal(t, 600, cfg.Inliner.TableWidth)
	assert.Equal(t, "outlook", cfg.Inliner.TargetClient)
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "normal", cfg.Logging.ConsoleLogger.Level)
	assert.Equal(t, "none", cfg.Logging.FileLogger.Level)
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `version: 1
inliner:
  table_width: 640
  target_client: gmail
server:
  listen: "127.0.0.1:9090"
  write_timeout: 1m
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := LoadConfiguration(configPath)
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Inliner.TableWidth)
	assert.Equal(t, "gmail", cfg.Inliner.TargetClient)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Listen)
	assert.Equal(t, time.Minute, cfg.Server.WriteTimeout)
	// untouched values keep template defaults
	assert.True(t, cfg.Inliner.RemoveStyleTags)
	assert.Equal(t, int64(5242880), cfg.Server.MaxBodyBytes)
}

func TestLoadConfiguration_UnknownField(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("version: 1\nbogus: true\n"), 0644))

	_, err := LoadConfiguration(configPath)
	assert.Error(t, err)
}

func TestLoadConfiguration_InvalidValues(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("version: 1\ninliner:\n  target_client: lotus_notes\n"), 0644))

	_, err := LoadConfiguration(configPath)
	assert.Error(t, err)
}

func TestLoadConfiguration_MissingFile(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDumpRoundTrip(t *testing.T) {
	cfg, err := LoadConfiguration("")
	require.NoError(t, err)

	data, err := Dump(cfg)
	require.NoError(t, err)

	configPath := filepath.Join(t.TempDir(), "dumped.yaml")
	require.NoError(t, os.WriteFile(configPath, data, 0644))

	again, err := LoadConfiguration(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Inliner, again.Inliner)
	assert.Equal(t, cfg.Server, again.Server)
	assert.Equal(t, cfg.Logging.ConsoleLogger.Level, again.Logging.ConsoleLogger.Level)
}

func TestDefaultInlinerMatchesTemplate(t *testing.T) {
	cfg, err := LoadConfiguration("")
	require.NoError(t, err)
	assert.Equal(t, cfg.Inliner, DefaultInliner())
}

func TestGetCompatibilityProfile(t *testing.T) {
	assert.False(t, GetCompatibilityProfile("Outlook").SupportsFlexbox)
	assert.True(t, GetCompatibilityProfile("gmail").SupportsMediaQueries)
	assert.Equal(t, 32768, GetCompatibilityProfile("unknown").MaxStylesheetSize)
}

func TestLoggingPrepare(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "emailcss.log")
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "debug", Destination: dest, Mode: "overwrite", MaxSizeMB: 1},
	}

	log, err := conf.Prepare()
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)

	conf.FileLogger.Destination = ""
	_, err = conf.Prepare()
	assert.Error(t, err)
}
