package providers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytmeta/internal/structures"
)

func TestNewConfigProvider_DefaultsWithoutFile(t *testing.T) {
	root := t.TempDir()
	t.Setenv("YTMETA_ROOT", root)

	conf, err := NewConfigProvider(&structures.CliFlags{DebugMode: true})
	require.NoError(t, err)

	assert.Equal(t, AppName, conf.AppName)
	assert.True(t, conf.Debug)
	assert.Equal(t, filepath.Join(root, "db.json"), conf.Persistence.FilePath)
	assert.Equal(t, filepath.Join(root, "dumps"), conf.Archive.DumpsDir)
	assert.Equal(t, filepath.Join(root, "backups"), conf.Persistence.BackupDir)
	assert.Equal(t, 30*time.Second, conf.Persistence.SaveInterval)
	assert.Equal(t, "info", conf.Logger.Level)

	_, err = os.Stat(conf.Logger.Dir)
	assert.NoError(t, err, "log dir is created")
}

func TestNewConfigProvider_ReadsYaml(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "config.yaml")
	yaml := "root: " + root + "\n" +
		"persistence:\n  filePath: " + filepath.Join(root, "store.json.zst") + "\n  saveInterval: 5m\n  compress: true\n" +
		"logger:\n  level: debug\n" +
		"webServer:\n  port: 9090\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, path, conf.Path)
	assert.Equal(t, filepath.Join(root, "store.json.zst"), conf.Persistence.FilePath)
	assert.Equal(t, 5*time.Minute, conf.Persistence.SaveInterval)
	assert.True(t, conf.Persistence.Compress)
	assert.Equal(t, "debug", conf.Logger.Level)
	assert.Equal(t, 9090, conf.WebServer.Port)
	assert.Equal(t, "127.0.0.1", conf.WebServer.Host)
}

func TestNewConfigProvider_EnvOverride(t *testing.T) {
	t.Setenv("YTMETA_ROOT", t.TempDir())
	t.Setenv("YTMETA_LOG_LEVEL", "warn")

	conf, err := NewConfigProvider(&structures.CliFlags{})
	require.NoError(t, err)
	assert.Equal(t, "warn", conf.Logger.Level)
}

func TestNewConfigProvider_MissingFile(t *testing.T) {
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestNewConfigProvider_InvalidLevel(t *testing.T) {
	t.Setenv("YTMETA_ROOT", t.TempDir())
	t.Setenv("YTMETA_LOG_LEVEL", "chatty")

	_, err := NewConfigProvider(&structures.CliFlags{})
	assert.Error(t, err)
}

func TestNewConfigProvider_RootFlagWinsOverEnv(t *testing.T) {
	t.Setenv("YTMETA_ROOT", t.TempDir())
	root := t.TempDir()

	conf, err := NewConfigProvider(&structures.CliFlags{Root: root})
	require.NoError(t, err)
	assert.Equal(t, root, conf.Root)
	assert.Equal(t, filepath.Join(root, "html"), conf.Archive.HtmlDir)
}
