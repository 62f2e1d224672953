package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"MFM_LOG_LEVEL", "MFM_CONTEXT_LEVELS", "MFM_USE_EXIFTOOL", "MFM_MEDIA_ONLY"} {
		unsetEnv(t, k)
	}

	cfg, err := loadConfig(t.TempDir(), t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1, cfg.ContextLevels)
	assert.False(t, cfg.UseExifTool)
	assert.False(t, cfg.MediaOnly)
	assert.Equal(t, MediaImage, cfg.Classifier().Classify("jpeg"))
	assert.Equal(t, MediaVideo, cfg.Classifier().Classify("mkv"))
}

func TestLoadConfig_File(t *testing.T) {
	unsetEnv(t, "MFM_CONTEXT_LEVELS")
	unsetEnv(t, "MFM_SKIP_HIDDEN")
	confDir := t.TempDir()
	toml := "context_levels = 3\nskip_hidden = true\nimage_extensions = [\"jpg\", \"arw\"]\n"
	require.NoError(t, os.WriteFile(filepath.Join(confDir, "mfm.toml"), []byte(toml), 0644))

	cfg, err := loadConfig(confDir, t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.ContextLevels)
	assert.True(t, cfg.SkipHidden)
	assert.Equal(t, MediaImage, cfg.Classifier().Classify("ARW"))
	assert.Equal(t, MediaUnknown, cfg.Classifier().Classify("png"))
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	confDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(confDir, "mfm.toml"), []byte("context_levels = 3\n"), 0644))
	t.Setenv("MFM_CONTEXT_LEVELS", "2")

	cfg, err := loadConfig(confDir, t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, 2, cfg.ContextLevels)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	unsetEnv(t, "MFM_MEDIA_ONLY")
	t.Setenv("MFM_LOG_LEVEL", "warn")
	workDir := t.TempDir()
	dotenv := "MFM_MEDIA_ONLY=true\nMFM_LOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(workDir, ".env"), []byte(dotenv), 0644))

	cfg, err := loadConfig(t.TempDir(), workDir)

	require.NoError(t, err)
	assert.True(t, cfg.MediaOnly)
	assert.Equal(t, "warn", cfg.LogLevel, "process environment wins over .env")
}

func TestLoadConfig_NegativeContextLevels(t *testing.T) {
	t.Setenv("MFM_CONTEXT_LEVELS", "-1")

	_, err := loadConfig(t.TempDir(), t.TempDir())

	assert.ErrorContains(t, err, "context_levels")
}

func TestLoadConfig_BrokenFile(t *testing.T) {
	confDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(confDir, "mfm.toml"), []byte("context_levels = = 3"), 0644))

	_, err := loadConfig(confDir, t.TempDir())

	assert.ErrorContains(t, err, "failed to read config")
}
