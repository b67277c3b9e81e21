package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_defaultsFS(t *testing.T) {
	data, err := DefaultsFS().ReadFile("defaults/config")
	require.NoError(t, err)
	assert.Contains(t, string(data), "precision")
	assert.Contains(t, string(data), "output_format")
	assert.Contains(t, string(data), "notify_channels")
}

func TestLoad_WithCustomDir(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "custom-config")

	cfg, err := Load(configDir)
	require.NoError(t, err)
	assert.Equal(t, configDir, cfg.ConfigDir())
	assert.FileExists(t, filepath.Join(configDir, "config"))

	// embedded defaults
	assert.Equal(t, 4, cfg.Precision)
	assert.Equal(t, FormatText, cfg.OutputFormat)
	assert.Equal(t, 300, cfg.WatchDebounceMs)
	assert.Empty(t, cfg.LogFile)
	assert.Empty(t, cfg.NotifyChannels)
	assert.True(t, cfg.NotifyOnError)
	assert.False(t, cfg.NotifyOnComplete)
	assert.Equal(t, 10000, cfg.NotifyTimeoutMs)
	assert.Equal(t, "0,255,0", cfg.Colors.Category)
}

func TestLoad_DoesNotOverwriteUserConfig(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "ualpha")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	userConfig := "precision = 6\noutput_format = markdown\n"
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config"), []byte(userConfig), 0o600))

	cfg, err := Load(configDir)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Precision)
	assert.Equal(t, FormatMarkdown, cfg.OutputFormat)

	data, err := os.ReadFile(filepath.Join(configDir, "config"))
	require.NoError(t, err)
	assert.Equal(t, userConfig, string(data))
}

func TestDefaultConfigDir(t *testing.T) {
	assert.Contains(t, DefaultConfigDir(), "ualpha")
}

func TestLoad_EmptyConfigFallsBackToEmbedded(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "ualpha")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config"), []byte("# only comments\n"), 0o600))

	cfg, err := Load(configDir)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Precision)
	assert.Equal(t, "255,0,0", cfg.Colors.Error)
}

func TestLoad_InvalidConfig(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "ualpha")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config"), []byte("precision = lots\n"), 0o600))

	_, err := Load(configDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid precision")
}

func TestLocalConfig_LocalOverridesGlobal(t *testing.T) {
	tmpDir := t.TempDir()
	globalDir := filepath.Join(tmpDir, "global")
	localDir := filepath.Join(tmpDir, "local")
	require.NoError(t, os.MkdirAll(globalDir, 0o700))
	require.NoError(t, os.MkdirAll(localDir, 0o700))

	globalConfig := `
precision = 6
watch_debounce_ms = 1000
notify_on_complete = true
color_category = #ff0000
color_error = #00ff00
`
	require.NoError(t, os.WriteFile(filepath.Join(globalDir, "config"), []byte(globalConfig), 0o600))

	localConfig := `
precision = 0
notify_on_complete = false
color_category = #0000ff
`
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "config"), []byte(localConfig), 0o600))

	cfg, err := loadWithLocal(globalDir, localDir)
	require.NoError(t, err)
	assert.Equal(t, localDir, cfg.LocalDir())

	// explicit zero and false in local win
	assert.Equal(t, 0, cfg.Precision)
	assert.False(t, cfg.NotifyOnComplete)
	// global preserved
	assert.Equal(t, 1000, cfg.WatchDebounceMs)
	assert.Equal(t, "0,255,0", cfg.Colors.Error)
	// local color
	assert.Equal(t, "0,0,255", cfg.Colors.Category)
	// embedded
	assert.Equal(t, FormatText, cfg.OutputFormat)
	assert.Equal(t, "0,255,255", cfg.Colors.Joint)
}

func TestLocalConfig_NoLocalConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	globalDir := filepath.Join(tmpDir, "global")
	localDir := filepath.Join(tmpDir, "local")
	require.NoError(t, os.MkdirAll(localDir, 0o700))

	cfg, err := loadWithLocal(globalDir, localDir)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Precision)
}

func TestConfig_NotifyOutcomeKeys(t *testing.T) {
	tmpDir := t.TempDir()
	globalDir := filepath.Join(tmpDir, "global")
	localDir := filepath.Join(tmpDir, "local", ".ualpha")
	require.NoError(t, os.MkdirAll(globalDir, 0o700))
	require.NoError(t, os.MkdirAll(localDir, 0o700))

	t.Run("defaults leave threshold unset", func(t *testing.T) {
		cfg, err := loadWithLocal(globalDir, localDir)
		require.NoError(t, err)
		assert.False(t, cfg.NotifyOnDegenerate)
		assert.False(t, cfg.NotifyAlphaBelowSet)
	})

	global := "notify_channels = custom\nnotify_on_degenerate = true\nnotify_alpha_below = 0.667\n"
	require.NoError(t, os.WriteFile(filepath.Join(globalDir, "config"), []byte(global), 0o600))

	t.Run("global values", func(t *testing.T) {
		cfg, err := loadWithLocal(globalDir, localDir)
		require.NoError(t, err)
		assert.Equal(t, []string{"custom"}, cfg.NotifyChannels)
		assert.True(t, cfg.NotifyOnDegenerate)
		assert.True(t, cfg.NotifyAlphaBelowSet)
		assert.InDelta(t, 0.667, cfg.NotifyAlphaBelow, 1e-12)
	})

	t.Run("local overrides with zero values", func(t *testing.T) {
		local := "notify_on_degenerate = false\nnotify_alpha_below = 0\n"
		require.NoError(t, os.WriteFile(filepath.Join(localDir, "config"), []byte(local), 0o600))
		cfg, err := loadWithLocal(globalDir, localDir)
		require.NoError(t, err)
		assert.False(t, cfg.NotifyOnDegenerate)
		assert.True(t, cfg.NotifyAlphaBelowSet)
		assert.Zero(t, cfg.NotifyAlphaBelow)
	})
}
