// Package config tests cover the configuration layering of prefqd (defaults,
// YAML file, PREFQ_* environment, explicit flags) and the validation rules
// applied before the daemon binds anything.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	configDefaults "github.com/concave-dev/prefq/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobal restores Global to defaults for the duration of a test.
func resetGlobal(t *testing.T) {
	t.Helper()
	saved := Global
	Global = Defaults()
	t.Cleanup(func() { Global = saved })
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, configDefaults.DefaultHost, cfg.Host)
	assert.Equal(t, configDefaults.DefaultPort, cfg.Port)
	assert.Equal(t, configDefaults.DefaultVideoDir, cfg.VideoDir)
	assert.Equal(t, configDefaults.DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)
	assert.False(t, cfg.AuthEnabled())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "prefqd.yaml", `
host: 0.0.0.0
port: 6000
video_dir: /srv/videos
rate_limit: 2.5
shutdown_timeout: 3s
`)
	t.Setenv("PREFQ_PORT", "7000")
	t.Setenv("PREFQ_LOG_LEVEL", "WARN")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 7000, cfg.Port, "environment overrides the file")
	assert.Equal(t, "/srv/videos", cfg.VideoDir)
	assert.Equal(t, "WARN", cfg.LogLevel)
	assert.InDelta(t, 2.5, cfg.RateLimit, 1e-9)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestInitializeConfigExplicitFlagsWin(t *testing.T) {
	resetGlobal(t)
	t.Chdir(t.TempDir())
	t.Setenv("PREFQ_PORT", "7000")
	t.Setenv("PREFQ_VIDEO_DIR", "from-env")

	Global.Port = 8080
	Global.SetExplicitlySet(PortField, true)

	require.NoError(t, InitializeConfig())
	assert.Equal(t, 8080, Global.Port)
	assert.Equal(t, "from-env", Global.VideoDir)
}

func TestInitializeConfigDebug(t *testing.T) {
	resetGlobal(t)
	t.Chdir(t.TempDir())

	Global.Debug = true
	Global.SetExplicitlySet(DebugField, true)

	require.NoError(t, InitializeConfig())
	assert.Equal(t, "DEBUG", Global.LogLevel)
}

func TestValidateConfig(t *testing.T) {
	keyDir := t.TempDir()
	pub := writeFile(t, keyDir, "id_rsa.pub", "ssh-rsa AAAA")
	priv := writeFile(t, keyDir, "id_rsa", "-----BEGIN-----")

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "lowercase_level", mutate: func(c *Config) { c.LogLevel = "debug" }},
		{name: "bad_level", mutate: func(c *Config) { c.LogLevel = "LOUD" }, wantErr: true},
		{name: "bad_host", mutate: func(c *Config) { c.Host = "bad host!" }, wantErr: true},
		{name: "port_zero", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "port_too_high", mutate: func(c *Config) { c.Port = 70000 }, wantErr: true},
		{name: "empty_video_dir", mutate: func(c *Config) { c.VideoDir = "" }, wantErr: true},
		{name: "partial_credentials", mutate: func(c *Config) { c.Password = "secret" }, wantErr: true},
		{name: "full_credentials", mutate: func(c *Config) {
			c.SSHPub, c.SSHPriv, c.Password = pub, priv, "secret"
		}},
		{name: "missing_key_file", mutate: func(c *Config) {
			c.SSHPub, c.SSHPriv, c.Password = pub, filepath.Join(keyDir, "nope"), "secret"
		}, wantErr: true},
		{name: "key_is_directory", mutate: func(c *Config) {
			c.SSHPub, c.SSHPriv, c.Password = pub, keyDir, "secret"
		}, wantErr: true},
		{name: "negative_rate", mutate: func(c *Config) { c.RateLimit = -1 }, wantErr: true},
		{name: "rate_without_burst", mutate: func(c *Config) { c.RateLimit, c.RateBurst = 5, 0 }, wantErr: true},
		{name: "zero_reload", mutate: func(c *Config) { c.RaterReloadSeconds = 0 }, wantErr: true},
		{name: "zero_shutdown", mutate: func(c *Config) { c.ShutdownTimeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobal(t)
			tt.mutate(&Global)

			err := ValidateConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateConfigNormalizesLevel(t *testing.T) {
	resetGlobal(t)
	Global.LogLevel = "warn"
	require.NoError(t, ValidateConfig())
	assert.Equal(t, "WARN", Global.LogLevel)
}
