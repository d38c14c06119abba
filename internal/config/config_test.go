package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := New()
	cfg, err := Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.Backend.Timeout)
	assert.Equal(t, SessionSQLite, cfg.Session.Backend)
	assert.Equal(t, 8, cfg.Admin.Concurrency)
	assert.Equal(t, 1500*time.Millisecond, cfg.Admin.UserNotice)
	assert.Equal(t, 2*time.Second, cfg.Admin.ConversationNotice)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, int64(1<<20), cfg.Audit.MaxShardSize)
	assert.Equal(t, "audit", filepath.Base(cfg.Audit.Dir))
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[backend]
base_url = "http://10.0.0.5:9000"
timeout = "30s"

[session]
backend = "file"
file = "/tmp/session.toml"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:9000", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, SessionFile, cfg.Session.Backend)
	assert.Equal(t, "/tmp/session.toml", cfg.Session.File)
	assert.Equal(t, "http://10.0.0.5:9000", cfg.Origin())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AI_ASSISTANT_BACKEND_BASE_URL", "https://assistant.example.com/api")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "https://assistant.example.com/api", cfg.Backend.BaseURL)
	assert.Equal(t, "https://assistant.example.com", cfg.Origin())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(New(), "")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "bad scheme", mutate: func(c *Config) { c.Backend.BaseURL = "ftp://localhost" }, wantErr: true},
		{name: "missing host", mutate: func(c *Config) { c.Backend.BaseURL = "http://" }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Backend.Timeout = -time.Second }, wantErr: true},
		{name: "unknown session backend", mutate: func(c *Config) { c.Session.Backend = "cookie" }, wantErr: true},
		{name: "memory session", mutate: func(c *Config) { c.Session.Backend = SessionMemory }},
		{name: "redis without addr", mutate: func(c *Config) {
			c.Session.Backend = SessionRedis
			c.Session.Redis.Addr = ""
		}, wantErr: true},
		{name: "zero concurrency", mutate: func(c *Config) { c.Admin.Concurrency = 0 }, wantErr: true},
		{name: "audit without dir", mutate: func(c *Config) { c.Audit.Dir = "" }, wantErr: true},
		{name: "audit disabled without dir", mutate: func(c *Config) {
			c.Audit.Enabled = false
			c.Audit.Dir = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
