// Package config holds the client configuration, loaded through viper from
// an optional config file, AI_ASSISTANT_* environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "AI_ASSISTANT"

// Session backends.
const (
	SessionSQLite = "sqlite"
	SessionFile   = "file"
	SessionRedis  = "redis"
	SessionMemory = "memory"
)

type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Session SessionConfig `mapstructure:"session"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Admin   AdminConfig   `mapstructure:"admin"`
	UI      UIConfig      `mapstructure:"ui"`
	Log     LogConfig     `mapstructure:"log"`
	Audit   AuditConfig   `mapstructure:"audit"`
}

type BackendConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Timeout of zero means requests never time out.
	Timeout time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	Backend string      `mapstructure:"backend"`
	Path    string      `mapstructure:"path"`
	File    string      `mapstructure:"file"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ChatConfig struct {
	Greeting    string `mapstructure:"greeting"`
	ErrorNotice string `mapstructure:"error_notice"`
}

type AdminConfig struct {
	Concurrency        int           `mapstructure:"concurrency"`
	UserNotice         time.Duration `mapstructure:"user_notice"`
	ConversationNotice time.Duration `mapstructure:"conversation_notice"`
}

type UIConfig struct {
	Markdown bool `mapstructure:"markdown"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// AuditConfig controls the local trail of admin mutations.
type AuditConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Dir          string `mapstructure:"dir"`
	MaxShardSize int64  `mapstructure:"max_shard_size"`
	Compress     bool   `mapstructure:"compress"`
}

// DataDir is where durable client state lives by default.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ai-assistant"
	}
	return filepath.Join(home, ".ai-assistant")
}

func SetDefaults(v *viper.Viper) {
	dir := DataDir()

	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.timeout", "0s")

	v.SetDefault("session.backend", SessionSQLite)
	v.SetDefault("session.path", filepath.Join(dir, "session.db"))
	v.SetDefault("session.file", filepath.Join(dir, "session.toml"))
	v.SetDefault("session.redis.addr", "localhost:6379")
	v.SetDefault("session.redis.db", 0)

	v.SetDefault("chat.greeting", "Hello! I'm your AI assistant. How can I help you today?")
	v.SetDefault("chat.error_notice", "Connection error with the backend.")

	v.SetDefault("admin.concurrency", 8)
	v.SetDefault("admin.user_notice", "1.5s")
	v.SetDefault("admin.conversation_notice", "2s")

	v.SetDefault("ui.markdown", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "file")
	v.SetDefault("log.file_path", filepath.Join(dir, "ai-assistant.log"))

	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.dir", filepath.Join(dir, "audit"))
	v.SetDefault("audit.max_shard_size", 1<<20)
	v.SetDefault("audit.compress", false)
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads cfgFile (or searches the default locations) into a Config.
// A missing config file is not an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath(DataDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid backend.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid backend.base_url %q: scheme must be http or https", c.Backend.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid backend.base_url %q: missing host", c.Backend.BaseURL)
	}
	if c.Backend.Timeout < 0 {
		return errors.New("backend.timeout must not be negative")
	}

	switch c.Session.Backend {
	case SessionSQLite:
		if c.Session.Path == "" {
			return errors.New("session.path is required for the sqlite session backend")
		}
	case SessionFile:
		if c.Session.File == "" {
			return errors.New("session.file is required for the file session backend")
		}
	case SessionRedis:
		if c.Session.Redis.Addr == "" {
			return errors.New("session.redis.addr is required for the redis session backend")
		}
	case SessionMemory:
	default:
		return fmt.Errorf("unknown session.backend %q (want sqlite, file, redis or memory)", c.Session.Backend)
	}

	if c.Admin.Concurrency < 1 {
		return errors.New("admin.concurrency must be at least 1")
	}
	if c.Admin.UserNotice < 0 || c.Admin.ConversationNotice < 0 {
		return errors.New("admin notice durations must not be negative")
	}
	if c.Audit.Enabled && c.Audit.Dir == "" {
		return errors.New("audit.dir is required when audit is enabled")
	}
	if c.Audit.MaxShardSize < 0 {
		return errors.New("audit.max_shard_size must not be negative")
	}
	return nil
}

// Origin is the scheme://host[:port] part of the backend URL. Durable session
// state is namespaced by it.
func (c *Config) Origin() string {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Host == "" {
		return c.Backend.BaseURL
	}
	return u.Scheme + "://" + u.Host
}
