package cli

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jasperwreed/ai-assistant/internal/admin"
	"github.com/jasperwreed/ai-assistant/internal/audit"
	"github.com/jasperwreed/ai-assistant/internal/backend"
	"github.com/jasperwreed/ai-assistant/internal/chat"
	"github.com/jasperwreed/ai-assistant/internal/config"
	"github.com/jasperwreed/ai-assistant/internal/logger"
	"github.com/jasperwreed/ai-assistant/internal/session"
)

// deps is everything a command needs, built from configuration.
type deps struct {
	cfg    *config.Config
	client *backend.Client

	store    session.Store
	auditLog *audit.Logger
	logFile  io.Closer
}

// loadConfig resolves configuration from the config file, AI_ASSISTANT_*
// variables and the persistent flags, in increasing priority.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.New()
	if f := cmd.Flags().Lookup("backend"); f != nil {
		_ = v.BindPFlag("backend.base_url", f)
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil {
		_ = v.BindPFlag("log.level", f)
	}

	if cfgFile != "" {
		if err := NewValidator().ValidateFile(cfgFile); err != nil {
			return nil, fmt.Errorf("invalid --config: %w", err)
		}
	}

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}
	if ephemeral {
		cfg.Session.Backend = config.SessionMemory
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadDeps wires logging and the backend client. The session store is opened
// lazily by session(), since admin commands never touch it.
func loadDeps(cmd *cobra.Command, forceFileLog bool) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Log
	if forceFileLog {
		logCfg.Output = "file"
	}
	logFile, err := logger.Init(&logCfg)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("backend", cfg.Backend.BaseURL).
		Str("session", cfg.Session.Backend).
		Msg("configuration loaded")

	client := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	})

	return &deps{cfg: cfg, client: client, logFile: logFile}, nil
}

func (d *deps) session() (session.Store, error) {
	if d.store != nil {
		return d.store, nil
	}
	store, err := session.Open(d.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	d.store = store
	return store, nil
}

func (d *deps) chatController() (*chat.Controller, error) {
	store, err := d.session()
	if err != nil {
		return nil, err
	}
	return chat.NewController(d.client, store,
		chat.WithGreeting(d.cfg.Chat.Greeting),
		chat.WithErrorNotice(d.cfg.Chat.ErrorNotice),
	), nil
}

// recorder opens the audit trail on first use. An audit directory that
// cannot be opened disables auditing rather than failing the command.
func (d *deps) recorder() audit.Recorder {
	if !d.cfg.Audit.Enabled {
		return audit.Discard
	}
	if d.auditLog != nil {
		return d.auditLog
	}
	l, err := audit.NewLogger(d.cfg.Audit.Dir, d.cfg.Origin(), d.cfg.Audit.MaxShardSize, d.cfg.Audit.Compress)
	if err != nil {
		log.Warn().Err(err).Str("dir", d.cfg.Audit.Dir).Msg("audit trail disabled")
		return audit.Discard
	}
	d.auditLog = l
	return l
}

func (d *deps) userAdmin() *admin.UserAdmin {
	return admin.NewUserAdmin(d.client,
		admin.WithNoticeTTL(d.cfg.Admin.UserNotice),
		admin.WithRecorder(d.recorder()),
	)
}

func (d *deps) conversationAdmin() *admin.ConversationAdmin {
	return admin.NewConversationAdmin(d.client, d.userAdmin(),
		admin.WithNoticeTTL(d.cfg.Admin.ConversationNotice),
		admin.WithConcurrency(d.cfg.Admin.Concurrency),
		admin.WithRecorder(d.recorder()),
	)
}

func (d *deps) Close() {
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close session store")
		}
	}
	if d.auditLog != nil {
		if err := d.auditLog.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close audit trail")
		}
	}
	if d.logFile != nil {
		_ = d.logFile.Close()
	}
}
