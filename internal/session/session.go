// Package session persists the active conversation identifier between runs.
//
// A Store holds at most one opaque token under the fixed key
// ConversationKey. Values are never validated; callers coerce them.
package session

import (
	"context"
	"fmt"

	"github.com/jasperwreed/ai-assistant/internal/config"
)

// ConversationKey is the fixed name the active conversation id is stored under.
const ConversationKey = "conversation_id"

type Store interface {
	// Get returns the stored token and whether one is present.
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Close() error
}

// Open builds the Store selected by cfg.Session.Backend, scoped to the
// backend origin.
func Open(cfg *config.Config) (Store, error) {
	origin := cfg.Origin()

	switch cfg.Session.Backend {
	case config.SessionSQLite:
		store, err := NewSQLiteStore(cfg.Session.Path, origin)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.SessionFile:
		return NewFileStore(cfg.Session.File, origin), nil
	case config.SessionRedis:
		store, err := NewRedisStore(cfg.Session.Redis, origin)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.SessionMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
