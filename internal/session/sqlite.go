package session

import (
	"context"
	"errors"

	"github.com/jasperwreed/ai-assistant/internal/storage"
)

// SQLiteStore keeps the token in the local key-value database, one row per
// backend origin.
type SQLiteStore struct {
	kv     *storage.SQLiteStore
	origin string
}

func NewSQLiteStore(path, origin string) (*SQLiteStore, error) {
	kv, err := storage.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{kv: kv, origin: origin}, nil
}

func (s *SQLiteStore) Get(ctx context.Context) (string, bool, error) {
	token, err := s.kv.Get(ctx, s.origin, ConversationKey)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, token string) error {
	return s.kv.Set(ctx, s.origin, ConversationKey, token)
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, s.origin, ConversationKey)
}

func (s *SQLiteStore) Close() error {
	return s.kv.Close()
}
