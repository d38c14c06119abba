package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// FileStore keeps tokens in a TOML document keyed by backend origin:
//
//	["http://localhost:8000"]
//	conversation_id = "42"
type FileStore struct {
	path   string
	origin string
	mu     sync.Mutex
}

type fileDocument map[string]map[string]string

func NewFileStore(path, origin string) *FileStore {
	return &FileStore{path: path, origin: origin}
}

func (s *FileStore) Get(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return "", false, err
	}
	token, ok := doc[s.origin][ConversationKey]
	return token, ok, nil
}

func (s *FileStore) Set(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if doc[s.origin] == nil {
		doc[s.origin] = map[string]string{}
	}
	doc[s.origin][ConversationKey] = token
	return s.write(doc)
}

func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := doc[s.origin][ConversationKey]; !ok {
		return nil
	}
	delete(doc[s.origin], ConversationKey)
	if len(doc[s.origin]) == 0 {
		delete(doc, s.origin)
	}
	return s.write(doc)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) read() (fileDocument, error) {
	doc := fileDocument{}
	if _, err := toml.DecodeFile(s.path, &doc); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileDocument{}, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	return doc, nil
}

// write replaces the file atomically through a temp file in the same dir.
func (s *FileStore) write(doc fileDocument) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
