package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "session.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	t.Run("GetMissing", func(t *testing.T) {
		_, err := store.Get(ctx, "http://localhost:8000", "conversation_id")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("SetAndGet", func(t *testing.T) {
		if err := store.Set(ctx, "http://localhost:8000", "conversation_id", "42"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := store.Get(ctx, "http://localhost:8000", "conversation_id")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != "42" {
			t.Errorf("Get() = %q, want %q", got, "42")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := store.Set(ctx, "http://localhost:8000", "conversation_id", "43"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, _ := store.Get(ctx, "http://localhost:8000", "conversation_id")
		if got != "43" {
			t.Errorf("Get() = %q, want %q", got, "43")
		}
	})

	t.Run("NamespacesAreIsolated", func(t *testing.T) {
		_, err := store.Get(ctx, "http://other:9000", "conversation_id")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() in other namespace error = %v, want ErrNotFound", err)
		}
	})

	t.Run("Keys", func(t *testing.T) {
		keys, err := store.Keys(ctx, "http://localhost:8000")
		if err != nil {
			t.Fatalf("Keys() error = %v", err)
		}
		if len(keys) != 1 || keys[0] != "conversation_id" {
			t.Errorf("Keys() = %v", keys)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, "http://localhost:8000", "conversation_id"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := store.Delete(ctx, "http://localhost:8000", "conversation_id"); err != nil {
			t.Errorf("second Delete() error = %v", err)
		}
		_, err := store.Get(ctx, "http://localhost:8000", "conversation_id")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "session.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, "ns", "k", "v"); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "ns", "k")
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if got != "v" {
		t.Errorf("Get() after reopen = %q, want %q", got, "v")
	}
}

func TestNewSQLiteStore_RequiresPath(t *testing.T) {
	if _, err := NewSQLiteStore(""); err == nil {
		t.Error("NewSQLiteStore(\"\") should fail")
	}
}
