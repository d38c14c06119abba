package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLogger_RecordAndRead(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "plain"
		if compress {
			name = "gzip"
		}
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			l, err := NewLogger(dir, "http://localhost:8000", 0, compress)
			if err != nil {
				t.Fatalf("Failed to create logger: %v", err)
			}

			events := []Event{
				{Action: ActionUserCreate, Detail: "ana", Outcome: OutcomeOK},
				{Action: ActionConversationDelete, Target: 3, Outcome: OutcomeFailed, Error: "not deleted"},
			}
			for _, e := range events {
				if err := l.Record(e); err != nil {
					t.Fatalf("Record() error = %v", err)
				}
			}
			if err := l.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			got, err := Read(dir, Filter{})
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("Expected 2 events, got %d", len(got))
			}
			if got[0].Action != ActionUserCreate || got[0].Detail != "ana" {
				t.Errorf("first event = %+v", got[0])
			}
			if got[1].Target != 3 || got[1].Error != "not deleted" {
				t.Errorf("second event = %+v", got[1])
			}
			for _, e := range got {
				if e.Backend != "http://localhost:8000" {
					t.Errorf("Backend = %q, want origin", e.Backend)
				}
				if e.Time.IsZero() {
					t.Error("Time was not stamped")
				}
			}
		})
	}
}

func TestLogger_AppendsAcrossReopen(t *testing.T) {
	for _, compress := range []bool{false, true} {
		dir := t.TempDir()
		for i := 0; i < 2; i++ {
			l, err := NewLogger(dir, "", 0, compress)
			if err != nil {
				t.Fatal(err)
			}
			if err := l.Record(Event{Action: ActionMessageDelete, Target: int64(i + 1), Outcome: OutcomeOK}); err != nil {
				t.Fatal(err)
			}
			l.Close()
		}

		shards, err := Shards(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(shards) != 1 {
			t.Errorf("compress=%v: expected a single shard, got %d", compress, len(shards))
		}

		got, err := Read(dir, Filter{})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || got[0].Target != 1 || got[1].Target != 2 {
			t.Errorf("compress=%v: events = %+v", compress, got)
		}
	}
}

func TestLogger_Rotation(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(dir, "", 10, false)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	for i := 0; i < 3; i++ {
		if err := l.Record(Event{Action: ActionUserDelete, Target: int64(i), Outcome: OutcomeOK}); err != nil {
			t.Fatal(err)
		}
		// Shard names carry the creation time.
		time.Sleep(time.Millisecond)
	}

	shards, err := l.Shards()
	if err != nil {
		t.Fatal(err)
	}
	if len(shards) != 3 {
		t.Errorf("Expected 3 shards, got %d", len(shards))
	}

	got, err := Read(dir, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	for i, e := range got {
		if e.Target != int64(i) {
			t.Errorf("event %d has target %d; shards read out of order", i, e.Target)
		}
	}
}

func TestLogger_RecordAfterClose(t *testing.T) {
	l, err := NewLogger(t.TempDir(), "", 0, false)
	if err != nil {
		t.Fatal(err)
	}
	l.Close()
	if err := l.Record(Event{Action: ActionUserCreate}); err == nil {
		t.Error("Record() after Close should fail")
	}
}

func TestFilter(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	e := Event{Time: now, Action: ActionUserUpdate, Outcome: OutcomeFailed}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty", Filter{}, true},
		{"action match", Filter{Action: ActionUserUpdate}, true},
		{"action mismatch", Filter{Action: ActionUserDelete}, false},
		{"outcome mismatch", Filter{Outcome: OutcomeOK}, false},
		{"since before", Filter{Since: now.Add(-time.Hour)}, true},
		{"since after", Filter{Since: now.Add(time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(e); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRead_MissingDirectory(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent"), Filter{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no events, got %d", len(got))
	}
}

func TestRead_CorruptLine(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "shard_20250101_000000.000000000.jsonl"), []byte("{not json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(dir, Filter{}); err == nil {
		t.Error("Read() should report an undecodable line")
	}
}
