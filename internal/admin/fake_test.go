package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jasperwreed/ai-assistant/internal/audit"
	"github.com/jasperwreed/ai-assistant/internal/backend"
)

// fakeServer is an in-memory stand-in for the admin endpoints.
type fakeServer struct {
	mu       sync.Mutex
	users    []map[string]any
	convs    []map[string]any
	messages map[int64][]map[string]any
	nextID   int64
	requests []string

	// deleteBody overrides the JSON body returned by DELETE handlers.
	deleteBody string
	// failPaths answers 500 for any request whose path has one of these prefixes.
	failPaths []string
}

func newFakeServer(t *testing.T) (*fakeServer, *backend.Client) {
	t.Helper()
	f := &fakeServer{messages: map[int64][]map[string]any{}, nextID: 100}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, backend.NewClient(backend.Config{BaseURL: srv.URL})
}

func (f *fakeServer) addUser(id int64, name string) {
	f.users = append(f.users, map[string]any{"id": id, "username": name, "created_at": "2025-01-02T03:04:05"})
}

func (f *fakeServer) addConversation(id int64, msgs ...string) {
	f.convs = append(f.convs, map[string]any{"id": id, "created_at": "2025-01-02T03:04:05"})
	for _, content := range msgs {
		f.nextID++
		f.messages[id] = append(f.messages[id], map[string]any{"id": f.nextID, "role": "user", "content": content})
	}
}

func (f *fakeServer) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeServer) count(method, prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if strings.HasPrefix(r, method+" "+prefix) {
			n++
		}
	}
	return n
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	for _, p := range f.failPaths {
		if strings.HasPrefix(r.URL.Path, p) {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	var id int64
	if parts[2] != "" {
		id, _ = strconv.ParseInt(parts[2], 10, 64)
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/admin/users":
		writeJSON(w, f.users)
	case r.Method == http.MethodPost && r.URL.Path == "/admin/users":
		var in struct{ Username string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		for _, u := range f.users {
			if u["username"] == in.Username {
				http.Error(w, "username already exists", http.StatusBadRequest)
				return
			}
		}
		f.nextID++
		f.addUser(f.nextID, in.Username)
		writeJSON(w, f.users[len(f.users)-1])
	case r.Method == http.MethodPut && parts[1] == "users":
		var in struct{ Username string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		for _, u := range f.users {
			if u["id"] == id {
				u["username"] = in.Username
				writeJSON(w, u)
				return
			}
		}
		http.Error(w, "not found", http.StatusNotFound)
	case r.Method == http.MethodDelete && parts[1] == "users":
		if f.deleteBody != "" {
			fmt.Fprint(w, f.deleteBody)
			return
		}
		f.users = removeID(f.users, id)
		writeJSON(w, map[string]any{"deleted": true})
	case r.Method == http.MethodGet && r.URL.Path == "/admin/conversations":
		writeJSON(w, f.convs)
	case r.Method == http.MethodGet && parts[1] == "messages":
		msgs := f.messages[id]
		if msgs == nil {
			msgs = []map[string]any{}
		}
		writeJSON(w, msgs)
	case r.Method == http.MethodDelete && parts[1] == "conversations":
		if f.deleteBody != "" {
			fmt.Fprint(w, f.deleteBody)
			return
		}
		f.convs = removeID(f.convs, id)
		delete(f.messages, id)
		writeJSON(w, map[string]any{"deleted": true})
	case r.Method == http.MethodDelete && parts[1] == "messages":
		if f.deleteBody != "" {
			fmt.Fprint(w, f.deleteBody)
			return
		}
		for conv, msgs := range f.messages {
			f.messages[conv] = removeID(msgs, id)
		}
		writeJSON(w, map[string]any{"deleted": true})
	default:
		http.NotFound(w, r)
	}
}

func removeID(items []map[string]any, id int64) []map[string]any {
	out := items[:0]
	for _, item := range items {
		if item["id"] != id {
			out = append(out, item)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingConfirmer struct {
	answer  bool
	prompts []string
}

func (c *countingConfirmer) Confirm(prompt string) bool {
	c.prompts = append(c.prompts, prompt)
	return c.answer
}

type memoryRecorder struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (r *memoryRecorder) Record(e audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *memoryRecorder) Events() []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audit.Event(nil), r.events...)
}
