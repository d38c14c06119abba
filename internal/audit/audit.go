// Package audit keeps a local, append-only trail of the admin mutations this
// client issues against the backend. Events are JSON lines spread over
// size-bounded shard files, optionally gzip-compressed.
package audit

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Actions recorded by the admin controllers.
const (
	ActionUserCreate         = "user.create"
	ActionUserUpdate         = "user.update"
	ActionUserDelete         = "user.delete"
	ActionConversationDelete = "conversation.delete"
	ActionMessageDelete      = "message.delete"
)

// Outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

const (
	DefaultMaxShardSize = 1 << 20

	shardPattern = "shard_*.jsonl*"
	shardLayout  = "20060102_150405.000000000"
)

type Event struct {
	Time    time.Time `json:"time"`
	Action  string    `json:"action"`
	Target  int64     `json:"target,omitempty"`
	Detail  string    `json:"detail,omitempty"`
	Backend string    `json:"backend,omitempty"`
	Outcome string    `json:"outcome"`
	Error   string    `json:"error,omitempty"`
}

// Recorder receives admin events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Record(e Event) error
}

type discard struct{}

func (discard) Record(Event) error { return nil }

// Discard drops every event.
var Discard Recorder = discard{}

// Logger appends events to shard files under a directory.
type Logger struct {
	baseDir      string
	origin       string
	maxShardSize int64
	compress     bool
	now          func() time.Time

	mu      sync.Mutex
	current *shardWriter
}

type shardWriter struct {
	file     *os.File
	writer   *bufio.Writer
	gzWriter *gzip.Writer
	size     int64
	path     string
}

// ShardInfo contains metadata about a shard
type ShardInfo struct {
	Path       string    `json:"path"`
	Modified   time.Time `json:"modified"`
	Size       int64     `json:"size"`
	Compressed bool      `json:"compressed"`
}

// NewLogger opens the newest shard in baseDir for appending, creating the
// directory and a first shard as needed. origin is stamped on every event.
func NewLogger(baseDir, origin string, maxShardSize int64, compress bool) (*Logger, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	if maxShardSize <= 0 {
		maxShardSize = DefaultMaxShardSize
	}

	l := &Logger{
		baseDir:      baseDir,
		origin:       origin,
		maxShardSize: maxShardSize,
		compress:     compress,
		now:          time.Now,
	}

	shards, err := shardPaths(baseDir)
	if err != nil {
		return nil, err
	}
	if n := len(shards); n > 0 && isCompressed(shards[n-1]) == compress {
		err = l.openShard(shards[n-1])
	} else {
		err = l.rotateShard()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open audit shard: %w", err)
	}
	return l, nil
}

// Record writes e as one line and flushes it. Time and Backend are filled in
// when unset.
func (l *Logger) Record(e Event) error {
	if e.Time.IsZero() {
		e.Time = l.now().UTC()
	}
	if e.Backend == "" {
		e.Backend = l.origin
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return fmt.Errorf("audit logger is closed")
	}
	if l.current.size >= l.maxShardSize {
		if err := l.rotateShard(); err != nil {
			return fmt.Errorf("failed to rotate shard: %w", err)
		}
	}

	n, err := l.current.writer.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write to shard: %w", err)
	}
	l.current.size += int64(n)
	return l.current.flush()
}

// rotateShard closes the current shard and starts a new one.
func (l *Logger) rotateShard() error {
	if l.current != nil {
		if err := l.current.close(); err != nil {
			return fmt.Errorf("failed to close current shard: %w", err)
		}
		l.current = nil
	}

	ext := ".jsonl"
	if l.compress {
		ext = ".jsonl.gz"
	}
	name := fmt.Sprintf("shard_%s%s", l.now().UTC().Format(shardLayout), ext)
	return l.openShard(filepath.Join(l.baseDir, name))
}

// openShard appends to path. Appending to a gzip shard adds a new member,
// which gzip readers concatenate transparently.
func (l *Logger) openShard(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create shard file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}

	shard := &shardWriter{file: file, path: path, size: info.Size()}
	if isCompressed(path) {
		shard.gzWriter = gzip.NewWriter(file)
		shard.writer = bufio.NewWriter(shard.gzWriter)
	} else {
		shard.writer = bufio.NewWriter(file)
	}
	l.current = shard
	return nil
}

// Shards lists the shard files in the logger's directory, oldest first.
func (l *Logger) Shards() ([]ShardInfo, error) {
	return Shards(l.baseDir)
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return nil
	}
	err := l.current.close()
	l.current = nil
	return err
}

func (s *shardWriter) flush() error {
	if err := s.writer.Flush(); err != nil {
		return err
	}
	if s.gzWriter != nil {
		return s.gzWriter.Flush()
	}
	return nil
}

func (s *shardWriter) close() error {
	if err := s.flush(); err != nil {
		s.file.Close()
		return err
	}
	if s.gzWriter != nil {
		if err := s.gzWriter.Close(); err != nil {
			s.file.Close()
			return err
		}
	}
	return s.file.Close()
}

// Shards lists the shard files in baseDir, oldest first.
func Shards(baseDir string) ([]ShardInfo, error) {
	paths, err := shardPaths(baseDir)
	if err != nil {
		return nil, err
	}

	var shards []ShardInfo
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		shards = append(shards, ShardInfo{
			Path:       path,
			Modified:   info.ModTime(),
			Size:       info.Size(),
			Compressed: isCompressed(path),
		})
	}
	return shards, nil
}

// shardPaths sorts by name, which embeds the creation time.
func shardPaths(baseDir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(baseDir, shardPattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func isCompressed(path string) bool {
	return filepath.Ext(path) == ".gz"
}
