package audit

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// shardReader reads from audit shards
type shardReader struct {
	file     *os.File
	reader   *bufio.Reader
	gzReader *gzip.Reader
}

func openShard(path string) (*shardReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shard: %w", err)
	}

	r := &shardReader{file: file}
	if isCompressed(path) {
		gzReader, err := gzip.NewReader(file)
		if errors.Is(err, io.EOF) {
			// Created but never written.
			r.reader = bufio.NewReader(bytes.NewReader(nil))
			return r, nil
		}
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		r.gzReader = gzReader
		r.reader = bufio.NewReader(gzReader)
	} else {
		r.reader = bufio.NewReader(file)
	}
	return r, nil
}

func (r *shardReader) readLine() ([]byte, error) {
	line, err := r.reader.ReadBytes('\n')
	if err == io.EOF && len(line) > 0 {
		return line, nil
	}
	return line, err
}

func (r *shardReader) close() error {
	if r.gzReader != nil {
		r.gzReader.Close()
	}
	return r.file.Close()
}

// Iterator provides sequential access to the events of every shard in a
// directory, oldest shard first.
type Iterator struct {
	shards       []string
	currentIndex int
	current      *shardReader
}

func NewIterator(baseDir string) (*Iterator, error) {
	shards, err := shardPaths(baseDir)
	if err != nil {
		return nil, err
	}
	return &Iterator{shards: shards, currentIndex: -1}, nil
}

// Next returns the next event across all shards, or io.EOF.
func (it *Iterator) Next() (Event, error) {
	for {
		if it.current != nil {
			line, err := it.current.readLine()
			if err == nil {
				line = bytes.TrimSpace(line)
				if len(line) == 0 {
					continue
				}
				var e Event
				if err := json.Unmarshal(line, &e); err != nil {
					return Event{}, fmt.Errorf("failed to decode event: %w", err)
				}
				return e, nil
			}
			if err != io.EOF {
				return Event{}, err
			}
			it.current.close()
			it.current = nil
		}

		it.currentIndex++
		if it.currentIndex >= len(it.shards) {
			return Event{}, io.EOF
		}

		shard, err := openShard(it.shards[it.currentIndex])
		if err != nil {
			return Event{}, err
		}
		it.current = shard
	}
}

func (it *Iterator) Close() error {
	if it.current != nil {
		return it.current.close()
	}
	return nil
}

// Filter selects events. Zero fields match everything.
type Filter struct {
	Action  string
	Outcome string
	Since   time.Time
}

func (f Filter) Match(e Event) bool {
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.Outcome != "" && e.Outcome != f.Outcome {
		return false
	}
	if !f.Since.IsZero() && e.Time.Before(f.Since) {
		return false
	}
	return true
}

// Read returns the events in baseDir matching filter, oldest first. A missing
// directory yields no events.
func Read(baseDir string, filter Filter) ([]Event, error) {
	it, err := NewIterator(baseDir)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var events []Event
	for {
		e, err := it.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		if filter.Match(e) {
			events = append(events, e)
		}
	}
}
