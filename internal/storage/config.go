package storage

import (
	"fmt"
	"time"
)

// Config holds database configuration settings
type Config struct {
	MaxOpenConns int
	MaxIdleConns int
	BusyTimeout  time.Duration
	CacheSizeKB  int
}

// DefaultConfig returns default database configuration
func DefaultConfig() *Config {
	return &Config{
		MaxOpenConns: 2,
		MaxIdleConns: 2,
		BusyTimeout:  5 * time.Second,
		CacheSizeKB:  2000,
	}
}

// pragmas returns SQLite PRAGMA statements based on configuration
func (c *Config) pragmas() []string {
	return []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = " + fmt.Sprintf("%d", c.BusyTimeout.Milliseconds()),
		"PRAGMA cache_size = -" + fmt.Sprintf("%d", c.CacheSizeKB),
	}
}
