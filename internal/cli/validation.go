package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Validator provides methods for validating CLI inputs
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateID parses a backend record id. Ids are positive integers.
func (v *Validator) ValidateID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: must be a number", arg)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be positive", arg)
	}
	return id, nil
}

// ValidateUsername rejects names that are empty after trimming
func (v *Validator) ValidateUsername(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("username cannot be empty")
	}
	return nil
}

// ValidateFormat checks an export format
func (v *Validator) ValidateFormat(format string) error {
	switch format {
	case "json", "markdown":
		return nil
	default:
		return fmt.Errorf("unsupported format %q (want json or markdown)", format)
	}
}

// ValidateFile checks if a file path is valid and exists
func (v *Validator) ValidateFile(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file not found: %w", err)
	}

	if stat.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	return nil
}

// ResolvePath resolves a path to an absolute path
func (v *Validator) ResolvePath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if path == "." {
		return os.Getwd()
	}

	if filepath.IsAbs(path) {
		return path, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return filepath.Join(cwd, path), nil
}
