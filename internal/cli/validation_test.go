package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidator_ValidateID(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		arg     string
		want    int64
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid id",
			arg:  "42",
			want: 42,
		},
		{
			name: "surrounding spaces",
			arg:  " 7 ",
			want: 7,
		},
		{
			name:    "not a number",
			arg:     "abc",
			wantErr: true,
			errMsg:  "must be a number",
		},
		{
			name:    "zero",
			arg:     "0",
			wantErr: true,
			errMsg:  "must be positive",
		},
		{
			name:    "negative",
			arg:     "-3",
			wantErr: true,
			errMsg:  "must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateID(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidateID() error message = %v, want to contain %v", err.Error(), tt.errMsg)
			}
			if got != tt.want {
				t.Errorf("ValidateID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidator_ValidateUsername(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{name: "plain name", username: "ana"},
		{name: "name with spaces", username: "ana maria"},
		{name: "empty", username: "", wantErr: true},
		{name: "whitespace only", username: "  \t", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_ValidateFormat(t *testing.T) {
	v := NewValidator()

	for _, format := range []string{"json", "markdown"} {
		if err := v.ValidateFormat(format); err != nil {
			t.Errorf("ValidateFormat(%q) error = %v", format, err)
		}
	}
	if err := v.ValidateFormat("csv"); err == nil {
		t.Error("ValidateFormat(\"csv\") should fail")
	}
}

func TestValidator_ValidateFile(t *testing.T) {
	v := NewValidator()

	// Create temp directory and file for testing
	tempDir, err := os.MkdirTemp("", "test-validate-file-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tempDir)

	tempFile := filepath.Join(tempDir, "testfile.txt")
	if err := os.WriteFile(tempFile, []byte("test content"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid file",
			path:    tempFile,
			wantErr: false,
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: true,
			errMsg:  "file path cannot be empty",
		},
		{
			name:    "directory instead of file",
			path:    tempDir,
			wantErr: true,
			errMsg:  "path is a directory, not a file",
		},
		{
			name:    "non-existent file",
			path:    "/non/existent/file.txt",
			wantErr: true,
			errMsg:  "file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateFile(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFile() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && tt.errMsg != "" && err != nil {
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidateFile() error message = %v, want to contain %v", err.Error(), tt.errMsg)
				}
			}
		})
	}
}

func TestValidator_ResolvePath(t *testing.T) {
	v := NewValidator()

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{
			name:    "empty path",
			path:    "",
			want:    "",
			wantErr: false,
		},
		{
			name:    "current directory",
			path:    ".",
			want:    cwd,
			wantErr: false,
		},
		{
			name:    "absolute path",
			path:    "/usr/local/bin",
			want:    "/usr/local/bin",
			wantErr: false,
		},
		{
			name:    "relative path",
			path:    "subdir",
			want:    filepath.Join(cwd, "subdir"),
			wantErr: false,
		},
		{
			name:    "relative path with parent",
			path:    "../test",
			want:    filepath.Join(filepath.Dir(cwd), "test"),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ResolvePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ResolvePath() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ResolvePath() = %v, want %v", got, tt.want)
			}
		})
	}
}
