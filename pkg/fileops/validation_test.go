package fileops

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestValidatePathSecurity(t *testing.T) {
	tempDir := createTempDir(t)
	defer os.RemoveAll(tempDir)

	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "relative path",
			path:    "exports/netlist.xml",
			wantErr: false,
		},
		{
			name:    "absolute path in temp",
			path:    filepath.Join(tempDir, "out.xml"),
			wantErr: false,
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: true,
			errMsg:  "path cannot be empty",
		},
		{
			name:    "whitespace only path",
			path:    "   ",
			wantErr: true,
			errMsg:  "path cannot be empty",
		},
		{
			name:    "parent traversal",
			path:    "../../etc/passwd",
			wantErr: true,
			errMsg:  "path traversal not allowed",
		},
		{
			name:    "embedded traversal",
			path:    "exports/../../secrets",
			wantErr: true,
			errMsg:  "path traversal not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathSecurity(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ValidatePathSecurity(%q) expected error but got none", tt.path)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidatePathSecurity(%q) error = %v, want error containing %q", tt.path, err, tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("ValidatePathSecurity(%q) unexpected error: %v", tt.path, err)
				}
			}
		})
	}

	t.Run("reserved system directory", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("unix-specific reserved path")
		}

		err := ValidatePathSecurity("/etc/shadow")
		if err == nil {
			t.Error("Expected error for path inside reserved system directory")
		}
	})
}

func TestValidateOutputPath(t *testing.T) {
	tempDir := createTempDir(t)
	defer os.RemoveAll(tempDir)

	t.Run("valid destination", func(t *testing.T) {
		path := filepath.Join(tempDir, "netlist.xml")

		resolved, err := ValidateOutputPath(path)
		if err != nil {
			t.Fatalf("ValidateOutputPath failed: %v", err)
		}

		if !filepath.IsAbs(resolved) {
			t.Errorf("Expected absolute path, got %q", resolved)
		}
	})

	t.Run("creates missing parent directory", func(t *testing.T) {
		path := filepath.Join(tempDir, "exports", "deep", "netlist.xml")

		resolved, err := ValidateOutputPath(path)
		if err != nil {
			t.Fatalf("ValidateOutputPath failed: %v", err)
		}

		if !fileExists(filepath.Dir(resolved)) {
			t.Error("Parent directory was not created")
		}
	})

	t.Run("tilde expansion", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("HOME-based expansion")
		}
		t.Setenv("HOME", tempDir)

		resolved, err := ValidateOutputPath("~/tilde_out.xml")
		if err != nil {
			t.Fatalf("ValidateOutputPath failed: %v", err)
		}

		expected := filepath.Join(tempDir, "tilde_out.xml")
		if resolved != expected {
			t.Errorf("ValidateOutputPath() = %q, want %q", resolved, expected)
		}
	})

	t.Run("rejects traversal", func(t *testing.T) {
		_, err := ValidateOutputPath("../../../etc/passwd")
		if err == nil {
			t.Error("Expected error for traversal path")
		}
	})

	t.Run("rejects empty path", func(t *testing.T) {
		_, err := ValidateOutputPath("")
		if err == nil {
			t.Error("Expected error for empty path")
		}
	})

	t.Run("rejects existing directory", func(t *testing.T) {
		_, err := ValidateOutputPath(tempDir)
		if err == nil {
			t.Error("Expected error when destination is an existing directory")
		}
	})
}

func TestExpandPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("HOME-based expansion")
	}

	tempDir := createTempDir(t)
	defer os.RemoveAll(tempDir)
	t.Setenv("HOME", tempDir)

	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "tilde prefix",
			path: "~/Documents/file.txt",
			want: filepath.Join(tempDir, "Documents", "file.txt"),
		},
		{
			name: "absolute path unchanged",
			path: "/var/tmp/file.txt",
			want: "/var/tmp/file.txt",
		},
		{
			name: "relative path unchanged",
			path: "file.txt",
			want: "file.txt",
		},
		{
			name: "bare tilde unchanged",
			path: "~",
			want: "~",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.path); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsReservedDirectory(t *testing.T) {
	t.Run("root is reserved", func(t *testing.T) {
		if !IsReservedDirectory("/") {
			t.Error("Expected root to be reserved")
		}
	})

	t.Run("temp directory is not reserved", func(t *testing.T) {
		tempDir := createTempDir(t)
		defer os.RemoveAll(tempDir)

		if IsReservedDirectory(tempDir) {
			t.Errorf("Temp directory %q should not be reserved", tempDir)
		}
	})

	t.Run("system directories are reserved", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("unix-specific reserved paths")
		}

		for _, path := range []string{"/etc", "/bin"} {
			if !IsReservedDirectory(path) {
				t.Errorf("Expected %q to be reserved", path)
			}
		}
	})

	t.Run("ssh directory is reserved", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skipf("Cannot determine home directory: %v", err)
		}

		if !IsReservedDirectory(filepath.Join(home, ".ssh")) {
			t.Error("Expected ~/.ssh to be reserved")
		}
	})
}

func TestValidateDirectoryWritable(t *testing.T) {
	tempDir := createTempDir(t)
	defer os.RemoveAll(tempDir)

	t.Run("existing writable directory", func(t *testing.T) {
		if err := ValidateDirectoryWritable(tempDir); err != nil {
			t.Errorf("ValidateDirectoryWritable failed on writable directory: %v", err)
		}
	})

	t.Run("creates missing directory", func(t *testing.T) {
		dirPath := filepath.Join(tempDir, "created_by_validation")

		if err := ValidateDirectoryWritable(dirPath); err != nil {
			t.Fatalf("ValidateDirectoryWritable failed: %v", err)
		}

		if !fileExists(dirPath) {
			t.Error("Directory was not created")
		}
	})

	t.Run("cleans up probe file", func(t *testing.T) {
		if err := ValidateDirectoryWritable(tempDir); err != nil {
			t.Fatalf("ValidateDirectoryWritable failed: %v", err)
		}

		if fileExists(filepath.Join(tempDir, ".fileops-test")) {
			t.Error("Probe file was not cleaned up")
		}
	})
}
