package fileops

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Test helpers

func createTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "fileops_test_")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	return dir
}

func createTestFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
	return path
}

func readFileContent(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Tests for AtomicWriteFile

func TestAtomicWriteFile(t *testing.T) {
	destDir := createTempDir(t)
	defer os.RemoveAll(destDir)

	t.Run("basic write operation", func(t *testing.T) {
		content := "<netlist></netlist>"
		destPath := filepath.Join(destDir, "netlist.xml")

		err := AtomicWriteFile(destPath, []byte(content), 0644)
		if err != nil {
			t.Fatalf("AtomicWriteFile failed: %v", err)
		}

		if !fileExists(destPath) {
			t.Error("Destination file was not created")
		}

		written := readFileContent(t, destPath)
		if written != content {
			t.Errorf("Content mismatch. Expected %q, got %q", content, written)
		}
	})

	t.Run("overwrite existing file", func(t *testing.T) {
		destPath := createTestFile(t, destDir, "existing.json", "old content")

		err := AtomicWriteFile(destPath, []byte("new content"), 0644)
		if err != nil {
			t.Fatalf("AtomicWriteFile failed: %v", err)
		}

		written := readFileContent(t, destPath)
		if written != "new content" {
			t.Errorf("Content not overwritten. Expected %q, got %q", "new content", written)
		}
	})

	t.Run("restrictive permissions", func(t *testing.T) {
		destPath := filepath.Join(destDir, "config.json")

		err := AtomicWriteFile(destPath, []byte("{}"), 0600)
		if err != nil {
			t.Fatalf("AtomicWriteFile failed: %v", err)
		}

		info, err := os.Stat(destPath)
		if err != nil {
			t.Fatalf("Failed to stat destination: %v", err)
		}

		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("File permissions incorrect. Expected 0600, got %v", perm)
		}
	})

	t.Run("no temp files left after write", func(t *testing.T) {
		destPath := filepath.Join(destDir, "clean.xml")

		if err := AtomicWriteFile(destPath, []byte("data"), 0644); err != nil {
			t.Fatalf("AtomicWriteFile failed: %v", err)
		}

		entries, err := os.ReadDir(destDir)
		if err != nil {
			t.Fatalf("Failed to read destination directory: %v", err)
		}

		for _, entry := range entries {
			if strings.HasSuffix(entry.Name(), ".tmp") {
				t.Errorf("Found temp file after successful write: %s", entry.Name())
			}
		}
	})

	t.Run("non-existent destination directory", func(t *testing.T) {
		destPath := filepath.Join(destDir, "missing", "file.xml")

		err := AtomicWriteFile(destPath, []byte("data"), 0644)
		if err == nil {
			t.Error("Expected error for non-existent destination directory")
		}

		if !strings.Contains(err.Error(), "failed to create temporary file") {
			t.Errorf("Expected 'failed to create temporary file' error, got: %v", err)
		}
	})
}

// Tests for AtomicCopy

func TestAtomicCopy(t *testing.T) {
	srcDir := createTempDir(t)
	defer os.RemoveAll(srcDir)
	destDir := createTempDir(t)
	defer os.RemoveAll(destDir)

	t.Run("basic copy operation", func(t *testing.T) {
		content := "Hello, atomic copy world!"
		srcPath := createTestFile(t, srcDir, "source.txt", content)
		destPath := filepath.Join(destDir, "destination.txt")

		err := AtomicCopy(srcPath, destPath)
		if err != nil {
			t.Fatalf("AtomicCopy failed: %v", err)
		}

		if !fileExists(destPath) {
			t.Error("Destination file was not created")
		}

		copiedContent := readFileContent(t, destPath)
		if copiedContent != content {
			t.Errorf("Content mismatch. Expected %q, got %q", content, copiedContent)
		}
	})

	t.Run("overwrite existing file", func(t *testing.T) {
		srcPath := createTestFile(t, srcDir, "new_source.txt", "New content")
		destPath := createTestFile(t, destDir, "existing.txt", "Original content")

		err := AtomicCopy(srcPath, destPath)
		if err != nil {
			t.Fatalf("AtomicCopy failed: %v", err)
		}

		copiedContent := readFileContent(t, destPath)
		if copiedContent != "New content" {
			t.Errorf("Content not overwritten. Expected %q, got %q", "New content", copiedContent)
		}
	})

	t.Run("preserves source permissions", func(t *testing.T) {
		srcPath := filepath.Join(srcDir, "secret.json")
		if err := os.WriteFile(srcPath, []byte("{}"), 0600); err != nil {
			t.Fatalf("Failed to create source file: %v", err)
		}
		destPath := filepath.Join(destDir, "secret_copy.json")

		err := AtomicCopy(srcPath, destPath)
		if err != nil {
			t.Fatalf("AtomicCopy failed: %v", err)
		}

		info, err := os.Stat(destPath)
		if err != nil {
			t.Fatalf("Failed to stat destination: %v", err)
		}

		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("Permissions not preserved. Expected 0600, got %v", perm)
		}
	})

	t.Run("empty file copy", func(t *testing.T) {
		srcPath := createTestFile(t, srcDir, "empty.txt", "")
		destPath := filepath.Join(destDir, "empty_copy.txt")

		err := AtomicCopy(srcPath, destPath)
		if err != nil {
			t.Fatalf("AtomicCopy failed: %v", err)
		}

		copiedContent := readFileContent(t, destPath)
		if copiedContent != "" {
			t.Errorf("Expected empty content, got %q", copiedContent)
		}
	})
}

func TestAtomicCopyErrors(t *testing.T) {
	srcDir := createTempDir(t)
	defer os.RemoveAll(srcDir)
	destDir := createTempDir(t)
	defer os.RemoveAll(destDir)

	t.Run("non-existent source file", func(t *testing.T) {
		srcPath := filepath.Join(srcDir, "nonexistent.txt")
		destPath := filepath.Join(destDir, "dest.txt")

		err := AtomicCopy(srcPath, destPath)
		if err == nil {
			t.Error("Expected error for non-existent source file")
		}

		if !strings.Contains(err.Error(), "failed to open source file") {
			t.Errorf("Expected 'failed to open source file' error, got: %v", err)
		}
	})

	t.Run("source is directory", func(t *testing.T) {
		srcPath := createTempDir(t)
		defer os.RemoveAll(srcPath)
		destPath := filepath.Join(destDir, "dest.txt")

		err := AtomicCopy(srcPath, destPath)
		if err == nil {
			t.Error("Expected error when source is directory")
		}
	})
}

// Tests for BackupFile

func TestBackupFile(t *testing.T) {
	tempDir := createTempDir(t)
	defer os.RemoveAll(tempDir)

	t.Run("missing file needs no backup", func(t *testing.T) {
		backup, err := BackupFile(filepath.Join(tempDir, "never_written.json"))
		if err != nil {
			t.Fatalf("BackupFile failed: %v", err)
		}
		if backup != "" {
			t.Errorf("Expected empty backup path for missing file, got %q", backup)
		}
	})

	t.Run("existing file backed up to .bak", func(t *testing.T) {
		path := createTestFile(t, tempDir, "claude_desktop_config.json", `{"mcpServers":{}}`)

		backup, err := BackupFile(path)
		if err != nil {
			t.Fatalf("BackupFile failed: %v", err)
		}

		if backup != path+".bak" {
			t.Errorf("Expected backup path %q, got %q", path+".bak", backup)
		}

		backupContent := readFileContent(t, backup)
		if backupContent != `{"mcpServers":{}}` {
			t.Errorf("Backup content mismatch: %q", backupContent)
		}
	})

	t.Run("second backup overwrites previous", func(t *testing.T) {
		path := createTestFile(t, tempDir, "rotating.json", "v1")

		if _, err := BackupFile(path); err != nil {
			t.Fatalf("First BackupFile failed: %v", err)
		}

		if err := os.WriteFile(path, []byte("v2"), 0644); err != nil {
			t.Fatalf("Failed to update file: %v", err)
		}

		backup, err := BackupFile(path)
		if err != nil {
			t.Fatalf("Second BackupFile failed: %v", err)
		}

		backupContent := readFileContent(t, backup)
		if backupContent != "v2" {
			t.Errorf("Backup not rotated. Expected %q, got %q", "v2", backupContent)
		}
	})
}

// Tests for EnsureDirectoryExists

func TestEnsureDirectoryExists(t *testing.T) {
	tempDir := createTempDir(t)
	defer os.RemoveAll(tempDir)

	t.Run("create nested directories", func(t *testing.T) {
		dirPath := filepath.Join(tempDir, "nested", "deep", "directory")

		err := EnsureDirectoryExists(dirPath)
		if err != nil {
			t.Fatalf("EnsureDirectoryExists failed: %v", err)
		}

		info, err := os.Stat(dirPath)
		if err != nil {
			t.Fatalf("Nested directory was not created: %v", err)
		}

		if !info.IsDir() {
			t.Error("Created nested path is not a directory")
		}
	})

	t.Run("directory already exists", func(t *testing.T) {
		dirPath := filepath.Join(tempDir, "existing_dir")

		if err := os.Mkdir(dirPath, 0755); err != nil {
			t.Fatalf("Failed to create initial directory: %v", err)
		}

		if err := EnsureDirectoryExists(dirPath); err != nil {
			t.Errorf("EnsureDirectoryExists failed on existing directory: %v", err)
		}
	})

	t.Run("file exists with same name", func(t *testing.T) {
		filePath := createTestFile(t, tempDir, "file_blocking_dir", "content")

		err := EnsureDirectoryExists(filePath)
		if err == nil {
			t.Error("Expected error when file exists with same name as directory")
		}
	})
}
