package fileops

import (
	"fmt"
	"io"
	"os"
)

// AtomicWriteFile writes data to a file atomically. The destination either
// appears fully written or stays unchanged, never half-written.
//
// The function uses a temporary file approach:
//  1. Writes all data to a temporary file next to the destination
//  2. Syncs data to disk to ensure durability
//  3. Atomically renames the temporary file to the final destination
//
// Parameters:
//   - destPath: Absolute path to the destination file
//   - data: File contents to write
//   - perm: Permission bits for the destination file
//
// Returns:
//   - error: Write, sync, or rename errors; temporary files are cleaned up
//     on any failure
//
// Note: This function requires write permissions in the destination
// directory and will overwrite existing files without warning.
func AtomicWriteFile(destPath string, data []byte, perm os.FileMode) error {
	tempPath := destPath + ".tmp"
	tempFile, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	// Ensure cleanup of temp file if anything goes wrong
	var writeSuccess bool
	defer func() {
		tempFile.Close()
		if !writeSuccess {
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write file contents: %w", err)
	}

	// Sync to ensure data is written to disk
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	// Close temp file before rename
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	// Atomic rename - this is the atomic operation
	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	writeSuccess = true
	return nil
}

// AtomicCopy performs an atomic file copy operation from source to
// destination, preserving the source file's permission bits. The
// destination file either appears fully copied or not at all.
//
// Parameters:
//   - srcPath: Absolute path to the source file
//   - destPath: Absolute path to the destination file
//
// Returns:
//   - error: Copy operation errors, including source access, destination
//     creation, or filesystem errors
//
// Security considerations:
//   - Both paths should be validated before calling this function
//   - The function does not perform path traversal validation
//   - Temporary files are cleaned up on any failure
func AtomicCopy(srcPath, destPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}

	// Create temporary file in same directory as destination
	tempPath := destPath + ".tmp"
	tempFile, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	var copySuccess bool
	defer func() {
		tempFile.Close()
		if !copySuccess {
			os.Remove(tempPath)
		}
	}()

	if _, err := io.Copy(tempFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	copySuccess = true
	return nil
}

// BackupFile copies an existing file to <path>.bak before a risky
// overwrite. If the file does not exist there is nothing to back up and
// the function returns an empty path with no error.
//
// Parameters:
//   - path: Path to the file to back up
//
// Returns:
//   - string: Path of the backup file, or "" when no backup was needed
//   - error: Copy errors
//
// Usage example:
//
//	backup, err := fileops.BackupFile(hostConfigPath)
//	if err != nil {
//	    return fmt.Errorf("backup failed: %w", err)
//	}
func BackupFile(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to stat file for backup: %w", err)
	}

	backupPath := path + ".bak"
	if err := AtomicCopy(path, backupPath); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	return backupPath, nil
}

// EnsureDirectoryExists creates a directory and all necessary parent
// directories. This is equivalent to `mkdir -p` and is safe to call
// multiple times.
//
// The function sets directory permissions to 0755 (readable and executable
// by all, writable by owner only).
func EnsureDirectoryExists(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
