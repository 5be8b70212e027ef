// Package fileops provides atomic file operations and write-safety validation.
//
// This package backs every write the application makes to files it does not
// own outright: the assistant host configuration, netlist exports, and
// snapshot working trees. Writes are atomic (the destination either appears
// fully written or stays unchanged) and destinations are validated against
// reserved system locations before anything touches the disk.
//
// # Atomic Operations
//
// Use AtomicWriteFile() for writes that must never leave a torn file behind:
//
//	err := fileops.AtomicWriteFile(configPath, data, 0600)
//	// configPath appears atomically or remains unchanged on failure
//
// AtomicCopy() transfers an existing file the same way, preserving the
// source's permissions. BackupFile() snapshots a file to <path>.bak before a
// risky overwrite and is a no-op when the file does not exist yet.
//
// # Output Path Validation
//
// User-supplied destinations (for example an export path on the command
// line) go through ValidateOutputPath(), which expands "~/", rejects
// traversal sequences and reserved system directories, and confirms the
// parent directory is writable:
//
//	outPath, err := fileops.ValidateOutputPath("~/exports/netlist.xml")
//	if err != nil {
//	    return fmt.Errorf("invalid output path: %w", err)
//	}
//
// # Directory Operations
//
// EnsureDirectoryExists() creates directories safely with proper permissions (0755).
package fileops
