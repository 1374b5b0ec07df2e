// Package atomicfile writes files so that a reader never observes a
// partial document: a temp file in the same directory is written and
// fsynced, then renamed over the destination. WriteWithBackup also keeps
// a single prior revision for rollback when post-write validation fails.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write writes data to path via a temp-file-then-rename, so a crash
// mid-write never leaves a partial file at path.
func Write(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// BackupPath returns the one-slot rollback path for path.
func BackupPath(path string) string {
	return path + ".backup"
}

// WriteWithBackup snapshots the current contents of path to its backup
// slot (if path exists), then atomically writes data, then calls
// validate on the new bytes. If validate fails, the backup is restored
// over path and an error is returned; the caller's write is rolled back
// rather than left corrupt.
func WriteWithBackup(path string, data []byte, perm os.FileMode, validate func([]byte) error) error {
	if existing, err := os.ReadFile(path); err == nil {
		if err := Write(BackupPath(path), existing, perm); err != nil {
			return fmt.Errorf("snapshot backup: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read existing for backup: %w", err)
	}

	if err := Write(path, data, perm); err != nil {
		return err
	}

	if validate == nil {
		return nil
	}

	written, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("re-read after write: %w", err)
	}
	if err := validate(written); err != nil {
		if restoreErr := Restore(path); restoreErr != nil {
			return fmt.Errorf("validation failed (%w) and restore failed (%v)", err, restoreErr)
		}
		return fmt.Errorf("validation failed, restored backup: %w", err)
	}
	return nil
}

// Restore copies the backup slot back over path, if a backup exists.
func Restore(path string) error {
	backup := BackupPath(path)
	data, err := os.ReadFile(backup)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	info, err := os.Stat(backup)
	perm := os.FileMode(0o644)
	if err == nil {
		perm = info.Mode()
	}
	return Write(path, data, perm)
}
