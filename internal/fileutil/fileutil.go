// Package fileutil provides small filesystem helpers shared by the cache,
// state and scheduler packages.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to path by first writing a sibling temp file and
// then renaming it into place. Readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// RenameOrReuse renames src onto dst. When dst already exists the rename is
// skipped and src is removed, so concurrent producers of identical content
// settle on the first completed copy.
func RenameOrReuse(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return os.RemoveAll(src)
	}
	if err := os.Rename(src, dst); err != nil {
		if _, statErr := os.Stat(dst); statErr == nil {
			return os.RemoveAll(src)
		}
		return fmt.Errorf("rename %q to %q: %w", src, dst, err)
	}
	return nil
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
