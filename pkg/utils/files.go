package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteFileAtomic writes data to a temp file next to path and renames it into
// place, so readers never see a partially written report.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// OutputBase joins dir and a sanitised base name, without extension.
func OutputBase(dir, base string) string {
	name := SafeName(base)
	if name == "" {
		name = "security_report"
	}
	return filepath.Join(dir, name)
}

// OutputPath joins dir, base and the format extension, e.g. reports/security_report.pdf.
func OutputPath(dir, base, ext string) string {
	return OutputBase(dir, base) + "." + strings.TrimPrefix(ext, ".")
}

// SafeName replaces characters not safe for file paths
func SafeName(s string) string {
	invalid := []rune{'/', '\\', ':', '*', '?', '"', '<', '>', '|'}
	rs := []rune(strings.TrimSpace(s))
	for i, r := range rs {
		for _, bad := range invalid {
			if r == bad {
				rs[i] = '_'
			}
		}
	}
	return string(rs)
}
