// Package parquetstore persists the job tables as single Parquet files that are
// replaced atomically on every save.
package parquetstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// readTable returns found=false when path does not exist.
func readTable[T any](path string) ([]T, bool, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, true, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, true, nil
}

// writeTable replaces path with a file holding rows. The table is written to a
// temporary file next to path and renamed over it, so a failure at any step
// leaves the previous file untouched.
func writeTable[T any](path string, rows []T) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := parquet.NewGenericWriter[T](tmp)
	if _, err = w.Write(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
