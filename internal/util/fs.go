package util

import (
	"errors"
	"os"

	"go.uber.org/multierr"
)

// EnsureDir creates the directory path if it does not exist.
func EnsureDir(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// RemoveIfExists deletes the file if present.
func RemoveIfExists(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// RemoveAll deletes every path, continuing past failures. Missing files are
// not an error. All failures are combined into the returned error.
func RemoveAll(paths []string) error {
	var err error
	for _, p := range paths {
		err = multierr.Append(err, RemoveIfExists(p))
	}
	return err
}

// IsRegularFile reports whether path exists and is a regular file.
func IsRegularFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
