// Package state persists the directories used in the previous session.
package state

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// DefaultFile is the record's location relative to the working directory.
const DefaultFile = "config.txt"

const (
	keyInputDir  = "last_input_dir"
	keyExportDir = "last_export_dir"
)

// Record holds the last input and export directories.
type Record struct {
	LastInputDir  string
	LastExportDir string
}

// Store reads and writes a Record file on Fs.
type Store struct {
	Fs   afero.Fs
	Path string
}

// NewStore returns a Store for path on the OS filesystem.
func NewStore(path string) Store {
	return Store{Fs: afero.NewOsFs(), Path: path}
}

// Load reads the record at path on the OS filesystem.
func Load(path string) (Record, error) { return NewStore(path).Load() }

// Save writes the record to path on the OS filesystem.
func Save(path string, r Record) error { return NewStore(path).Save(r) }

// Load reads the record. A missing file or missing keys leave the
// corresponding fields empty and are not errors.
func (s Store) Load() (Record, error) {
	data, err := afero.ReadFile(s.Fs, s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("read state: %w", err)
	}
	var r Record
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		key, val, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case keyInputDir:
			r.LastInputDir = strings.TrimSpace(val)
		case keyExportDir:
			r.LastExportDir = strings.TrimSpace(val)
		}
	}
	if err := sc.Err(); err != nil {
		return Record{}, fmt.Errorf("read state: %w", err)
	}
	return r, nil
}

// Save overwrites the file with the record's two lines.
func (s Store) Save(r Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s=%s\n", keyInputDir, r.LastInputDir)
	fmt.Fprintf(&b, "%s=%s\n", keyExportDir, r.LastExportDir)
	if err := afero.WriteFile(s.Fs, s.Path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
