package util

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// replaceFile is the subset of *os.File behaviour needed by ReplaceFile.
type replaceFile interface {
	Write([]byte) (int, error)
	Close() error
	Name() string
}

// replaceFS abstracts the file-system operations of ReplaceFile.
type replaceFS interface {
	Stat(string) (fs.FileInfo, error)
	ReadFile(string) ([]byte, error)
	MkdirAll(string, fs.FileMode) error
	CreateTemp(string, string) (replaceFile, error)
	Chmod(string, fs.FileMode) error
	Rename(string, string) error
	Remove(string) error
}

type osFS struct{}

func (osFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

func (osFS) ReadFile(name string) ([]byte, error) {
	// #nosec G304 -- callers pass output paths given on the command line
	return os.ReadFile(name)
}

func (osFS) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }

func (osFS) CreateTemp(dir, pattern string) (replaceFile, error) {
	file, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (osFS) Chmod(name string, perm fs.FileMode) error { return os.Chmod(name, perm) }
func (osFS) Rename(oldpath, newpath string) error      { return os.Rename(oldpath, newpath) }
func (osFS) Remove(name string) error                  { return os.Remove(name) }

var defaultFS replaceFS = osFS{}

// ReplaceFile stores data at path unless the file already holds exactly that content. The
// content is written to a temporary file in the same directory and renamed over the target, so
// readers never see a partially reformatted document. An existing file keeps its permissions;
// new files get perm. The returned flag reports whether the file was written.
func ReplaceFile(path string, data []byte, perm fs.FileMode) (bool, error) {
	return replaceWith(defaultFS, path, data, perm)
}

func replaceWith(fsys replaceFS, path string, data []byte, perm fs.FileMode) (bool, error) {
	info, err := fsys.Stat(path)
	switch {
	case err == nil:
		current, err := fsys.ReadFile(path)
		if err != nil {
			return false, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if bytes.Equal(current, data) {
			return false, nil
		}
		perm = info.Mode().Perm()
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("failed to inspect %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := fsys.CreateTemp(dir, ".yaml4rst-*")
	if err != nil {
		return false, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		// #nosec G104 -- cleanup best-effort during write failure
		tmp.Close()
		// #nosec G104 -- cleanup best-effort during write failure
		fsys.Remove(tmpName)
		return false, fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		// #nosec G104 -- cleanup best-effort on close failure
		fsys.Remove(tmpName)
		return false, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := fsys.Chmod(tmpName, perm); err != nil {
		// #nosec G104 -- cleanup best-effort on chmod failure
		fsys.Remove(tmpName)
		return false, fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := fsys.Rename(tmpName, path); err != nil {
		// #nosec G104 -- cleanup best-effort on rename failure
		fsys.Remove(tmpName)
		return false, fmt.Errorf("failed to rename temp file: %w", err)
	}

	return true, nil
}
