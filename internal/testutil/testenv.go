package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/virtualboard/yaml4rst/internal/config"
)

// Fixture provides a temporary role directory with a settings file.
type Fixture struct {
	Root string
}

// NewFixture initialises a role workspace whose settings name the role role_owner.role_name.
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	root := t.TempDir()

	if err := os.MkdirAll(filepath.Join(root, "defaults"), 0o750); err != nil {
		t.Fatalf("failed to create defaults directory: %v", err)
	}

	settings := "preset: debops/ansible\nansible_full_role_name: role_owner.role_name\n"
	if err := os.WriteFile(filepath.Join(root, config.DefaultSettingsFile), []byte(settings), 0o600); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}

	return &Fixture{Root: root}
}

// Options returns cli options initialised for the fixture. Logs go to log.txt in the root.
func (f *Fixture) Options(t *testing.T, jsonOut, verbose, quiet bool) *config.Options {
	t.Helper()
	opts := config.New()
	if err := opts.Init(jsonOut, verbose, false, quiet, f.Path("log.txt"), f.Path(config.DefaultSettingsFile)); err != nil {
		t.Fatalf("failed to init options: %v", err)
	}
	t.Cleanup(func() {
		_ = opts.Close()
		config.SetCurrent(nil)
	})
	return opts
}

// WriteFile writes a file relative to the fixture root and returns its path.
func (f *Fixture) WriteFile(t *testing.T, relative string, data []byte) string {
	t.Helper()
	path := f.Path(relative)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

// ReadFile reads a file relative to the fixture root.
func (f *Fixture) ReadFile(t *testing.T, relative string) string {
	t.Helper()
	// #nosec G304 -- path inside the test fixture
	data, err := os.ReadFile(f.Path(relative))
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	return string(data)
}

// Path resolves a path relative to the fixture root.
func (f *Fixture) Path(parts ...string) string {
	return filepath.Join(append([]string{f.Root}, parts...)...)
}
