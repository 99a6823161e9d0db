package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestOptionsInitWithLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "yaml4rst.log")
	opts := New()
	if err := opts.Init(false, true, false, false, logPath, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	opts.Logger().Info("hello")
	if err := opts.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("expected log entry, got %q", data)
	}
}

func TestOptionsInitErrors(t *testing.T) {
	opts := New()
	if err := opts.Init(false, false, false, false, filepath.Join(t.TempDir(), "missing", "x.log"), ""); err == nil {
		t.Fatalf("expected error for unwritable log file")
	}

	SetCurrent(nil)
	if _, err := Current(); err == nil {
		t.Fatalf("expected error when current not set")
	}

	goodOpts := New()
	if err := goodOpts.Init(true, false, false, false, "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cur, err := Current()
	if err != nil || cur != goodOpts {
		t.Fatalf("unexpected current: %v %v", cur, err)
	}

	ctx := goodOpts.WithContext(context.Background())
	fromCtx, err := FromContext(ctx)
	if err != nil || fromCtx != goodOpts {
		t.Fatalf("unexpected options from context: %v %v", fromCtx, err)
	}
	SetCurrent(nil)
}

func TestOptionsLevel(t *testing.T) {
	cases := []struct {
		opts  Options
		level logrus.Level
	}{
		{Options{}, logrus.WarnLevel},
		{Options{Quiet: true}, logrus.ErrorLevel},
		{Options{Verbose: true}, logrus.InfoLevel},
		{Options{Debug: true, Quiet: true}, logrus.DebugLevel},
	}
	for _, tc := range cases {
		if got := tc.opts.Level(); got != tc.level {
			t.Fatalf("expected %s for %+v, got %s", tc.level, tc.opts, got)
		}
	}
}

func TestNewLoggerQuietCountsWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger, counter := NewLogger(&buf, logrus.ErrorLevel, false)

	logger.Warn("first warning")
	logger.WithField("file", "defaults/main.yml").Warn("second warning")
	logger.Info("info is dropped")
	logger.Error("an error")

	if counter.Count() != 2 {
		t.Fatalf("expected 2 warnings, got %d", counter.Count())
	}
	out := buf.String()
	if strings.Contains(out, "warning") || strings.Contains(out, "info is dropped") {
		t.Fatalf("quiet logger leaked entries: %q", out)
	}
	if !strings.Contains(out, "an error") {
		t.Fatalf("expected error entry, got %q", out)
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, counter := NewLogger(&buf, logrus.WarnLevel, true)
	logger.WithField("component", "reformat").Warn("careful")

	if counter.Count() != 1 {
		t.Fatalf("expected 1 warning, got %d", counter.Count())
	}
	if !strings.Contains(buf.String(), `"component":"reformat"`) {
		t.Fatalf("expected JSON entry, got %q", buf.String())
	}
}

func TestOptionsSettingsResolution(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yml")
	content := "wanted_empty_lines_between_items: 1\nansible_full_role_name: debops.apt\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	opts := New()
	opts.SettingsFile = path
	settings, err := opts.Settings("", []string{"add_string_for_missing_comment=", "role_doc=apt; wanted_empty_lines_between_items=3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.WantedEmptyLines != 3 {
		t.Fatalf("expected override to win, got %d", settings.WantedEmptyLines)
	}
	if settings.MissingCommentPlaceholder != "" {
		t.Fatalf("expected empty placeholder, got %q", settings.MissingCommentPlaceholder)
	}
	if settings.AnsibleRoleOwner != "debops" || settings.AnsibleRoleName != "apt" {
		t.Fatalf("expected auto completed role, got %+v", settings)
	}
	if settings.Vars["role_doc"] != "apt" {
		t.Fatalf("expected free-form variable, got %+v", settings.Vars)
	}

	if _, err := opts.Settings("", []string{"broken"}); err == nil {
		t.Fatalf("expected error for malformed override")
	}

	opts.SettingsFile = filepath.Join(dir, "missing.yml")
	if _, err := opts.Settings("", nil); err == nil {
		t.Fatalf("expected error for missing settings file")
	}
}
