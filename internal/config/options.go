package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
)

// ctxKeyOptions is used to store options within a cobra command context.
type ctxKeyOptions struct{}

// Options contains global flags shared by all commands.
type Options struct {
	JSONOutput   bool
	Verbose      bool
	Debug        bool
	Quiet        bool
	LogFile      string
	SettingsFile string

	logger   *logrus.Logger
	warnings *WarningCounter
	logClose func() error
}

var (
	optionsMu sync.RWMutex
	current   *Options
)

// New creates a new Options instance populated with defaults.
func New() *Options {
	return &Options{}
}

// Level returns the log level selected by the verbosity flags. Debug wins over verbose, and
// verbose wins over quiet.
func (o *Options) Level() logrus.Level {
	switch {
	case o.Debug:
		return logrus.DebugLevel
	case o.Verbose:
		return logrus.InfoLevel
	case o.Quiet:
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

// Init populates options and configures logging.
func (o *Options) Init(jsonOut, verbose, debug, quiet bool, logFile, settingsFile string) error {
	o.JSONOutput = jsonOut
	o.Verbose = verbose
	o.Debug = debug
	o.Quiet = quiet
	o.LogFile = logFile
	o.SettingsFile = settingsFile

	var output io.Writer = os.Stderr
	if logFile != "" {
		// #nosec G304 -- log file path provided via command flag
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		output = f
		o.logClose = f.Close
	}

	o.logger, o.warnings = NewLogger(output, o.Level(), jsonOut)
	SetCurrent(o)

	return nil
}

// NewLogger builds a logger writing entries up to level to w. Warnings are always counted,
// even when level hides them.
func NewLogger(w io.Writer, level logrus.Level, jsonOut bool) (*logrus.Logger, *WarningCounter) {
	logger := logrus.New()
	if jsonOut {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	logger.SetOutput(io.Discard)
	logger.SetLevel(max(level, logrus.WarnLevel))
	logger.AddHook(&writer.Hook{
		Writer:    w,
		LogLevels: logrus.AllLevels[:level+1],
	})

	counter := &WarningCounter{}
	logger.AddHook(counter)
	return logger, counter
}

// WarningCounter is a logrus hook counting warning entries.
type WarningCounter struct {
	count atomic.Int64
}

// Levels implements logrus.Hook.
func (c *WarningCounter) Levels() []logrus.Level {
	return []logrus.Level{logrus.WarnLevel}
}

// Fire implements logrus.Hook.
func (c *WarningCounter) Fire(*logrus.Entry) error {
	c.count.Add(1)
	return nil
}

// Count returns the number of warnings logged so far.
func (c *WarningCounter) Count() int {
	return int(c.count.Load())
}

// Settings resolves the reformatter settings: the settings file (explicit or the default
// file when present), then the preset flag, then key=value overrides.
func (o *Options) Settings(preset string, overrides []string) (*Settings, error) {
	settings := DefaultSettings()

	path := o.SettingsFile
	if path == "" {
		if _, err := os.Stat(DefaultSettingsFile); err == nil {
			path = DefaultSettingsFile
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to inspect %s: %w", DefaultSettingsFile, err)
		}
	}
	if path != "" {
		loaded, err := LoadSettings(path)
		if err != nil {
			return nil, err
		}
		settings = loaded
	}

	if preset != "" {
		settings.Preset = preset
	}
	if len(overrides) > 0 {
		kv, err := ParseKV(strings.Join(overrides, ", "))
		if err != nil {
			return nil, err
		}
		if err := settings.Apply(kv); err != nil {
			return nil, err
		}
	}

	settings.AutoComplete(o.Logger().WithField("component", "config"))
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// SetCurrent stores the provided options as the globally accessible configuration.
func SetCurrent(o *Options) {
	optionsMu.Lock()
	defer optionsMu.Unlock()
	current = o
}

// Current retrieves the globally stored options.
func Current() (*Options, error) {
	optionsMu.RLock()
	defer optionsMu.RUnlock()
	if current == nil {
		return nil, fmt.Errorf("configuration not initialised")
	}
	return current, nil
}

// Close releases any resources held by options (e.g., log files).
func (o *Options) Close() error {
	if o.logClose != nil {
		return o.logClose()
	}
	return nil
}

// WithContext returns a new context with the options stored.
func (o *Options) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKeyOptions{}, o)
}

// FromContext extracts Options from command context.
func FromContext(ctx context.Context) (*Options, error) {
	if ctx == nil {
		return nil, fmt.Errorf("nil context provided")
	}
	if opts, ok := ctx.Value(ctxKeyOptions{}).(*Options); ok {
		return opts, nil
	}
	return Current()
}

// Logger exposes the configured logger. Options that were never initialised log to stderr.
func (o *Options) Logger() *logrus.Logger {
	if o.logger == nil {
		o.logger, o.warnings = NewLogger(os.Stderr, o.Level(), o.JSONOutput)
	}
	return o.logger
}

// Warnings returns the number of warnings logged through Logger.
func (o *Options) Warnings() int {
	if o.warnings == nil {
		return 0
	}
	return o.warnings.Count()
}
