package reformat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/virtualboard/yaml4rst/internal/config"
	"github.com/virtualboard/yaml4rst/internal/fold"
	"github.com/virtualboard/yaml4rst/internal/template"
	"github.com/virtualboard/yaml4rst/internal/yamlcheck"
)

// ErrUnknownPreset is returned for presets without header definitions.
var ErrUnknownPreset = errors.New("unknown preset")

const maxLineSize = 10 * 1024 * 1024

// HeaderRenderer renders the named template of a preset.
type HeaderRenderer interface {
	Render(preset, name string, data map[string]any) (string, error)
}

// Validator checks that a document is valid YAML.
type Validator interface {
	Validate(content string) error
}

// Reformatter rewrites documents into the fold layout. It holds no per-document state and
// can be shared between goroutines.
type Reformatter struct {
	settings     *config.Settings
	format       fold.Format
	headerEnd    []string
	renderer     HeaderRenderer
	validator    Validator
	log          *logrus.Entry
	lenientFolds bool
}

// Option customises a Reformatter.
type Option func(*Reformatter)

// WithLogger sets the log entry warnings are reported to.
func WithLogger(log *logrus.Entry) Option {
	return func(r *Reformatter) {
		r.log = log
	}
}

// WithRenderer replaces the header template engine.
func WithRenderer(renderer HeaderRenderer) Option {
	return func(r *Reformatter) {
		r.renderer = renderer
	}
}

// WithValidator replaces the YAML validity check.
func WithValidator(validator Validator) Option {
	return func(r *Reformatter) {
		r.validator = validator
	}
}

// WithLenientFolds logs unbalanced folds as warnings instead of failing.
func WithLenientFolds() Option {
	return func(r *Reformatter) {
		r.lenientFolds = true
	}
}

// New builds a reformatter for the given settings. A nil settings value uses the defaults.
func New(settings *config.Settings, opts ...Option) (*Reformatter, error) {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	format, err := fold.ParseFormat(settings.ClosingFoldFormatSpec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidSettings, err)
	}
	headerEnd, ok := headerEndLines[settings.Preset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, settings.Preset)
	}

	r := &Reformatter{
		settings:  settings.Clone(),
		format:    format,
		headerEnd: headerEnd,
		log:       logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithField("component", "reformat")

	if r.renderer == nil {
		engine, err := template.NewEngine(settings.TemplatePath)
		if err != nil {
			return nil, err
		}
		r.renderer = engine
	}
	if r.validator == nil {
		r.validator = yamlcheck.Validator{}
	}
	return r, nil
}

// document carries the state of a single Reformat call.
type document struct {
	settings      *config.Settings
	format        fold.Format
	headerEnd     []string
	renderer      HeaderRenderer
	sectionLevels []string
	varNames      map[string]struct{}
	log           *logrus.Entry
}

func (r *Reformatter) newDocument() *document {
	return &document{
		settings:  r.settings,
		format:    r.format,
		headerEnd: r.headerEnd,
		renderer:  r.renderer,
		varNames:  map[string]struct{}{},
		log:       r.log,
	}
}

// Reformat returns the reformatted version of lines.
func (r *Reformatter) Reformat(lines []string) ([]string, error) {
	return r.reformat(r.newDocument(), lines)
}

// ReformatReader reads, validates and reformats a document.
func (r *Reformatter) ReformatReader(in io.Reader, name string) ([]string, error) {
	lines, err := r.ReadLines(in)
	if err != nil {
		return nil, err
	}
	d := r.newDocument()
	d.log = d.log.WithField("file", name)
	return r.reformat(d, lines)
}

// ReadLines reads a document with trailing whitespace stripped from every line and checks
// that it is valid YAML.
func (r *Reformatter) ReadLines(in io.Reader) ([]string, error) {
	lines, err := ReadLines(in)
	if err != nil {
		return nil, err
	}
	if err := r.validator.Validate(strings.Join(lines, "\n")); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *Reformatter) reformat(d *document, lines []string) ([]string, error) {
	if err := r.checkFolds(d, lines); err != nil {
		return nil, err
	}

	sections, err := Build(lines)
	if err != nil {
		return nil, err
	}
	sections = d.normalizeLegacy(sections, true)
	sections = d.splitVariables(sections)
	sections = sortLevels(sections, 0)
	clearLevels(sections)
	d.addFixmes(sections)

	out := Serialize(sections, d.format)
	if out, err = d.updateHeader(out); err != nil {
		return nil, err
	}
	if out, err = d.removeNeedlessNewlines(out); err != nil {
		return nil, err
	}
	d.checkNamespace()

	if err := r.checkFolds(d, out); err != nil {
		return nil, err
	}
	if err := r.validator.Validate(strings.Join(out, "\n")); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Reformatter) checkFolds(d *document, lines []string) error {
	err := fold.Balance(lines)
	var balanceErr *fold.BalanceError
	if r.lenientFolds && errors.As(err, &balanceErr) {
		d.log.Warn(err.Error())
		return nil
	}
	return err
}

// ReadLines splits r into lines with trailing whitespace removed.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRightFunc(scanner.Text(), unicode.IsSpace))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}

// Join returns the document content terminated by a newline.
func Join(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}
