package template

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"
	"text/template"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUndefined is matched by errors about variables missing from the template data.
var ErrUndefined = errors.New("undefined template variable")

//go:embed templates
var builtin embed.FS

var missingKeyRe = regexp.MustCompile(`map has no entry for key "([^"]+)"`)

// UndefinedError names the variable a template needed but did not get.
type UndefinedError struct {
	Name string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("'%s' is undefined. Consider providing the variable as config option.", e.Name)
}

func (e *UndefinedError) Unwrap() error {
	return ErrUndefined
}

// Engine renders preset templates from the built-in set or from a directory.
type Engine struct {
	fsys  fs.FS
	funcs template.FuncMap
}

// NewEngine returns an engine reading "<preset>/<name>.tmpl" below dir. An empty dir selects
// the built-in templates.
func NewEngine(dir string) (*Engine, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(builtin, "templates")
		if err != nil {
			return nil, fmt.Errorf("failed to open built-in templates: %w", err)
		}
		fsys = sub
	} else {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("template path invalid: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("template path %s is not a directory", dir)
		}
		fsys = os.DirFS(dir)
	}
	return &Engine{fsys: fsys, funcs: funcMap()}, nil
}

// funcMap is shared by every Render call. A cases.Caser keeps state, so title builds one per
// call.
func funcMap() template.FuncMap {
	return template.FuncMap{
		"repeat":  func(s string, n int) string { return strings.Repeat(s, max(n, 0)) },
		"runelen": utf8.RuneCountInString,
		"title":   func(s string) string { return cases.Title(language.Und).String(s) },
		"upper":   strings.ToUpper,
		"lower":   strings.ToLower,
	}
}

// Render executes the template name of preset with data. Missing keys are errors.
func (e *Engine) Render(preset, name string, data map[string]any) (string, error) {
	file := path.Join(preset, name+".tmpl")
	content, err := fs.ReadFile(e.fsys, file)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", file, err)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Funcs(e.funcs).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", file, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		if m := missingKeyRe.FindStringSubmatch(err.Error()); m != nil {
			return "", &UndefinedError{Name: m[1]}
		}
		return "", fmt.Errorf("failed to render template %s: %w", file, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
