package config

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultSettingsFile is picked up from the working directory when no --config flag is given.
	DefaultSettingsFile = ".yaml4rst.yml"
	// DefaultPreset is the header preset used when none is configured.
	DefaultPreset = "debops/ansible"
)

// ErrInvalidSettings is returned for settings that cannot be applied.
var ErrInvalidSettings = errors.New("invalid settings")

//go:embed schema.json
var settingsSchema string

var kvSeparator = regexp.MustCompile(`[,;]\s*`)

// Settings configures a reformatter run.
type Settings struct {
	Preset                    string            `yaml:"preset" json:"preset"`
	TemplatePath              string            `yaml:"template_path,omitempty" json:"template_path,omitempty"`
	WantedEmptyLines          int               `yaml:"wanted_empty_lines_between_items" json:"wanted_empty_lines_between_items"`
	ClosingFoldFormatSpec     string            `yaml:"closing_fold_format_spec" json:"closing_fold_format_spec"`
	MissingCommentPlaceholder string            `yaml:"add_string_for_missing_comment" json:"add_string_for_missing_comment"`
	AnsibleFullRoleName       string            `yaml:"ansible_full_role_name,omitempty" json:"ansible_full_role_name,omitempty"`
	AnsibleRoleOwner          string            `yaml:"ansible_role_owner,omitempty" json:"ansible_role_owner,omitempty"`
	AnsibleRoleName           string            `yaml:"ansible_role_name,omitempty" json:"ansible_role_name,omitempty"`
	Vars                      map[string]string `yaml:"vars,omitempty" json:"vars,omitempty"`
}

// SchemaError lists the schema violations of a settings file.
type SchemaError struct {
	Path   string
	Issues []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("settings file %s does not match the schema: %s", e.Path, strings.Join(e.Issues, "; "))
}

func (e *SchemaError) Unwrap() error {
	return ErrInvalidSettings
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() *Settings {
	return &Settings{
		Preset:                    DefaultPreset,
		WantedEmptyLines:          2,
		ClosingFoldFormatSpec:     "{:>72}",
		MissingCommentPlaceholder: "FIXME",
	}
}

// LoadSettings reads a YAML settings file on top of the defaults.
func LoadSettings(path string) (*Settings, error) {
	// #nosec G304 -- settings path provided via command flag
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	return ParseSettings(path, data)
}

// ParseSettings validates data against the settings schema and decodes it on top of the defaults.
func ParseSettings(path string, data []byte) (*Settings, error) {
	settings := DefaultSettings()

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidSettings, path, err)
	}
	if raw == nil {
		return settings, nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(settingsSchema),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		schemaErr := &SchemaError{Path: path}
		for _, desc := range result.Errors() {
			schemaErr.Issues = append(schemaErr.Issues, desc.String())
		}
		return nil, schemaErr
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", ErrInvalidSettings, path, err)
	}
	return settings, nil
}

// ParseKV parses "key=value" pairs separated by commas or semicolons.
func ParseKV(s string) (map[string]string, error) {
	out := map[string]string{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, kv := range kvSeparator.Split(s, -1) {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: expected key=value, got %q", ErrInvalidSettings, kv)
		}
		out[key] = value
	}
	return out, nil
}

// Apply overrides settings from key/value pairs. Unknown keys become template variables.
func (s *Settings) Apply(kv map[string]string) error {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := kv[key]
		switch key {
		case "preset":
			s.Preset = value
		case "template_path":
			s.TemplatePath = value
		case "wanted_empty_lines_between_items":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidSettings, key, value)
			}
			s.WantedEmptyLines = n
		case "closing_fold_format_spec":
			s.ClosingFoldFormatSpec = value
		case "add_string_for_missing_comment":
			s.MissingCommentPlaceholder = value
		case "ansible_full_role_name":
			s.AnsibleFullRoleName = value
		case "ansible_role_owner":
			s.AnsibleRoleOwner = value
		case "ansible_role_name":
			s.AnsibleRoleName = value
		default:
			if s.Vars == nil {
				s.Vars = map[string]string{}
			}
			s.Vars[key] = value
		}
	}
	return nil
}

// AutoComplete derives the role owner and name from ansible_full_role_name unless set explicitly.
func (s *Settings) AutoComplete(log *logrus.Entry) {
	if s.AnsibleFullRoleName == "" {
		return
	}
	parts := strings.Split(s.AnsibleFullRoleName, ".")
	if len(parts) != 2 {
		if log != nil {
			log.Warnf("The config option 'ansible_full_role_name' has a invalid format."+
				" Expected 'ROLE_OWNER.ROLE_NAME'."+
				" Got %s (no '.').", s.AnsibleFullRoleName)
		}
		return
	}
	if s.AnsibleRoleOwner == "" {
		s.AnsibleRoleOwner = parts[0]
	}
	if s.AnsibleRoleName == "" {
		s.AnsibleRoleName = parts[1]
	}
}

// Validate checks the settings for values the reformatter cannot work with.
func (s *Settings) Validate() error {
	if s.Preset == "" {
		return fmt.Errorf("%w: preset must not be empty", ErrInvalidSettings)
	}
	if s.WantedEmptyLines < 0 {
		return fmt.Errorf("%w: wanted_empty_lines_between_items must not be negative", ErrInvalidSettings)
	}
	if s.ClosingFoldFormatSpec == "" {
		return fmt.Errorf("%w: closing_fold_format_spec must not be empty", ErrInvalidSettings)
	}
	return nil
}

// TemplateVars returns the variables available to header templates.
func (s *Settings) TemplateVars() map[string]any {
	vars := map[string]any{
		"preset":                           s.Preset,
		"wanted_empty_lines_between_items": s.WantedEmptyLines,
		"closing_fold_format_spec":         s.ClosingFoldFormatSpec,
		"add_string_for_missing_comment":   s.MissingCommentPlaceholder,
	}
	for key, value := range s.Vars {
		vars[key] = value
	}
	optional := map[string]string{
		"template_path":          s.TemplatePath,
		"ansible_full_role_name": s.AnsibleFullRoleName,
		"ansible_role_owner":     s.AnsibleRoleOwner,
		"ansible_role_name":      s.AnsibleRoleName,
	}
	for key, value := range optional {
		if value != "" {
			vars[key] = value
		}
	}
	return vars
}

// Clone returns an independent copy.
func (s *Settings) Clone() *Settings {
	c := *s
	c.Vars = maps.Clone(s.Vars)
	return &c
}
