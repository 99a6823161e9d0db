package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, "debops/ansible", s.Preset)
	assert.Equal(t, 2, s.WantedEmptyLines)
	assert.Equal(t, "{:>72}", s.ClosingFoldFormatSpec)
	assert.Equal(t, "FIXME", s.MissingCommentPlaceholder)
	assert.NoError(t, s.Validate())
}

func TestAutoComplete(t *testing.T) {
	s := DefaultSettings()
	s.AnsibleFullRoleName = "role_owner.role_name"
	s.AutoComplete(nil)
	assert.Equal(t, "role_owner", s.AnsibleRoleOwner)
	assert.Equal(t, "role_name", s.AnsibleRoleName)

	s = DefaultSettings()
	s.AnsibleFullRoleName = "role_owner.role_name"
	s.AnsibleRoleName = "explicit"
	s.AutoComplete(nil)
	assert.Equal(t, "role_owner", s.AnsibleRoleOwner)
	assert.Equal(t, "explicit", s.AnsibleRoleName)

	s = DefaultSettings()
	s.AutoComplete(nil)
	assert.Empty(t, s.AnsibleRoleOwner)
	assert.Empty(t, s.AnsibleRoleName)
}

func TestAutoCompleteInvalidFormat(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := DefaultSettings()
	s.AnsibleFullRoleName = "role_owner-role_name"
	s.AutoComplete(logrus.NewEntry(logger))

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t,
		"The config option 'ansible_full_role_name' has a invalid format."+
			" Expected 'ROLE_OWNER.ROLE_NAME'. Got role_owner-role_name (no '.').",
		entry.Message)
	assert.Empty(t, s.AnsibleRoleOwner)
}

func TestParseKV(t *testing.T) {
	kv, err := ParseKV("a=1, b=2;c=3;  d=x=y")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2", "c": "3", "d": "x=y"}, kv)

	kv, err = ParseKV("")
	require.NoError(t, err)
	assert.Empty(t, kv)

	_, err = ParseKV("novalue")
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestApply(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Apply(map[string]string{
		"preset":                           "debops/ansible",
		"template_path":                    "/tmp/templates",
		"wanted_empty_lines_between_items": "1",
		"closing_fold_format_spec":         "{}",
		"add_string_for_missing_comment":   "TODO",
		"ansible_full_role_name":           "a.b",
		"ansible_role_owner":               "a",
		"ansible_role_name":                "b",
		"custom":                           "value",
	}))
	assert.Equal(t, "/tmp/templates", s.TemplatePath)
	assert.Equal(t, 1, s.WantedEmptyLines)
	assert.Equal(t, "{}", s.ClosingFoldFormatSpec)
	assert.Equal(t, "TODO", s.MissingCommentPlaceholder)
	assert.Equal(t, "a.b", s.AnsibleFullRoleName)
	assert.Equal(t, map[string]string{"custom": "value"}, s.Vars)

	err := s.Apply(map[string]string{"wanted_empty_lines_between_items": "two"})
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestValidate(t *testing.T) {
	s := DefaultSettings()
	s.Preset = ""
	assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)

	s = DefaultSettings()
	s.WantedEmptyLines = -1
	assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)

	s = DefaultSettings()
	s.ClosingFoldFormatSpec = ""
	assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)
}

func TestTemplateVars(t *testing.T) {
	s := DefaultSettings()
	s.AnsibleFullRoleName = "role_owner.role_name"
	s.Vars = map[string]string{"extra": "1"}
	vars := s.TemplateVars()
	assert.Equal(t, "role_owner.role_name", vars["ansible_full_role_name"])
	assert.Equal(t, "1", vars["extra"])
	assert.Equal(t, 2, vars["wanted_empty_lines_between_items"])
	_, ok := vars["ansible_role_owner"]
	assert.False(t, ok)
}

func TestClone(t *testing.T) {
	s := DefaultSettings()
	s.Vars = map[string]string{"a": "1"}
	c := s.Clone()
	c.Vars["a"] = "2"
	c.Preset = "other"
	assert.Equal(t, "1", s.Vars["a"])
	assert.Equal(t, "debops/ansible", s.Preset)
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".yaml4rst.yml")
	content := `preset: debops/ansible
wanted_empty_lines_between_items: 1
closing_fold_format_spec: "{:>40}"
ansible_full_role_name: debops.apt
vars:
  maintainer: someone
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 1, s.WantedEmptyLines)
	assert.Equal(t, "{:>40}", s.ClosingFoldFormatSpec)
	assert.Equal(t, "FIXME", s.MissingCommentPlaceholder)
	assert.Equal(t, "debops.apt", s.AnsibleFullRoleName)
	assert.Equal(t, "someone", s.Vars["maintainer"])

	empty := filepath.Join(dir, "empty.yml")
	require.NoError(t, os.WriteFile(empty, []byte(""), 0o600))
	s, err = LoadSettings(empty)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)

	_, err = LoadSettings(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestLoadSettingsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown key":     "colour: blue\n",
		"negative lines":  "wanted_empty_lines_between_items: -1\n",
		"wrong type":      "wanted_empty_lines_between_items: two\n",
		"bad format spec": "closing_fold_format_spec: '>72'\n",
		"non-string vars": "vars:\n  count: 3\n",
		"empty preset":    "preset: ''\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSettings(name, []byte(content))
			require.Error(t, err)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.NotEmpty(t, schemaErr.Issues)
			assert.ErrorIs(t, err, ErrInvalidSettings)
		})
	}

	_, err := ParseSettings("broken", []byte("preset: [\n"))
	assert.ErrorIs(t, err, ErrInvalidSettings)
}
