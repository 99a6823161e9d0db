package reformat

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/virtualboard/yaml4rst/internal/config"
	"github.com/virtualboard/yaml4rst/internal/fold"
	"github.com/virtualboard/yaml4rst/internal/template"
)

// closeFold is a closing marker padded by the default "{:>72}" format.
var closeFold = strings.Repeat(" ", 67) + fold.CloseMarker

var defaultHeader = []string{
	"---",
	"# .. vim: foldmarker=[[[,]]]:foldmethod=marker",
	"",
	"# role_owner.role_name default variables [[[",
	"# ==========================================",
	"",
	"# .. contents:: Sections",
	"#    :local:",
	"#",
	"# .. include:: includes/all.rst",
}

// doc removes the common indentation of s and the surrounding blank lines. A line reading
// "@close" becomes a padded closing marker.
func doc(s string) []string {
	raw := strings.Split(s, "\n")
	indent := -1
	for _, l := range raw {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		switch {
		case strings.TrimSpace(l) == "":
			out = append(out, "")
		case strings.TrimSpace(l) == "@close":
			out = append(out, closeFold)
		default:
			out = append(out, l[indent:])
		}
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// withHeader prefixes body with the rendered default header and two blank lines.
func withHeader(body ...string) []string {
	out := append([]string{}, defaultHeader...)
	out = append(out, "", "")
	return append(out, body...)
}

func plain(lines ...string) *Section {
	return &Section{Lines: lines}
}

func leveled(s *Section, level int) *Section {
	s.Level = level
	return s
}

func testSettings() *config.Settings {
	s := config.DefaultSettings()
	s.AnsibleFullRoleName = "role_owner.role_name"
	s.MissingCommentPlaceholder = ""
	s.AutoComplete(nil)
	return s
}

func newTestDocument(t *testing.T, settings *config.Settings) (*document, *test.Hook) {
	t.Helper()
	if settings == nil {
		settings = testSettings()
	}
	logger, hook := test.NewNullLogger()
	format, err := fold.ParseFormat(settings.ClosingFoldFormatSpec)
	require.NoError(t, err)
	engine, err := template.NewEngine("")
	require.NoError(t, err)
	return &document{
		settings:  settings,
		format:    format,
		headerEnd: headerEndLines[settings.Preset],
		renderer:  engine,
		varNames:  map[string]struct{}{},
		log:       logrus.NewEntry(logger),
	}, hook
}

func newTestReformatter(t *testing.T, settings *config.Settings) (*Reformatter, *test.Hook) {
	t.Helper()
	if settings == nil {
		settings = testSettings()
	}
	logger, hook := test.NewNullLogger()
	r, err := New(settings, WithLogger(logrus.NewEntry(logger)))
	require.NoError(t, err)
	return r, hook
}

func warnings(hook *test.Hook) []string {
	var out []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			out = append(out, entry.Message)
		}
	}
	return out
}
