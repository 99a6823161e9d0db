package fold

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// CloseMarker is the canonical closing fold line.
const CloseMarker = "# ]]]"

var formatRe = regexp.MustCompile(`^\{(?::(?:(.)?([<>^]))?(\d*))?\}$`)

// Format pads closing fold markers, modelled after "{:>72}" style format specs.
type Format struct {
	Fill  rune
	Align byte
	Width int
}

// ParseFormat parses a format spec such as "{}", "{:>72}" or "{:-^40}".
func ParseFormat(spec string) (Format, error) {
	m := formatRe.FindStringSubmatch(spec)
	if m == nil {
		return Format{}, fmt.Errorf("invalid closing fold format spec %q", spec)
	}
	f := Format{Fill: ' ', Align: '<'}
	if m[1] != "" {
		f.Fill, _ = utf8.DecodeRuneInString(m[1])
	}
	if m[2] != "" {
		f.Align = m[2][0]
	}
	if m[3] != "" {
		width, err := strconv.Atoi(m[3])
		if err != nil {
			return Format{}, fmt.Errorf("invalid width in closing fold format spec %q: %w", spec, err)
		}
		f.Width = width
	}
	return f, nil
}

// Apply pads s according to the format.
func (f Format) Apply(s string) string {
	pad := f.Width - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	fill := string(f.Fill)
	switch f.Align {
	case '>':
		return strings.Repeat(fill, pad) + s
	case '^':
		left := pad / 2
		return strings.Repeat(fill, left) + s + strings.Repeat(fill, pad-left)
	default:
		return s + strings.Repeat(fill, pad)
	}
}

// Closing returns count closing markers. Inside a YAML block scalar the markers are not padded.
func (f Format) Closing(count int, yamlBlock bool) []string {
	lines := make([]string, 0, max(count, 0))
	for i := 0; i < count; i++ {
		if yamlBlock {
			lines = append(lines, CloseMarker)
			continue
		}
		lines = append(lines, f.Apply(CloseMarker))
	}
	return lines
}
