package reformat

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/virtualboard/yaml4rst/internal/fold"
	"github.com/virtualboard/yaml4rst/internal/util"
)

// Serialize flattens the section tree into lines using the given closing fold format.
func Serialize(sections []*Section, format fold.Format) []string {
	var lines []string
	closing := 0
	opening := ""

	for _, s := range sections {
		if s.HasFold() {
			name := s.Name()
			if name != "" {
				name += " "
			}
			opening = "# " + name + "[[["
			closing++
			lines = append(lines, opening)
		}

		if len(s.Lines) > 0 {
			own := slices.Clone(s.Lines)
			if s.HasFold() && own[0] != "#" {
				if s.IsEnvvar() {
					lines = append(lines, "#")
				} else if c, ok := headingChar(own[0]); ok {
					own[0] = "# " + strings.Repeat(c, utf8.RuneCountInString(opening)-2)
				}
			}
			lines = append(lines, util.StripBlank(own)...)
			lines = append(lines, "")
		}

		if len(s.Subsections) > 0 {
			lines = append(lines, Serialize(s.Subsections, format)...)
		}

		if closing > 0 {
			lines = append(lines, format.Closing(closing, EndsWithYAMLBlock(lines))...)
			closing = 0
		}
	}
	return lines
}

// EndsWithYAMLBlock reports whether lines end inside a YAML block scalar. Blank lines and
// unpadded closing markers are skipped.
func EndsWithYAMLBlock(lines []string) bool {
	leading := 0
	block := false
	for _, line := range lines {
		if line == "" || line == fold.CloseMarker {
			continue
		}
		previous := leading
		leading = len(line) - len(strings.TrimLeft(line, " "))
		if leading < previous {
			block = false
		} else if strings.HasSuffix(line, ": |") {
			block = true
		}
	}
	return block
}
