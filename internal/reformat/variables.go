package reformat

import (
	"regexp"
	"slices"
	"strings"

	"github.com/virtualboard/yaml4rst/internal/util"
)

var (
	envvarRe    = regexp.MustCompile(`^# \.\. envvar::`)
	variableRe  = regexp.MustCompile(`^(\w+):\s*(\|?)`)
	nextEntryRe = regexp.MustCompile(`^[^ ]`)
)

// EnvvarFold returns the fold name used for the documentation of a variable.
func EnvvarFold(name string) string {
	return ".. envvar:: " + name
}

// splitVariables gives every top-level variable its own envvar fold together with the comment
// block directly above it.
func (d *document) splitVariables(sections []*Section) []*Section {
	for i := 0; i < len(sections); i++ {
		s := sections[i]

		for ind := 0; ind < len(s.Lines); ind++ {
			line := s.Lines[ind]
			if envvarRe.MatchString(line) {
				s.Lines = slices.Delete(s.Lines, ind, ind+1)
				ind--
				continue
			}

			m := variableRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := m[1]
			d.varNames[name] = struct{}{}
			d.log.Debugf("found variable %s at line %d", name, ind)

			begin := ind
			for j := ind - 1; j >= 0 && strings.HasPrefix(s.Lines[j], "#"); j-- {
				if _, rule := headingChar(s.Lines[j]); rule && j == 0 && s.HasFold() {
					// The underline of the fold heading is not part of the variable comment.
					break
				}
				begin = j
			}

			next := util.FirstMatch(nextEntryRe, s.Lines[ind+1:], util.MatchOptions{})
			if next >= 0 {
				next += ind + 1
			}

			if begin == 0 {
				s.SetFold(EnvvarFold(name))
				if next >= 0 {
					rest := s.Clone()
					rest.ClearFold()
					rest.Lines = rest.Lines[next:]
					s.Lines = s.Lines[:next]
					s.Subsections = nil
					sections = insertSection(sections, i+1, rest)
				}
				continue
			}

			rest := s.Clone()
			rest.ClearFold()
			rest.Lines = rest.Lines[begin:]
			s.Lines = s.Lines[:begin]
			if s.HasFold() {
				// The enclosing fold keeps its name and gains the variable as first subsection.
				rest.Subsections = nil
				rest.Level = 0
				s.Subsections = append([]*Section{rest}, s.Subsections...)
			} else {
				s.Subsections = nil
				sections = insertSection(sections, i+1, rest)
			}
		}

		if len(s.Subsections) > 0 {
			s.Subsections = d.splitVariables(s.Subsections)
		}
	}
	return sections
}
