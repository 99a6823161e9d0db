package reformat

import (
	"regexp"
	"slices"
	"strings"

	"github.com/virtualboard/yaml4rst/internal/util"
)

var (
	headingCharsRe = regexp.MustCompile(`^#\s(.{3,999})$`)
	headingRe      = regexp.MustCompile(`#\s+(\S.+)$`)
)

// headingChar reports whether line is an RST heading rule such as "# -----" and returns its
// character.
func headingChar(line string) (string, bool) {
	m := headingCharsRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	runes := []rune(m[1])
	for _, r := range runes {
		if r != runes[0] || isASCIIAlnum(r) {
			return "", false
		}
	}
	return string(runes[0]), true
}

func isASCIIAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}

// sectionLevel maps a heading character to its nesting depth in first-seen order.
func (d *document) sectionLevel(char string) int {
	if i := slices.Index(d.sectionLevels, char); i >= 0 {
		return i
	}
	d.sectionLevels = append(d.sectionLevels, char)
	return len(d.sectionLevels) - 1
}

// normalizeLegacy turns RST headings into folds. The first section of the document skips
// everything up to the preset header.
func (d *document) normalizeLegacy(sections []*Section, top bool) []*Section {
	for i := 0; i < len(sections); i++ {
		s := sections[i]
		if len(s.Lines) > 0 {
			start := -1
			if top && i == 0 {
				start = util.LastIndex(s.Lines, d.headerEnd...)
			}
			sections = d.normalizeHeadings(sections, i, start)
		}
		if len(s.Subsections) > 0 {
			s.Subsections = d.normalizeLegacy(s.Subsections, false)
		}
	}
	return sections
}

// normalizeHeadings scans the lines of sections[secInd] after index ind. A heading either
// renames the section or splits everything from the heading on into a new sibling.
func (d *document) normalizeHeadings(sections []*Section, secInd, ind int) []*Section {
	s := sections[secInd]

	var (
		char       string
		charInds   []int
		heading    string
		hasHeading bool
		headingInd int
		inHeading  bool
	)

	for ind++; ind < len(s.Lines); ind++ {
		line := s.Lines[ind]
		if !inHeading {
			char, charInds, heading, hasHeading, headingInd = "", nil, "", false, 0
		}

		if line == "#" && !inHeading {
			s.Lines = slices.Delete(s.Lines, ind, ind+1)
			ind--
			continue
		}

		if c, ok := headingChar(line); ok {
			if char != "" && char != c {
				d.log.Warnf("Not modifying section heading with mismatching heading characters."+
					" Top header character: '%s'. Bottom header character: '%s'.", char, c)
				inHeading = false
				continue
			}
			char = c
			charInds = append(charInds, ind)
			inHeading = true
		} else if m := headingRe.FindStringSubmatch(line); m != nil && (inHeading || len(charInds) == 0) {
			heading = m[1]
			hasHeading = true
			headingInd = ind
			inHeading = true
		} else {
			inHeading = false
		}

		eof := ind+1 >= len(s.Lines)
		if len(charInds) == 0 || !hasHeading || (!eof && inHeading) {
			continue
		}

		rule := charInds[0]
		if headingInd < rule {
			rule--
		}
		dels := append([]int{headingInd}, charInds[1:]...)
		s.Lines = deleteLines(s.Lines, dels...)
		ind -= len(dels)

		prev := s.Name()
		hadFold := s.HasFold()
		level := d.sectionLevel(char)

		split := util.LastIndex(s.Lines[:ind], "")
		head, tail := -1, -1
		switch {
		case ind < 2:
		case split >= 0:
			head, tail = split, split+1
		case rule > 0:
			head, tail = rule, rule
		}

		if head < 0 {
			s.SetFold(heading)
		} else {
			d.log.Debugf("creating fold %q", heading)
			created := Folded(heading, slices.Clone(s.Lines[tail:]))
			created.Level = level
			created.Subsections = s.Subsections
			s.Subsections = nil
			s.Lines = s.Lines[:head]
			sections = insertSection(sections, secInd+1, created)
		}

		if hadFold && strings.HasPrefix(prev, "..") && strings.HasSuffix(prev, heading) {
			s.SetFold(heading)
		}
		inHeading = false
	}
	return sections
}
