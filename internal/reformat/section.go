package reformat

import "strings"

// Section is one node of the document tree. A section is wrapped in a fold on output when
// FoldName is set; an empty name is an anonymous fold.
type Section struct {
	FoldName    *string
	Lines       []string
	Subsections []*Section
	// Level is the heading level detected for legacy RST headings. Zero means unset.
	Level int
}

// Folded returns a section wrapped in a fold named name.
func Folded(name string, lines []string, subsections ...*Section) *Section {
	s := &Section{Lines: lines, Subsections: subsections}
	s.SetFold(name)
	return s
}

// HasFold reports whether the section is wrapped in a fold.
func (s *Section) HasFold() bool {
	return s.FoldName != nil
}

// Name returns the fold name or "" for sections without a fold.
func (s *Section) Name() string {
	if s.FoldName == nil {
		return ""
	}
	return *s.FoldName
}

// SetFold wraps the section in a fold named name.
func (s *Section) SetFold(name string) {
	s.FoldName = &name
}

// ClearFold removes the fold around the section.
func (s *Section) ClearFold() {
	s.FoldName = nil
}

// IsEnvvar reports whether the fold documents a single variable.
func (s *Section) IsEnvvar() bool {
	return s.HasFold() && strings.HasPrefix(*s.FoldName, ".. ")
}

// Clone returns a deep copy of the section.
func (s *Section) Clone() *Section {
	c := &Section{Level: s.Level}
	if s.FoldName != nil {
		c.SetFold(*s.FoldName)
	}
	if s.Lines != nil {
		c.Lines = append([]string{}, s.Lines...)
	}
	if s.Subsections != nil {
		c.Subsections = make([]*Section, len(s.Subsections))
		for i, sub := range s.Subsections {
			c.Subsections[i] = sub.Clone()
		}
	}
	return c
}

func insertSection(sections []*Section, ind int, s *Section) []*Section {
	sections = append(sections, nil)
	copy(sections[ind+1:], sections[ind:])
	sections[ind] = s
	return sections
}

func deleteLines(lines []string, inds ...int) []string {
	offset := 0
	for _, ind := range inds {
		i := ind + offset
		lines = append(lines[:i], lines[i+1:]...)
		offset--
	}
	return lines
}
