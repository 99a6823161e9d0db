package reformat

import "slices"

// sortLevels moves every section whose heading level is deeper than level into the
// subsections of its previous sibling until the list no longer changes.
func sortLevels(sections []*Section, level int) []*Section {
	for {
		moved := false
		for i := 0; i < len(sections); i++ {
			s := sections[i]
			if len(s.Subsections) > 0 {
				s.Subsections = sortLevels(s.Subsections, level+1)
			}
			if i == 0 || s.Level <= level {
				continue
			}
			prev := sections[i-1]
			prev.Subsections = append(prev.Subsections, s)
			sections = slices.Delete(sections, i, i+1)
			i--
			moved = true
		}
		if !moved {
			return sections
		}
	}
}

func clearLevels(sections []*Section) {
	for _, s := range sections {
		s.Level = 0
		clearLevels(s.Subsections)
	}
}
