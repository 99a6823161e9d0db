package reformat

import (
	"slices"
	"strings"
)

// addFixmes inserts the placeholder comment into envvar folds that have no description.
func (d *document) addFixmes(sections []*Section) {
	placeholder := d.settings.MissingCommentPlaceholder
	for _, s := range sections {
		d.addFixmes(s.Subsections)

		if len(s.Lines) == 0 || !s.IsEnvvar() {
			continue
		}

		found := false
		last := -1
		for i, line := range s.Lines {
			if !strings.HasPrefix(line, "#") {
				break
			}
			if line == "#" {
				last = i
				continue
			}
			found = true
		}

		if found || placeholder == "" {
			continue
		}
		d.log.Warnf("Inserting FIXME note for missing comment."+
			" Be sure to replace \"%s\" with something meaningful.", placeholder)
		s.Lines = slices.Insert(s.Lines, last+1, "# "+placeholder)
	}
}
