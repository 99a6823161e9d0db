package reformat

import (
	"slices"
	"strings"

	"github.com/virtualboard/yaml4rst/internal/fold"
	"github.com/virtualboard/yaml4rst/internal/util"
)

// Build parses lines into a section tree driven by the fold markers.
func Build(lines []string) ([]*Section, error) {
	_, sections, err := build(lines, 0, false)
	return sections, err
}

// build consumes lines starting at ind. A nested call starts at its own opening marker and
// returns after the matching closing marker, together with the index it stopped at.
func build(lines []string, ind int, insideFold bool) (int, []*Section, error) {
	var (
		start    = ind
		current  = &Section{}
		pending  []string
		subs     []*Section
		sections []*Section
		depth    int
	)

	finalize := func() {
		pending = util.StripBlank(pending)
		if len(subs) > 0 {
			current.Subsections = subs
			subs = nil
		}
		if len(pending) > 0 {
			current.Lines = pending
			pending = nil
		}
		sections = append(sections, current)
		current = &Section{}
	}

	for ind--; ind+1 < len(lines); {
		ind++
		line := lines[ind]
		m, err := fold.Classify(line)
		if err != nil {
			return ind, nil, err
		}
		depth += int(m.Change)

		switch m.Change {
		case fold.None:
			if len(subs) > 0 && line != "" {
				// Comments trailing a nested fold stay a section of their own.
				runStart := ind
				for {
					next, err := runEnd(lines, ind)
					if err != nil {
						return ind, nil, err
					}
					if next == ind {
						break
					}
					ind = next
				}
				subs = append(subs, &Section{Lines: slices.Clone(lines[runStart : ind+1])})
				if ind+1 >= len(lines) && len(sections) > 0 {
					finalize()
				}
				continue
			}
			pending = append(pending, line)
		case fold.Open:
			if !current.HasFold() && len(util.StripBlank(pending)) == 0 {
				current.SetFold(*m.Name)
			}
		}

		if depth > 1 && m.Change == fold.Open {
			depth--
			next, nested, err := build(lines, ind, true)
			if err != nil {
				return next, nil, err
			}
			ind = next
			subs = append(subs, nested...)
		}

		eof := ind+1 >= len(lines)
		closes := m.Change == fold.Close && (len(pending) > 0 || len(subs) > 0 || current.HasFold())
		if closes || (m.Change == fold.Open && !current.HasFold()) || eof {
			finalize()
			if m.Change == fold.Open {
				current.SetFold(*m.Name)
			}
			if insideFold {
				break
			}
		}
	}

	if len(sections) == 0 {
		return ind, []*Section{{Lines: slices.Clone(lines[start:])}}, nil
	}
	return ind, sections, nil
}

// runEnd returns the index the trailing run ending at ind extends to with the next line.
// Comments and indented lines extend it. Blank lines only do when an indented line follows,
// which keeps block scalars together with their key.
func runEnd(lines []string, ind int) (int, error) {
	next := ind + 1
	for next < len(lines) && lines[next] == "" {
		next++
	}
	if next >= len(lines) {
		return ind, nil
	}
	line := lines[next]
	if next > ind+1 && !strings.HasPrefix(line, " ") {
		return ind, nil
	}
	if !strings.HasPrefix(line, "#") && !strings.HasPrefix(line, " ") {
		return ind, nil
	}
	m, err := fold.Classify(line)
	if err != nil {
		return ind, err
	}
	if m.Change != fold.None {
		return ind, nil
	}
	return next, nil
}
