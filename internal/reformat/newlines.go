package reformat

import (
	"slices"
	"strings"

	"github.com/virtualboard/yaml4rst/internal/fold"
)

func isClosing(line string) (bool, error) {
	m, err := fold.Classify(line)
	if err != nil {
		return false, err
	}
	return m.Change == fold.Close, nil
}

// removeNeedlessNewlines drops blank lines after closing folds and trims the blank line in
// front of a run of closing folds down to the wanted spacing.
func (d *document) removeNeedlessNewlines(lines []string) ([]string, error) {
	wanted := d.settings.WantedEmptyLines
	var empties []int
	closing := 0

	for ind := 0; ind < len(lines); ind++ {
		line := lines[ind]
		if !strings.HasPrefix(line, " ") {
			empties = empties[:0]
		}
		if line == "" {
			empties = append(empties, ind)
			continue
		}

		isClose, err := isClosing(line)
		if err != nil {
			return nil, err
		}
		if !isClose {
			continue
		}
		closing++

		next := ind + 1
		for next < len(lines) {
			if lines[next] == "" {
				lines = slices.Delete(lines, next, next+1)
				continue
			}
			isClose, err := isClosing(lines[next])
			if err != nil {
				return nil, err
			}
			if !isClose {
				break
			}
			closing++
			next++
		}

		deleted := 0
		for k := len(empties) - 1; k >= 0; k-- {
			if closing+len(empties)-deleted <= wanted {
				break
			}
			lines = slices.Delete(lines, empties[k], empties[k]+1)
			deleted++
		}

		ind = next - deleted - 1
		empties = empties[:0]
		closing = 0
	}
	return lines, nil
}
