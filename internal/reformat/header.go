package reformat

import (
	"fmt"
	"slices"
	"strings"

	"github.com/virtualboard/yaml4rst/internal/fold"
	"github.com/virtualboard/yaml4rst/internal/util"
)

const headerTemplate = "defaults_header"

// headerEndLines lists per preset the lines that may end an existing header.
var headerEndLines = map[string][]string{
	"debops/ansible": {
		"# Default variables",
		"#    :local:",
		"# .. contents:: Sections",
		"# .. include:: includes/all.rst",
	},
}

// updateHeader replaces any existing header with the rendered preset header and closes the
// folds the header leaves open at the end of the document.
func (d *document) updateHeader(lines []string) ([]string, error) {
	for len(lines) > 0 && (lines[0] == "---" || lines[0] == "") {
		lines = lines[1:]
	}
	lines = slices.Clone(lines)

	unbalance := 0
	if end := util.LastIndex(lines, d.headerEnd...); end >= 0 {
		depth, err := fold.Depth(lines[:end+1])
		if err != nil {
			return nil, err
		}
		unbalance -= depth
		lines = slices.Delete(lines, 0, end+1)
	}

	rendered, err := d.renderer.Render(d.settings.Preset, headerTemplate, d.settings.TemplateVars())
	if err != nil {
		return nil, fmt.Errorf("failed to render header: %w", err)
	}
	header := strings.Split(strings.TrimSuffix(rendered, "\n"), "\n")
	depth, err := fold.Depth(header)
	if err != nil {
		return nil, err
	}
	unbalance += depth

	lines, headerEnd := util.InsertAt(lines, 0, header)

	if headerEnd+1 >= len(lines) {
		lines = append(lines, "")
	}
	if lines[headerEnd+1] == "#" {
		lines[headerEnd+1] = ""
	}

	empty := 0
	for _, line := range lines[headerEnd+1:] {
		if line != "" {
			break
		}
		empty++
	}
	wanted := d.settings.WantedEmptyLines
	if empty < wanted {
		lines = slices.Insert(lines, headerEnd+1, make([]string, wanted-empty)...)
	} else if empty > wanted {
		lines = slices.Delete(lines, headerEnd+1, headerEnd+1+empty-wanted)
	}

	lines = append(lines, d.format.Closing(unbalance, EndsWithYAMLBlock(lines))...)
	return lines, nil
}
