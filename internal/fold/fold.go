package fold

import (
	"errors"
	"fmt"
	"regexp"
)

// Change is the signed fold depth a single line contributes.
type Change int

const (
	Close Change = -1
	None  Change = 0
	Open  Change = 1
)

var (
	// ErrNotImplemented marks input shapes that are recognised but not supported.
	ErrNotImplemented = errors.New("not implemented")
	// ErrExplicitLevel is returned for opening markers with a numeric fold level such as "[[[2".
	ErrExplicitLevel = fmt.Errorf("%w: found explicit fold level, see known limitations in the docs", ErrNotImplemented)
)

var (
	openRe  = regexp.MustCompile(`^\s*#\s*((?:\.{2})?\s*.*?)\s*[[({]{3}(\d*)$`)
	closeRe = regexp.MustCompile(`^\s*#\s*(?:\.{2})?\s*[\])}]{3}$`)
)

// Marker describes the fold property of one line.
type Marker struct {
	Change Change
	// Name is set for opening markers only and may point to an empty string.
	Name *string
}

// Classify reports whether line opens a fold, closes one or is plain content.
func Classify(line string) (Marker, error) {
	if m := openRe.FindStringSubmatch(line); m != nil {
		if m[2] != "" {
			return Marker{}, fmt.Errorf("%w: %q", ErrExplicitLevel, line)
		}
		name := m[1]
		return Marker{Change: Open, Name: &name}, nil
	}
	if closeRe.MatchString(line) {
		return Marker{Change: Close}, nil
	}
	return Marker{Change: None}, nil
}

// Depth returns the net fold depth over lines.
func Depth(lines []string) (int, error) {
	depth := 0
	for _, line := range lines {
		m, err := Classify(line)
		if err != nil {
			return 0, err
		}
		depth += int(m.Change)
	}
	return depth, nil
}

// BalanceError reports unbalanced fold markers.
type BalanceError struct {
	Depth int
}

func (e *BalanceError) Error() string {
	switch {
	case e.Depth == 1:
		return "1 fold is unclosed"
	case e.Depth > 1:
		return fmt.Sprintf("%d folds are unclosed", e.Depth)
	case e.Depth == -1:
		return "1 additional closing fold marker"
	default:
		return fmt.Sprintf("%d additional closing fold markers", -e.Depth)
	}
}

// Balance returns a *BalanceError when the opening and closing markers of lines do not pair up.
func Balance(lines []string) error {
	depth, err := Depth(lines)
	if err != nil {
		return err
	}
	if depth != 0 {
		return &BalanceError{Depth: depth}
	}
	return nil
}
