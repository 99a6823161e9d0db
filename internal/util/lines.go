package util

import (
	"regexp"
	"slices"
)

// Index returns the index of the first line equal to elem, or -1.
func Index(lines []string, elem string) int {
	return slices.Index(lines, elem)
}

// LastIndex returns the index of the last line equal to any of elems, or -1.
func LastIndex(lines []string, elems ...string) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if slices.Contains(elems, lines[i]) {
			return i
		}
	}
	return -1
}

// MatchOptions tunes FirstMatch and LastMatch.
type MatchOptions struct {
	// Limit stops the scan at the first line that does not match it.
	Limit *regexp.Regexp
	// Break stops the scan at the first line that matches it.
	Break *regexp.Regexp
	// Invert searches for the first line that does not match.
	Invert bool
}

// FirstMatch returns the index of the first line matching re, or -1.
func FirstMatch(re *regexp.Regexp, lines []string, opts MatchOptions) int {
	for i, line := range lines {
		if re.MatchString(line) != opts.Invert {
			return i
		}
		if opts.Limit != nil && !opts.Limit.MatchString(line) {
			return -1
		}
		if opts.Break != nil && opts.Break.MatchString(line) {
			return -1
		}
	}
	return -1
}

// LastMatch scans lines backwards and returns the index of the first matching line found, or -1.
func LastMatch(re *regexp.Regexp, lines []string, opts MatchOptions) int {
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if re.MatchString(line) != opts.Invert {
			return i
		}
		if opts.Limit != nil && !opts.Limit.MatchString(line) {
			return -1
		}
		if opts.Break != nil && opts.Break.MatchString(line) {
			return -1
		}
	}
	return -1
}

// InsertAt inserts add into base at ind. It returns the new slice and the index of the last
// inserted element.
func InsertAt(base []string, ind int, add []string) ([]string, int) {
	return slices.Insert(base, ind, add...), ind + len(add) - 1
}

// StripBlank drops leading and trailing blank lines. Blank runs between content are kept.
func StripBlank(lines []string) []string {
	start := 0
	for start < len(lines) && lines[start] == "" {
		start++
	}
	end := len(lines)
	for end > start && lines[end-1] == "" {
		end--
	}
	out := make([]string, end-start)
	copy(out, lines[start:end])
	return out
}
