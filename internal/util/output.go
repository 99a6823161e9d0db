package util

import (
	"encoding/json"
	"fmt"
	"io"
)

// Result is the envelope of every JSON response.
type Result struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message,omitempty"`
	Warnings int         `json:"warnings"`
	Data     interface{} `json:"data,omitempty"`
}

// PrintJSON writes the provided value as indented JSON.
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// StructuredResult builds the response envelope. warnings is the number of warnings logged
// while producing data.
func StructuredResult(success bool, message string, warnings int, data interface{}) Result {
	return Result{
		Success:  success,
		Message:  message,
		Warnings: warnings,
		Data:     data,
	}
}

// PrintLines prints each string on a new line.
func PrintLines(w io.Writer, lines ...string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
