package yamlcheck

import (
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Error wraps the parser error of an invalid document.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "invalid YAML: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Check parses every document in content and returns an *Error for the first one that fails.
func Check(content string) error {
	dec := yaml.NewDecoder(strings.NewReader(content))
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &Error{Err: err}
		}
	}
}

// Validator adapts Check to the reformatter.
type Validator struct{}

// Validate implements reformat.Validator.
func (Validator) Validate(content string) error {
	return Check(content)
}
