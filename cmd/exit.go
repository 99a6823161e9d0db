package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/virtualboard/yaml4rst/internal/config"
	"github.com/virtualboard/yaml4rst/internal/fold"
	"github.com/virtualboard/yaml4rst/internal/reformat"
	"github.com/virtualboard/yaml4rst/internal/template"
	"github.com/virtualboard/yaml4rst/internal/yamlcheck"
)

// Exit codes returned by the CLI.
const (
	ExitCodeSuccess     = 0
	ExitCodeValidation  = 1
	ExitCodeNotFound    = 2
	ExitCodeFoldBalance = 3
	ExitCodeUnsupported = 4
	ExitCodeConfig      = 5
	ExitCodeFilesystem  = 6
	ExitCodeChanged     = 7
	ExitCodeUnknown     = 10
)

// CLIError allows returning rich errors with exit codes.
type CLIError struct {
	Code int
	Err  error
}

func (e *CLIError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError constructs a CLIError with a message and exit code.
func NewCLIError(code int, msg string) error {
	return &CLIError{Code: code, Err: errors.New(msg)}
}

// WrapCLIError converts any error into a CLIError with the provided code.
func WrapCLIError(code int, err error) error {
	if err == nil {
		return nil
	}
	return &CLIError{Code: code, Err: err}
}

// ExitCode extracts an exit code from an error. Errors without a code are classified by
// their cause.
func ExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		if cliErr.Code == 0 {
			return ExitCodeUnknown
		}
		return cliErr.Code
	}
	return classify(err)
}

// classify maps reformatter and filesystem errors to exit codes.
func classify(err error) int {
	var (
		balanceErr *fold.BalanceError
		yamlErr    *yamlcheck.Error
		pathErr    *fs.PathError
	)
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.As(err, &balanceErr):
		return ExitCodeFoldBalance
	case errors.Is(err, fold.ErrNotImplemented):
		return ExitCodeUnsupported
	case errors.Is(err, config.ErrInvalidSettings),
		errors.Is(err, reformat.ErrUnknownPreset),
		errors.Is(err, template.ErrUndefined):
		return ExitCodeConfig
	case errors.As(err, &yamlErr):
		return ExitCodeValidation
	case errors.Is(err, fs.ErrNotExist):
		return ExitCodeNotFound
	case errors.As(err, &pathErr):
		return ExitCodeFilesystem
	default:
		return ExitCodeUnknown
	}
}

// wrapError attaches the exit code matching the cause of err.
func wrapError(err error) error {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}
	return WrapCLIError(classify(err), err)
}
