package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/virtualboard/yaml4rst/internal/config"
	"github.com/virtualboard/yaml4rst/internal/fold"
	"github.com/virtualboard/yaml4rst/internal/reformat"
	"github.com/virtualboard/yaml4rst/internal/template"
	"github.com/virtualboard/yaml4rst/internal/yamlcheck"
)

func TestCLIErrorAndExitCode(t *testing.T) {
	if ExitCode(nil) != ExitCodeSuccess {
		t.Fatalf("expected success exit code")
	}

	err := NewCLIError(ExitCodeValidation, "invalid")
	if ExitCode(err) != ExitCodeValidation {
		t.Fatalf("unexpected exit code")
	}

	wrapped := WrapCLIError(ExitCodeChanged, err)
	if ExitCode(wrapped) != ExitCodeChanged {
		t.Fatalf("wrap should use provided code")
	}

	zeroCode := &CLIError{Code: 0}
	if ExitCode(zeroCode) != ExitCodeUnknown {
		t.Fatalf("expected unknown for zero code")
	}

	if WrapCLIError(ExitCodeChanged, nil) != nil {
		t.Fatalf("wrap nil should return nil")
	}
}

func TestExitCodeClassifiesCauses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"unclosed fold", &fold.BalanceError{Depth: 1}, ExitCodeFoldBalance},
		{"wrapped balance", fmt.Errorf("file: %w", &fold.BalanceError{Depth: -2}), ExitCodeFoldBalance},
		{"explicit level", fold.ErrExplicitLevel, ExitCodeUnsupported},
		{"invalid settings", fmt.Errorf("%w: bad", config.ErrInvalidSettings), ExitCodeConfig},
		{"schema", &config.SchemaError{Path: "x.yml", Issues: []string{"bad"}}, ExitCodeConfig},
		{"unknown preset", reformat.ErrUnknownPreset, ExitCodeConfig},
		{"undefined variable", &template.UndefinedError{Name: "ansible_full_role_name"}, ExitCodeConfig},
		{"invalid yaml", &yamlcheck.Error{Err: errors.New("mapping values are not allowed")}, ExitCodeValidation},
		{"missing file", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}, ExitCodeNotFound},
		{"permission", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission}, ExitCodeFilesystem},
		{"other", errors.New("boom"), ExitCodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ExitCode(tt.err))
			assert.Equal(t, tt.code, ExitCode(wrapError(tt.err)))
		})
	}
}

func TestFirstFailureKeepsFirstCode(t *testing.T) {
	results := []*fileResult{
		{Input: "a.yml"},
		{Input: "b.yml", err: &fold.BalanceError{Depth: 1}},
		{Input: "c.yml", err: WrapCLIError(ExitCodeFilesystem, errors.New("disk full"))},
	}
	err := firstFailure(results)
	assert.Equal(t, ExitCodeFoldBalance, ExitCode(err))
	assert.Contains(t, err.Error(), "2 of 3 files failed")

	assert.NoError(t, firstFailure(results[:1]))
}

func TestWrapErrorKeepsExistingCode(t *testing.T) {
	err := NewCLIError(ExitCodeChanged, "1 of 1 files would be reformatted")
	assert.Same(t, err, wrapError(err))
	assert.Equal(t, ExitCodeChanged, ExitCode(wrapError(err)))
}
