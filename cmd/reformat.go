package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/virtualboard/yaml4rst/internal/reformat"
	"github.com/virtualboard/yaml4rst/internal/util"
)

const stdio = "-"

// fileResult is the outcome of reformatting one input.
type fileResult struct {
	Input   string `json:"input"`
	Output  string `json:"output,omitempty"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
	Content string `json:"content,omitempty"`

	err     error
	mode    os.FileMode
	content string
}

// processFiles reformats inputs with at most jobs files in flight. Results keep the order of
// inputs and a failing file does not stop the others.
func processFiles(ctx context.Context, r *reformat.Reformatter, log *logrus.Entry, inputs []string, stdin io.Reader, jobs int) []*fileResult {
	results := make([]*fileResult, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			res := &fileResult{Input: input, mode: 0o644}
			results[i] = res
			if err := ctx.Err(); err != nil {
				res.err = err
				return nil
			}

			data, mode, err := readInput(input, stdin)
			if err != nil {
				res.err = err
				return nil
			}
			if mode != 0 {
				res.mode = mode
			}

			lines, err := r.ReformatReader(bytes.NewReader(data), input)
			if err != nil {
				res.err = err
				return nil
			}
			res.content = reformat.Join(lines)
			res.Changed = res.content != string(data)
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		if res.err != nil {
			res.Error = res.err.Error()
			log.WithField("file", res.Input).Error(res.err)
		}
	}
	return results
}

func readInput(path string, stdin io.Reader) ([]byte, os.FileMode, error) {
	if path == stdio {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, 0, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, err
	}
	// #nosec G304 -- input path provided via command arguments
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	return data, info.Mode().Perm(), nil
}

// firstFailure returns an error carrying the exit code of the first failed file.
func firstFailure(results []*fileResult) error {
	failed := 0
	var first error
	for _, res := range results {
		if res.err == nil {
			continue
		}
		failed++
		if first == nil {
			first = res.err
		}
	}
	if first == nil {
		return nil
	}
	return WrapCLIError(ExitCode(first), fmt.Errorf("%d of %d files failed: %w", failed, len(results), first))
}

func validateInputs(inputs []string) error {
	stdinCount := 0
	for _, input := range inputs {
		if input == stdio {
			stdinCount++
		}
	}
	if stdinCount > 1 {
		return NewCLIError(ExitCodeConfig, "stdin ('-') can only be given once")
	}
	return nil
}

func newReformatCommand() *cobra.Command {
	var (
		settingsOpts settingsFlags
		outputs      []string
		inPlace      bool
		lenient      bool
		jobs         int
	)

	cmd := &cobra.Command{
		Use:   "reformat FILE...",
		Short: "Reformat YAML files documented with inline RST",
		Long: "Reformat one or more YAML files. '-' reads from stdin. Output goes to stdout unless " +
			"--output or --in-place is given.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options()
			if err != nil {
				return err
			}
			if err := validateInputs(args); err != nil {
				return err
			}
			if !inPlace && len(args) != len(outputs) {
				return NewCLIError(ExitCodeConfig,
					"The number of input files does not match the number of output files in non-in-place mode.")
			}

			settings, err := settingsOpts.resolve(opts)
			if err != nil {
				return err
			}
			r, err := newReformatter(opts, settings, lenient)
			if err != nil {
				return err
			}

			log := opts.Logger().WithField("component", "cli")
			results := processFiles(cmd.Context(), r, log, args, cmd.InOrStdin(), jobs)

			for i, res := range results {
				if res.err != nil {
					continue
				}
				res.Output = res.Input
				if !inPlace {
					res.Output = outputs[i]
				}
				if err := writeOutput(cmd.OutOrStdout(), opts.JSONOutput, res); err != nil {
					res.err = WrapCLIError(ExitCodeFilesystem, err)
					res.Error = err.Error()
					log.WithField("file", res.Output).Error(err)
				}
			}
			warnSummary(opts)

			failure := firstFailure(results)
			if opts.JSONOutput {
				changed := 0
				for _, res := range results {
					if res.Changed {
						changed++
					}
				}
				data := map[string]interface{}{
					"files":   results,
					"changed": changed,
				}
				if err := respond(cmd, opts, failure == nil, "reformat complete", data); err != nil {
					return err
				}
			}
			return failure
		},
	}

	settingsOpts.register(cmd)
	cmd.Flags().StringArrayVarP(&outputs, "output", "o", []string{stdio}, "Output file per input file, '-' writes to stdout")
	cmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "Edit the input files in place")
	cmd.Flags().BoolVar(&lenient, "lenient-folds", false, "Log unbalanced fold markers as warnings instead of failing")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "Number of files processed concurrently")
	return cmd
}

// writeOutput writes the reformatted content. Files already holding it are left untouched. In
// JSON mode stdout output is embedded in the result instead.
func writeOutput(stdout io.Writer, jsonOut bool, res *fileResult) error {
	if res.Output == stdio {
		if jsonOut {
			res.Content = res.content
			return nil
		}
		_, err := io.WriteString(stdout, res.content)
		return err
	}
	if _, err := util.ReplaceFile(res.Output, []byte(res.content), res.mode); err != nil {
		if errors.Is(err, os.ErrPermission) {
			return fmt.Errorf("permission denied writing %s: %w", res.Output, err)
		}
		return err
	}
	return nil
}
