package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/virtualboard/yaml4rst/internal/util"
)

func newCheckCommand() *cobra.Command {
	var (
		settingsOpts settingsFlags
		lenient      bool
		jobs         int
	)

	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Report files that reformat would change",
		Long:  "Reformat files in memory and list those whose content would change. Exits with code 7 when any file would be reformatted.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options()
			if err != nil {
				return err
			}
			if err := validateInputs(args); err != nil {
				return err
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
			warnSummary(opts)

			var changed []string
			for _, res := range results {
				if res.Changed {
					changed = append(changed, res.Input)
				}
			}

			failure := firstFailure(results)
			if opts.JSONOutput {
				data := map[string]interface{}{
					"files":   results,
					"changed": len(changed),
				}
				if err := respond(cmd, opts, failure == nil && len(changed) == 0, "check complete", data); err != nil {
					return err
				}
			} else {
				lines := make([]string, len(changed))
				for i, file := range changed {
					lines[i] = "would reformat " + file
				}
				if err := util.PrintLines(cmd.OutOrStdout(), lines...); err != nil {
					return err
				}
			}

			if failure != nil {
				return failure
			}
			if len(changed) > 0 {
				return WrapCLIError(ExitCodeChanged, fmt.Errorf("%d of %d files would be reformatted", len(changed), len(results)))
			}
			if !opts.JSONOutput {
				fmt.Fprintf(cmd.OutOrStdout(), "0 of %d files would be reformatted\n", len(results))
			}
			return nil
		},
	}

	settingsOpts.register(cmd)
	cmd.Flags().BoolVar(&lenient, "lenient-folds", false, "Log unbalanced fold markers as warnings instead of failing")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "Number of files processed concurrently")
	return cmd
}
