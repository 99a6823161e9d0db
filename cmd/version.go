package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/virtualboard/yaml4rst/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the yaml4rst version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options()
			if err != nil {
				return err
			}

			if opts.JSONOutput {
				payload := map[string]interface{}{
					"version":  version.Current,
					"go":       runtime.Version(),
					"platform": runtime.GOOS + "/" + runtime.GOARCH,
				}
				return respond(cmd, opts, true, "version", payload)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "yaml4rst %s (%s, %s/%s)\n", version.Current, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
