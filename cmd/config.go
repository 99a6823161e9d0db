package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCommand() *cobra.Command {
	var settingsOpts settingsFlags

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective reformatter settings",
		Long:  "Print the settings resolved from the defaults, the settings file, --preset and --config-kv.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options()
			if err != nil {
				return err
			}
			settings, err := settingsOpts.resolve(opts)
			if err != nil {
				return err
			}

			if opts.JSONOutput {
				return respond(cmd, opts, true, "settings", settings)
			}

			out, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("failed to encode settings: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	settingsOpts.register(cmd)
	return cmd
}
