package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/virtualboard/yaml4rst/internal/config"
)

var (
	rootCmd = &cobra.Command{
		Use:           "yaml4rst",
		Short:         "Linting and reformatting tool for YAML files documented with inline RST",
		Long:          "yaml4rst rewrites YAML files documented with inline reStructuredText into a consistent layout of vim folds, one fold per variable, below a generated header.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Current(); err == nil {
				return nil
			}
			opts := config.New()
			if err := opts.Init(flagJSON, flagVerbose, flagDebug, flagQuiet, flagLogFile, flagConfig); err != nil {
				return WrapCLIError(ExitCodeFilesystem, err)
			}
			cmd.SetContext(opts.WithContext(cmd.Context()))
			return nil
		},
	}

	flagJSON          bool
	flagVerbose       bool
	flagDebug         bool
	flagQuiet         bool
	flagNoWarnSummary bool
	flagLogFile       string
	flagConfig        string
)

// Execute runs the root command.
func Execute() error {
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		return wrapError(err)
	}
	opts, err := config.Current()
	if err == nil {
		if cerr := opts.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "failed to close resources: %v\n", cerr)
		}
	}
	return nil
}

// RootCommand returns the configured root command; primarily for testing scenarios.
func RootCommand() *cobra.Command {
	registerCommands()
	return rootCmd
}

// registerCommands ensures all subcommands are attached before execution.
func registerCommands() {
	if len(rootCmd.Commands()) > 0 {
		return
	}
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&flagJSON, "json", false, "Output machine-readable JSON")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "Write information and higher to stderr")
	flags.BoolVarP(&flagDebug, "debug", "d", false, "Write debugging and higher to stderr")
	flags.BoolVarP(&flagQuiet, "quiet", "q", false, "Only write errors and higher to stderr")
	flags.BoolVarP(&flagNoWarnSummary, "no-warn-summary", "n", false, "Do not report the number of warnings hidden in quiet mode")
	flags.StringVar(&flagLogFile, "log-file", "", "File to write logs to instead of stderr")
	flags.StringVar(&flagConfig, "config", "", "Settings file (default: "+config.DefaultSettingsFile+" when present)")

	rootCmd.AddCommand(newReformatCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newUpgradeCommand())
}
