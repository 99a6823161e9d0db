package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/virtualboard/yaml4rst/internal/config"
	"github.com/virtualboard/yaml4rst/internal/reformat"
	"github.com/virtualboard/yaml4rst/internal/util"
)

func options() (*config.Options, error) {
	return config.Current()
}

func respond(cmd *cobra.Command, opts *config.Options, success bool, message string, data interface{}) error {
	if opts.JSONOutput {
		payload := util.StructuredResult(success, message, opts.Warnings(), data)
		return util.PrintJSON(cmd.OutOrStdout(), payload)
	}
	if message != "" {
		fmt.Fprintln(cmd.OutOrStdout(), message)
	}
	return nil
}

// settingsFlags are the flags that shape the reformatter settings.
type settingsFlags struct {
	preset    string
	overrides []string
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.preset, "preset", "p", "", "Which preset to use (default: "+config.DefaultPreset+")")
	cmd.Flags().StringArrayVarP(&f.overrides, "config-kv", "e", nil, "Additional settings as key=value pairs separated by ',' or ';'")
}

func (f *settingsFlags) resolve(opts *config.Options) (*config.Settings, error) {
	settings, err := opts.Settings(f.preset, f.overrides)
	if err != nil {
		return nil, WrapCLIError(ExitCodeConfig, err)
	}
	return settings, nil
}

func newReformatter(opts *config.Options, settings *config.Settings, lenient bool) (*reformat.Reformatter, error) {
	reformatOpts := []reformat.Option{reformat.WithLogger(logrus.NewEntry(opts.Logger()))}
	if lenient {
		reformatOpts = append(reformatOpts, reformat.WithLenientFolds())
	}
	r, err := reformat.New(settings, reformatOpts...)
	if err != nil {
		return nil, WrapCLIError(ExitCodeConfig, err)
	}
	return r, nil
}

// warnSummary reports warnings that were hidden by the log level.
func warnSummary(opts *config.Options) {
	if flagNoWarnSummary || opts.Level() >= logrus.WarnLevel {
		return
	}
	if n := opts.Warnings(); n > 1 {
		opts.Logger().Errorf("You missed %d warnings in quiet mode!", n)
	}
}
