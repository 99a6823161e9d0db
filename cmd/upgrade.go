package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/virtualboard/yaml4rst/internal/upgrade"
	"github.com/virtualboard/yaml4rst/internal/version"
)

func newUpgradeCommand() *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade yaml4rst to the latest version",
		Long:  "Check for a newer version of yaml4rst on GitHub releases and upgrade the binary if available.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options()
			if err != nil {
				return err
			}

			upgrader := upgrade.NewUpgrader(opts.Logger())
			if baseURL != "" {
				if upgrader, err = upgrader.WithBaseURL(baseURL); err != nil {
					return WrapCLIError(ExitCodeConfig, err)
				}
			}

			result, err := upgrader.Upgrade(cmd.Context(), version.Current)
			if err != nil {
				if errors.Is(err, fs.ErrPermission) || strings.Contains(err.Error(), "permission denied") {
					errorMsg := "upgrade failed: permission denied. Please run with sudo to upgrade the binary"
					if opts.JSONOutput {
						payload := map[string]interface{}{
							"error":           errorMsg,
							"current_version": version.Current,
							"suggestion":      "Run 'sudo yaml4rst upgrade' to upgrade the binary",
						}
						if rerr := respond(cmd, opts, false, "upgrade failed", payload); rerr != nil {
							return rerr
						}
					}
					return NewCLIError(ExitCodeFilesystem, errorMsg)
				}

				if opts.JSONOutput {
					payload := map[string]interface{}{
						"error":           err.Error(),
						"current_version": version.Current,
					}
					if rerr := respond(cmd, opts, false, "upgrade failed", payload); rerr != nil {
						return rerr
					}
				}
				return WrapCLIError(ExitCodeUnknown, fmt.Errorf("upgrade failed: %w", err))
			}

			if opts.JSONOutput {
				payload := map[string]interface{}{
					"message":         result.Message,
					"current_version": result.CurrentVersion,
					"latest_version":  result.LatestVersion,
					"upgraded":        result.Upgraded,
				}
				return respond(cmd, opts, true, "upgrade", payload)
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "api-url", "", "GitHub API endpoint to query for releases")
	return cmd
}
