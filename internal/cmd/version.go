package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mottu/mottu-cli/internal/update"
)

// version is set at build time via ldflags
var version = "dev"

// updateChecker is replaced in tests.
var updateChecker = update.Checker{}

func newVersionCmd() *cobra.Command {
	var noCheck bool

	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			var result *update.CheckResult
			if !noCheck {
				result = updateChecker.Check(cmdContext(cmd), version)
			}

			if isJSON(cmd) {
				payload := map[string]any{"version": version}
				if result != nil {
					payload["update"] = result
				}
				return printJSON(cmd, payload)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "mottu version %s\n", version)
			if result != nil && result.UpdateAvailable {
				errOut := cmd.ErrOrStderr()
				_, _ = fmt.Fprintf(errOut, "\nUpdate available: %s -> %s\n", result.CurrentVersion, result.LatestVersion)
				_, _ = fmt.Fprintf(errOut, "Download: %s\n", result.UpdateURL)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&noCheck, "no-update-check", false, "Skip the release check")
	return cmd
}
