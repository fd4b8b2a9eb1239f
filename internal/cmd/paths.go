package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mottu/mottu-cli/internal/api"
	"github.com/mottu/mottu-cli/internal/config"
)

func newPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Show the candidate endpoint paths",
		Long: strings.TrimSpace(`
Show the endpoint paths tried for each resource, in order. Overrides are read
from the YAML file printed by 'mottu paths file' (env MOTTU_PATHS_FILE).
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			paths, err := config.LoadPaths()
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"file": config.PathsFile(), "paths": paths})
			}
			writePathSet(cmd.OutOrStdout(), paths)
			return nil
		}),
	}

	cmd.AddCommand(newPathsFileCmd())
	cmd.AddCommand(newPathsInitCmd())
	return cmd
}

func writePathSet(w io.Writer, paths api.PathSet) {
	sections := []struct {
		name  string
		paths []string
	}{
		{"login", paths.Login},
		{"register", paths.Register},
		{"motorcycles", paths.Motorcycles},
		{"areas", paths.Areas},
		{"users", []string{paths.Users}},
	}
	for _, s := range sections {
		_, _ = fmt.Fprintf(w, "%s:\n", s.name)
		for _, p := range s.paths {
			_, _ = fmt.Fprintf(w, "  %s\n", p)
		}
	}
}

func newPathsFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "file",
		Short: "Print the location of the overrides file",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			path := config.PathsFile()
			_, err := os.Stat(path)
			exists := err == nil
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"file": path, "exists": exists})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}),
	}
}

func newPathsInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default paths to the overrides file for editing",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			target := config.PathsFile()
			if _, err := os.Stat(target); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", target)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			written, err := config.WritePaths(api.DefaultPaths())
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"file": written})
			}
			printAction(cmd, "Wrote", "paths file", written, "")
			return nil
		}),
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
