package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mottu/mottu-cli/internal/api"
	"github.com/mottu/mottu-cli/internal/config"
	"github.com/mottu/mottu-cli/internal/debug"
	"github.com/mottu/mottu-cli/internal/dryrun"
	"github.com/mottu/mottu-cli/internal/iocontext"
	"github.com/mottu/mottu-cli/internal/outfmt"
)

const envOutput = "MOTTU_OUTPUT"

// rootFlags holds global CLI flags
type rootFlags struct {
	Output  string
	JSON    bool
	JQ      string
	Compact bool
	Debug   bool
	Quiet   bool
	DryRun  bool
	Yes     bool
	Timeout time.Duration
	BaseURL string
	Profile string
}

// flags is reset at the start of every Execute call; tests rely on that.
var flags rootFlags

func defaultFlags() rootFlags {
	output := strings.TrimSpace(os.Getenv(envOutput))
	if output == "" {
		output = "text"
	}
	return rootFlags{Output: output, Timeout: api.DefaultTimeout}
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	// .env in the working directory; exported variables win.
	if err := config.LoadDotEnv(".env"); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Warning:", err)
	}
	flags = defaultFlags()

	root := &cobra.Command{
		Use:                "mottu",
		Short:              "CLI for the Mottu motorcycle yard API",
		Long:               "Manage motorcycles, users and yard areas on a Mottu backend.",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupContext(cmd)
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json|jsonl (env "+envOutput+")")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.StringVar(&flags.JQ, "jq", "", "jq expression to filter JSON output")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.BoolVar(&flags.Debug, "debug", false, "Enable debug logging (shows every candidate path tried)")
	pf.BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Preview changes without executing")
	pf.BoolVarP(&flags.Yes, "yes", "y", false, "Skip confirmation prompts")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP request timeout (e.g., 30s, 2m)")
	pf.StringVar(&flags.BaseURL, "base-url", "", "API base URL (overrides "+config.EnvBaseURL+" and the stored profile)")
	pf.StringVar(&flags.Profile, "profile", "", "Stored profile to use (env "+config.EnvProfile+")")

	flagAlias(pf, "jq", "query")
	flagAlias(pf, "compact-json", "cj")
	flagAlias(pf, "dry-run", "dr")
	flagAlias(pf, "timeout", "to")

	root.AddCommand(newAuthCmd())
	root.AddCommand(newMotosCmd())
	root.AddCommand(newUsersCmd())
	root.AddCommand(newAreasCmd())
	root.AddCommand(newPathsCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanceUnknownError(err, root, targetCmd))
		}
		return err
	}
	return nil
}

func setupContext(cmd *cobra.Command) error {
	ctx := cmd.Context()

	if flags.JSON {
		if flagOrAliasChanged(cmd, "output") && flags.Output != "json" {
			return fmt.Errorf("--json conflicts with --output %s", flags.Output)
		}
		flags.Output = "json"
	}
	if flags.JQ != "" && flags.Output == "text" {
		if flagOrAliasChanged(cmd, "output") {
			return fmt.Errorf("--jq requires --output json or jsonl")
		}
		flags.Output = "json"
	}
	if flags.Timeout < 0 {
		return fmt.Errorf("--timeout must be >= 0")
	}

	mode, err := outfmt.Parse(flags.Output)
	if err != nil {
		return err
	}
	ctx = outfmt.WithMode(ctx, mode)
	ctx = outfmt.WithCompact(ctx, flags.Compact)
	if flags.JQ != "" {
		ctx = outfmt.WithQuery(ctx, flags.JQ)
	}

	ioStreams := iocontext.DefaultIO()
	if flags.Quiet && mode == outfmt.Text {
		ioStreams.Out = io.Discard
	}
	ctx = iocontext.WithIO(ctx, ioStreams)
	cmd.SetOut(ioStreams.Out)
	cmd.SetErr(ioStreams.ErrOut)

	debug.SetupLogger(ioStreams.ErrOut, flags.Debug, flags.Quiet)
	ctx = debug.WithDebug(ctx, flags.Debug)
	ctx = dryrun.WithDryRun(ctx, flags.DryRun)

	cmd.SetContext(ctx)
	return nil
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command/flag errors.
func enhanceUnknownError(err error, root, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			var names []string
			for _, c := range root.Commands() {
				if c.IsAvailableCommand() {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := closest(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
		return msg
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		if targetCmd == nil {
			targetCmd = root
		}
		help := targetCmd.CommandPath() + " --help"
		var names []string
		collect := func(f *pflag.Flag) {
			if !f.Hidden {
				names = append(names, "--"+f.Name)
			}
		}
		targetCmd.Flags().VisitAll(collect)
		targetCmd.InheritedFlags().VisitAll(collect)
		if suggestion := closest(extractFlag(msg), names); suggestion != "" {
			return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, help)
		}
		return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, help)
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name (e.g., "--foo") from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		return ""
	}
	rest := s[idx:]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimRight(rest, ".,;:!?\"'")
}
