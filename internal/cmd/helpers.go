package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mottu/mottu-cli/internal/api"
	"github.com/mottu/mottu-cli/internal/dryrun"
	"github.com/mottu/mottu-cli/internal/iocontext"
	"github.com/mottu/mottu-cli/internal/outfmt"
	"github.com/mottu/mottu-cli/internal/validation"
)

// cmdContext returns the command context
func cmdContext(cmd *cobra.Command) context.Context {
	return cmd.Context()
}

// isJSON checks if the command context wants JSON output
func isJSON(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmd.Context())
}

// printJSON writes v to stdout honouring --jq and --compact-json.
func printJSON(cmd *cobra.Command, v any) error {
	return newFormatter(cmd).Output(v)
}

func printJSONErr(cmd *cobra.Command, v any) error {
	ioStreams := iocontext.GetIO(cmd.Context())
	return outfmt.WriteJSON(ioStreams.ErrOut, v)
}

func newFormatter(cmd *cobra.Command) *outfmt.Formatter {
	ioStreams := iocontext.GetIO(cmd.Context())
	return outfmt.NewFormatter(cmd.Context(), ioStreams.Out, ioStreams.ErrOut)
}

func printAction(cmd *cobra.Command, action, resource string, id any, name string) {
	if flags.Quiet || isJSON(cmd) {
		return
	}
	ioStreams := iocontext.GetIO(cmd.Context())
	message := fmt.Sprintf("%s %s", action, resource)
	if id != nil {
		message = fmt.Sprintf("%s %v", message, id)
	}
	if name != "" {
		message = fmt.Sprintf("%s: %s", message, name)
	}
	_, _ = fmt.Fprintln(ioStreams.Out, message)
}

// warn writes to stderr unless --quiet is set.
func warn(cmd *cobra.Command, format string, args ...any) {
	if flags.Quiet {
		return
	}
	ioStreams := iocontext.GetIO(cmd.Context())
	_, _ = fmt.Fprintf(ioStreams.ErrOut, "Warning: "+format+"\n", args...)
}

func maybeDryRun(cmd *cobra.Command, preview *dryrun.Preview) (bool, error) {
	if !dryrun.IsEnabled(cmd.Context()) {
		return false, nil
	}
	if isJSON(cmd) {
		details := make(map[string]any, len(preview.Fields))
		for _, f := range preview.Fields {
			details[f.Name] = f.Value
		}
		return true, printJSON(cmd, map[string]any{
			"dryRun":   true,
			"method":   preview.Method,
			"resource": preview.Resource,
			"paths":    preview.Paths,
			"details":  details,
			"warnings": preview.Warnings,
		})
	}
	ioStreams := iocontext.GetIO(cmd.Context())
	preview.Write(ioStreams.Out)
	return true, nil
}

type confirmOptions struct {
	Prompt        string
	CancelMessage string
	Force         bool
}

// confirmAction asks for a "y" on stdin unless --yes or Force is set. JSON
// output cannot prompt, so it requires one of them.
func confirmAction(cmd *cobra.Command, opts confirmOptions) (bool, error) {
	if flags.Yes || opts.Force {
		return true, nil
	}
	if isJSON(cmd) {
		return false, fmt.Errorf("--yes is required when using --output json")
	}

	ioStreams := iocontext.GetIO(cmd.Context())
	_, _ = fmt.Fprint(ioStreams.ErrOut, opts.Prompt)
	response, err := bufio.NewReader(ioStreams.In).ReadString('\n')
	if (err != nil && response == "") || strings.ToLower(strings.TrimSpace(response)) != "y" {
		if opts.CancelMessage != "" {
			_, _ = fmt.Fprintln(ioStreams.ErrOut, opts.CancelMessage)
		}
		return false, nil
	}
	return true, nil
}

func parseID(input, resource string) (int, error) {
	return validation.ParsePositiveInt(input, resource+" ID")
}

// parseIDArgs parses every argument as a positive ID, rejecting duplicates.
func parseIDArgs(args []string, resource string) ([]int, error) {
	seen := make(map[int]bool, len(args))
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := parseID(part, resource)
			if err != nil {
				return nil, err
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one %s ID is required", resource)
	}
	return ids, nil
}

// normalizeEnum matches input case-insensitively against valid and returns
// the canonical spelling.
func normalizeEnum(field, input string, valid []string) (string, error) {
	input = strings.TrimSpace(input)
	for _, v := range valid {
		if strings.EqualFold(input, v) {
			return v, nil
		}
	}
	return "", api.NewValidationError(field, input, valid)
}

// aliasBridgeValue marks the canonical flag as changed when the alias is set.
type aliasBridgeValue struct {
	pflag.Value
	canonical *pflag.Flag
}

func (v *aliasBridgeValue) Set(s string) error {
	if err := v.Value.Set(s); err != nil {
		return err
	}
	v.canonical.Changed = true
	return nil
}

// flagAlias registers a hidden alias sharing the named flag's value.
func flagAlias(fs *pflag.FlagSet, name, alias string) {
	f := fs.Lookup(name)
	if f == nil {
		panic(fmt.Sprintf("flagAlias: flag %q not found", name))
	}
	a := *f
	a.Name = alias
	a.Shorthand = ""
	a.Usage = ""
	a.Hidden = true
	a.Value = &aliasBridgeValue{Value: f.Value, canonical: f}
	a.Annotations = map[string][]string{"alias-of": {name}}
	fs.AddFlag(&a)
}

// flagOrAliasChanged returns true if the named flag or any of its
// hidden aliases was explicitly set by the user.
func flagOrAliasChanged(cmd *cobra.Command, name string) bool {
	if cmd.Flags().Changed(name) || cmd.InheritedFlags().Changed(name) {
		return true
	}
	changed := false
	check := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			if ann := f.Annotations["alias-of"]; len(ann) > 0 && ann[0] == name && fs.Changed(f.Name) {
				changed = true
			}
		})
	}
	check(cmd.Flags())
	check(cmd.InheritedFlags())
	return changed
}

// errAlreadyHandled marks an error that RunE already printed.
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() []error {
	return []error{e.err, errAlreadyHandled}
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

// RunE wraps a command function with enhanced error handling
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		if isJSON(cmd) {
			_ = printJSONErr(cmd, map[string]any{"error": api.StructuredErrorFromError(err)})
		} else {
			_, _ = fmt.Fprint(cmd.ErrOrStderr(), HandleError(err))
		}
		return &handledError{err: err, exitCode: ExitCode(err)}
	}
}
