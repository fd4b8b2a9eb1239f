// Package dryrun previews write requests without sending them.
package dryrun

import (
	"context"
	"fmt"
	"io"
	"strings"
)

type contextKey string

const dryRunKey contextKey = "dry_run_enabled"

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dryRunKey, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(dryRunKey).(bool); ok {
		return v
	}
	return false
}

// Field is one labelled value of a preview, printed in order.
type Field struct {
	Name  string
	Value any
}

// Preview describes the request a command would have sent.
type Preview struct {
	Method   string
	Resource string
	// Paths are the candidate endpoints, in the order they would be tried.
	Paths    []string
	Fields   []Field
	Warnings []string
}

// Write outputs the preview to the writer
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "[DRY-RUN] Would %s %s\n", p.Method, p.Resource)

	if len(p.Paths) > 0 {
		_, _ = fmt.Fprintf(w, "  endpoints: %s\n", strings.Join(p.Paths, ", "))
	}
	for _, f := range p.Fields {
		_, _ = fmt.Fprintf(w, "  %s: %v\n", f.Name, f.Value)
	}
	for _, warning := range p.Warnings {
		_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
	}

	_, _ = fmt.Fprintln(w, "No changes made (dry-run mode)")
}
