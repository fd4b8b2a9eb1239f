package outfmt

import (
	"context"
	"io"

	"github.com/mottu/mottu-cli/internal/filter"
)

type queryKey struct{}

// WithQuery adds a jq query to the context
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// GetQuery retrieves the jq query from context
func GetQuery(ctx context.Context) string {
	if q, ok := ctx.Value(queryKey{}).(string); ok {
		return q
	}
	return ""
}

// ApplyQuery wraps lists and runs query over the result.
func ApplyQuery(v any, query string) (any, error) {
	return filter.ApplyTo(normalizeJSONOutput(v), query)
}

// WriteJSONFiltered writes v as JSON after applying the optional jq query.
func WriteJSONFiltered(w io.Writer, v any, query string, compact bool) error {
	result, err := ApplyQuery(v, query)
	if err != nil {
		return err
	}
	return WriteJSONMaybeCompact(w, result, compact)
}
