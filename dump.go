package reqargs

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// redacted replaces secret values in dumps.
const redacted = "***redacted***"

// DumpOption configures dump behavior using the functional options pattern.
type DumpOption func(*dumpConfig)

// dumpConfig holds options for DumpArguments.
type dumpConfig struct {
	withSources bool   // Include source attribution for each field
	asJSON      bool   // Output as JSON instead of text format
	indent      string // Indentation for JSON output (default: "  ")
}

// WithSources includes source attribution for each field in the output.
func WithSources() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.withSources = true
	}
}

// AsJSON outputs arguments as JSON instead of text format.
func AsJSON() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.asJSON = true
	}
}

// WithIndent sets the indentation for JSON output.
// Default is two spaces ("  "); empty produces compact JSON.
func WithIndent(indent string) DumpOption {
	return func(cfg *dumpConfig) {
		cfg.indent = indent
	}
}

// DumpArguments writes a human-readable representation of validated arguments in schema order.
// Secret fields are redacted as "***redacted***".
func DumpArguments(w io.Writer, args *Arguments, opts ...DumpOption) error {
	if args == nil {
		return fmt.Errorf("arguments are nil")
	}

	config := dumpConfig{
		indent: "  ",
	}
	for _, opt := range opts {
		opt(&config)
	}

	if config.asJSON {
		return dumpAsJSON(w, args, config)
	}
	return dumpAsText(w, args, config)
}

// dumpAsText outputs arguments in text format (name: value).
func dumpAsText(w io.Writer, args *Arguments, config dumpConfig) error {
	for i, name := range args.order {
		prov := args.prov[i]

		display := redacted
		if !prov.Secret {
			display = formatText(args.values[name])
		}

		line := fmt.Sprintf("%s: %s", name, display)
		if config.withSources && prov.SourceName != "" {
			line += fmt.Sprintf(" (source: %s)", prov.SourceName)
		}
		line += "\n"

		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
	}
	return nil
}

// dumpAsJSON outputs arguments as a JSON object. With sources, each value is wrapped as
// {"value": ..., "source": ...}.
func dumpAsJSON(w io.Writer, args *Arguments, config dumpConfig) error {
	result := make(map[string]any, len(args.order))
	for i, name := range args.order {
		prov := args.prov[i]

		var value any = redacted
		if !prov.Secret {
			value = formatJSON(args.values[name])
		}

		if config.withSources {
			result[name] = map[string]any{"value": value, "source": prov.SourceName}
		} else {
			result[name] = value
		}
	}

	var data []byte
	var err error
	if config.indent != "" {
		data, err = json.MarshalIndent(result, "", config.indent)
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

// formatText formats a typed value for text output.
func formatText(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return fmt.Sprintf("%q", x)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = formatText(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *File:
		return fmt.Sprintf("file(%q, %d bytes)", x.Filename, x.Size)
	default:
		return formatScalar(v)
	}
}

// formatJSON converts a typed value to a JSON-friendly value.
func formatJSON(v any) any {
	switch x := v.(type) {
	case nil, string, bool, int64, float64:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = formatJSON(item)
		}
		return out
	case *File:
		return map[string]any{"filename": x.Filename, "content_type": x.ContentType, "size": x.Size}
	default:
		return formatScalar(v)
	}
}
