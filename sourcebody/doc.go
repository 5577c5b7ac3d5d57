// Package sourcebody loads arguments from the request body.
//
// The decoder is chosen from the Content-Type: JSON (including +json types), YAML or TOML.
// A body without Content-Type is decoded as JSON. Form bodies are left to sourceform.
// JSON numbers are kept as json.Number so integer fields never round-trip through float64.
//
// Example:
//
//	loader := sourcebody.New(sourcebody.Options{MaxBytes: 1 << 20})
//	resolver := reqargs.NewResolver(loader, sourcequery.New())
package sourcebody
