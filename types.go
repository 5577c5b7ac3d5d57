package reqargs

import (
	"context"
	"fmt"
	"strings"
)

// Location identifies the transport channel a value was read from.
type Location uint8

const (
	// NoLocation marks values that did not come from the request (defaults, direct Validate calls).
	NoLocation Location = iota
	InBody
	InQuery
	InPath
	InForm
	InFile
)

// Locations lists every request location in canonical order.
var Locations = []Location{InBody, InQuery, InPath, InForm, InFile}

// String returns the lowercase location name.
func (l Location) String() string {
	switch l {
	case InBody:
		return "body"
	case InQuery:
		return "query"
	case InPath:
		return "path"
	case InForm:
		return "form"
	case InFile:
		return "file"
	case NoLocation:
		return "none"
	default:
		return fmt.Sprintf("location(%d)", uint8(l))
	}
}

// Valid reports whether l is one of the five request locations.
func (l Location) Valid() bool {
	return l >= InBody && l <= InFile
}

// ParseLocation parses a location name. "json" and "view_args" are accepted as aliases of
// body and path.
func ParseLocation(s string) (Location, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "body", "json":
		return InBody, nil
	case "query", "querystring":
		return InQuery, nil
	case "path", "view_args":
		return InPath, nil
	case "form":
		return InForm, nil
	case "file", "files":
		return InFile, nil
	default:
		return NoLocation, fmt.Errorf("reqargs: unknown location %q", s)
	}
}

// RawMapping holds untyped values produced by a Loader, keyed by field name.
// Scalars are string, bool, json.Number, nil, map[string]any or *File; lists are []any or []string.
type RawMapping map[string]any

// Loader extracts raw values from exactly one request location.
type Loader interface {
	// Location returns the location this loader reads.
	Location() Location

	// Extract returns the raw values found at the location. It fails only with a
	// *TransportError when the location's encoding is malformed; a missing location yields an
	// empty mapping.
	Extract(req *Request) (RawMapping, error)
}

// Handler is the business collaborator invoked with validated arguments.
type Handler interface {
	Handle(ctx context.Context, operation string, args *Arguments) (any, error)
}

// HandlerFunc is a function adapter for Handler interface.
type HandlerFunc func(ctx context.Context, operation string, args *Arguments) (any, error)

func (f HandlerFunc) Handle(ctx context.Context, operation string, args *Arguments) (any, error) {
	return f(ctx, operation, args)
}
