package reqargs

import (
	"fmt"
)

// Resolved is the merged raw mapping of one request plus the location that supplied each key.
type Resolved struct {
	Values  RawMapping
	Origins map[string]Location
}

// Resolver combines loaders according to an operation's declared locations.
// It is immutable after NewResolver and safe for concurrent use.
type Resolver struct {
	loaders map[Location]Loader
}

// NewResolver creates a Resolver. A later loader for the same location replaces an earlier one.
func NewResolver(loaders ...Loader) *Resolver {
	r := &Resolver{loaders: make(map[Location]Loader, len(loaders))}
	for _, l := range loaders {
		if l == nil {
			continue
		}
		r.loaders[l.Location()] = l
	}
	return r
}

// Has reports whether a loader is registered for loc.
func (r *Resolver) Has(loc Location) bool {
	_, ok := r.loaders[loc]
	return ok
}

// Supports returns an error wrapping ErrNoLoader for the first location without a loader.
func (r *Resolver) Supports(locations []Location) error {
	for _, loc := range locations {
		if !r.Has(loc) {
			return fmt.Errorf("%w: %s", ErrNoLoader, loc)
		}
	}
	return nil
}

// Resolve extracts every declared location in order and merges the results.
// A later location overrides a key only when it supplies that key. With a single location the
// loader output is returned unchanged. Keys supplied with different shapes (scalar, list,
// object) by two locations fail with a *TransportError wrapping ErrShapeMismatch.
func (r *Resolver) Resolve(req *Request, locations []Location) (Resolved, error) {
	if err := r.Supports(locations); err != nil {
		return Resolved{}, err
	}

	if len(locations) == 0 {
		return Resolved{Values: RawMapping{}, Origins: map[string]Location{}}, nil
	}

	// Single location: pass through without merging
	if len(locations) == 1 {
		loc := locations[0]
		data, err := r.extract(req, loc)
		if err != nil {
			return Resolved{}, err
		}
		origins := make(map[string]Location, len(data))
		for key := range data {
			origins[key] = loc
		}
		return Resolved{Values: data, Origins: origins}, nil
	}

	merged := make(RawMapping)
	origins := make(map[string]Location)

	for _, loc := range locations {
		data, err := r.extract(req, loc)
		if err != nil {
			return Resolved{}, err
		}

		// Later locations override earlier ones for the keys they supply
		for key, value := range data {
			if prev, seen := merged[key]; seen {
				prevShape, nextShape := shapeOf(prev), shapeOf(value)
				if prevShape != shapeNone && nextShape != shapeNone && prevShape != nextShape {
					return Resolved{}, &TransportError{
						Location: loc,
						Field:    key,
						Err: fmt.Errorf("%w: %s from %s, %s from %s",
							ErrShapeMismatch, prevShape, origins[key], nextShape, loc),
					}
				}
			}
			merged[key] = value
			origins[key] = loc
		}
	}

	return Resolved{Values: merged, Origins: origins}, nil
}

func (r *Resolver) extract(req *Request, loc Location) (RawMapping, error) {
	data, err := r.loaders[loc].Extract(req)
	if err != nil {
		if _, ok := AsTransportError(err); ok {
			return nil, err
		}
		return nil, NewTransportError(loc, err)
	}
	if data == nil {
		data = RawMapping{}
	}
	return data, nil
}

type shape uint8

const (
	shapeNone shape = iota
	shapeScalar
	shapeList
	shapeObject
)

func (s shape) String() string {
	switch s {
	case shapeScalar:
		return "scalar"
	case shapeList:
		return "list"
	case shapeObject:
		return "object"
	default:
		return "null"
	}
}

func shapeOf(v any) shape {
	switch v.(type) {
	case nil:
		return shapeNone
	case []any, []string:
		return shapeList
	case map[string]any:
		return shapeObject
	default:
		return shapeScalar
	}
}
