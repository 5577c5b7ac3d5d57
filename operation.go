package reqargs

import (
	"errors"
	"fmt"
)

// Operation binds a schema and an ordered list of locations to an operation name.
// It is immutable and safe for concurrent use.
type Operation struct {
	name      string
	schema    *Schema
	locations []Location
}

// NewOperation creates an operation. Locations are consulted in the given order; each may
// appear once.
func NewOperation(name string, schema *Schema, locations ...Location) (*Operation, error) {
	if name == "" {
		return nil, errors.New("reqargs: operation name is empty")
	}
	if schema == nil {
		return nil, fmt.Errorf("reqargs: operation %q has no schema", name)
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoLocations, name)
	}

	seen := make(map[Location]bool, len(locations))
	for _, loc := range locations {
		if !loc.Valid() {
			return nil, fmt.Errorf("reqargs: operation %q: invalid location %s", name, loc)
		}
		if seen[loc] {
			return nil, fmt.Errorf("reqargs: operation %q: location %s declared twice", name, loc)
		}
		seen[loc] = true
	}

	return &Operation{
		name:      name,
		schema:    schema,
		locations: append([]Location(nil), locations...),
	}, nil
}

// MustOperation is like NewOperation but panics on error.
func MustOperation(name string, schema *Schema, locations ...Location) *Operation {
	op, err := NewOperation(name, schema, locations...)
	if err != nil {
		panic(err)
	}
	return op
}

// Name returns the operation name.
func (o *Operation) Name() string { return o.name }

// Schema returns the operation schema.
func (o *Operation) Schema() *Schema { return o.schema }

// Locations returns a copy of the declared locations.
func (o *Operation) Locations() []Location {
	return append([]Location(nil), o.locations...)
}
