package reqargs

import (
	"errors"
	"fmt"
)

// Check performs a cross-field validation after every field passed.
// Return *ValidationError for field-level errors; other errors are reported under SchemaField.
type Check func(args *Arguments) error

// Schema is the ordered, immutable set of fields expected by one operation.
// It is safe for concurrent use.
type Schema struct {
	fields []*Field
	index  map[string]int
	strict bool
	checks []Check
}

// SchemaOption configures a Schema at construction.
type SchemaOption func(*Schema)

// Strict makes undeclared keys fail with unknown_field instead of being ignored.
func Strict() SchemaOption {
	return func(s *Schema) {
		s.strict = true
	}
}

// WithCheck adds a cross-field check.
func WithCheck(c Check) SchemaOption {
	return func(s *Schema) {
		s.checks = append(s.checks, c)
	}
}

// NewSchema builds a schema from fields. Names must be unique and non-empty, every field needs
// a type, and defaults must coerce to the field type.
func NewSchema(fields []*Field, opts ...SchemaOption) (*Schema, error) {
	s := &Schema{
		fields: make([]*Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	var errs []error
	for i, f := range fields {
		if f == nil {
			errs = append(errs, fmt.Errorf("field %d is nil", i))
			continue
		}
		if f.name == "" {
			errs = append(errs, fmt.Errorf("field %d has no name", i))
			continue
		}
		if f.typ == nil {
			errs = append(errs, fmt.Errorf("field %q has no type", f.name))
			continue
		}
		if _, dup := s.index[f.name]; dup {
			errs = append(errs, fmt.Errorf("field %q is declared twice", f.name))
			continue
		}

		c := f.clone()
		if c.hasDefault {
			v, err := c.typ.Coerce(c.defValue)
			if err != nil {
				errs = append(errs, fmt.Errorf("field %q: default does not coerce to %s: %w", f.name, c.typ, err))
				continue
			}
			c.defValue = v
		}

		s.index[c.name] = len(s.fields)
		s.fields = append(s.fields, c)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("reqargs: invalid schema: %w", errors.Join(errs...))
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. Intended for package-level declarations.
func MustSchema(fields []*Field, opts ...SchemaOption) *Schema {
	s, err := NewSchema(fields, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Names returns field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// Field returns a copy of the named field.
func (s *Schema) Field(name string) (*Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i].clone(), true
}

// IsStrict reports whether undeclared keys are rejected.
func (s *Schema) IsStrict() bool { return s.strict }

// Declares reports whether name is a declared field.
func (s *Schema) Declares(name string) bool {
	_, ok := s.index[name]
	return ok
}
