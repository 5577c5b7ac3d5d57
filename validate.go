package reqargs

import (
	"errors"
	"fmt"
	"sort"
)

// Validate applies schema to raw and returns the typed arguments or a *ValidationError holding
// every field failure. raw and schema are not modified.
func Validate(raw RawMapping, schema *Schema) (*Arguments, error) {
	return ValidateResolved(Resolved{Values: raw}, schema)
}

// ValidateResolved is Validate for a resolver result; provenance records the supplying location.
func ValidateResolved(res Resolved, schema *Schema) (*Arguments, error) {
	args := newArguments(len(schema.fields))
	var fieldErrors []FieldError

	for _, f := range schema.fields {
		raw, present := res.Values[f.name]

		// Step 1: absent fields fall back to the default or fail when required
		if !present {
			if f.hasDefault {
				args.set(f.name, f.defValue, provenanceFor(f, NoLocation, true))
				continue
			}
			if f.required {
				fieldErrors = append(fieldErrors, FieldError{
					Field:   f.name,
					Code:    ErrCodeMissingField,
					Message: "field is required but not provided",
				})
			}
			continue
		}

		// Step 2: coerce to the declared type
		value, err := f.typ.Coerce(raw)
		if err != nil {
			fieldErrors = append(fieldErrors, coercionErrors(f.name, f.typ, err)...)
			continue
		}

		// Step 3: custom rules; the first failing rule is reported
		if fe, failed := applyRules(f, value); failed {
			fieldErrors = append(fieldErrors, fe)
			continue
		}

		args.set(f.name, value, provenanceFor(f, res.Origins[f.name], false))
	}

	// Step 4: strict schemas reject undeclared keys
	if schema.strict {
		fieldErrors = append(fieldErrors, unknownKeyErrors(res.Values, schema)...)
	}

	if len(fieldErrors) > 0 {
		return nil, &ValidationError{FieldErrors: fieldErrors}
	}

	// Step 5: cross-field checks once every field is valid
	for i, check := range schema.checks {
		err := check(args)
		if err == nil {
			continue
		}
		var ve *ValidationError
		if errors.As(err, &ve) {
			fieldErrors = append(fieldErrors, ve.FieldErrors...)
			continue
		}
		fieldErrors = append(fieldErrors, FieldError{
			Field:   SchemaField,
			Code:    ErrCodeInvalidValue,
			Message: fmt.Sprintf("check %d failed: %v", i, err),
		})
	}

	if len(fieldErrors) > 0 {
		return nil, &ValidationError{FieldErrors: fieldErrors}
	}
	return args, nil
}

// coercionErrors classifies a coercion failure. List element failures are reported one per
// element under name[i].
func coercionErrors(name string, typ Type, err error) []FieldError {
	var elems elementErrors
	if errors.As(err, &elems) {
		elemType := typ
		if lt, ok := unwrapList(typ); ok {
			elemType = lt.elem
		}
		var out []FieldError
		for _, el := range elems {
			out = append(out, coercionErrors(fmt.Sprintf("%s[%d]", name, el.index), elemType, el.err)...)
		}
		return out
	}

	if IsInvalidValue(err) {
		return []FieldError{{Field: name, Code: ErrCodeInvalidValue, Message: err.Error()}}
	}
	return []FieldError{{
		Field:   name,
		Code:    ErrCodeInvalidType,
		Message: fmt.Sprintf("expected %s: %v", typ, err),
	}}
}

func unwrapList(typ Type) (listType, bool) {
	switch t := typ.(type) {
	case listType:
		return t, true
	case optionalType:
		return unwrapList(t.inner)
	default:
		return listType{}, false
	}
}

func applyRules(f *Field, value any) (FieldError, bool) {
	if value == nil {
		return FieldError{}, false
	}
	for _, rule := range f.rules {
		if err := rule.Check(value); err != nil {
			return FieldError{Field: f.name, Code: ErrCodeInvalidValue, Message: err.Error()}, true
		}
	}
	return FieldError{}, false
}

func unknownKeyErrors(raw RawMapping, schema *Schema) []FieldError {
	var unknown []string
	for key := range raw {
		if !schema.Declares(key) {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)

	out := make([]FieldError, 0, len(unknown))
	for _, key := range unknown {
		out = append(out, FieldError{
			Field:   key,
			Code:    ErrCodeUnknownField,
			Message: "unknown field (strict schema)",
		})
	}
	return out
}
