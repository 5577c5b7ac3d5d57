package reqargs

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Arguments is the typed, immutable result of a successful validation.
// Accessors never expose internal slices or maps.
type Arguments struct {
	operation string
	values    map[string]any
	order     []string
	prov      []FieldProvenance
}

func newArguments(n int) *Arguments {
	return &Arguments{
		values: make(map[string]any, n),
		order:  make([]string, 0, n),
		prov:   make([]FieldProvenance, 0, n),
	}
}

func (a *Arguments) set(name string, v any, fp FieldProvenance) {
	a.values[name] = v
	a.order = append(a.order, name)
	a.prov = append(a.prov, fp)
}

// Operation returns the operation name the arguments were validated for, if any.
func (a *Arguments) Operation() string { return a.operation }

// Len returns the number of present arguments.
func (a *Arguments) Len() int { return len(a.order) }

// Names returns present argument names in schema order.
func (a *Arguments) Names() []string {
	return append([]string(nil), a.order...)
}

// Has reports whether name is present (possibly with a nil value for optional fields).
func (a *Arguments) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// Lookup returns the typed value of name. Lists are returned as copies.
func (a *Arguments) Lookup(name string) (any, bool) {
	v, ok := a.values[name]
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

// Map returns a copy of all arguments.
func (a *Arguments) Map() map[string]any {
	out := make(map[string]any, len(a.values))
	for k, v := range a.values {
		out[k] = copyValue(v)
	}
	return out
}

// Provenance returns where each argument came from, in schema order.
func (a *Arguments) Provenance() *Provenance {
	return &Provenance{Fields: append([]FieldProvenance(nil), a.prov...)}
}

// Value returns the argument name as T. It reports false when the argument is absent, nil, or
// of another type.
func Value[T any](a *Arguments, name string) (T, bool) {
	var zero T
	v, ok := a.Lookup(name)
	if !ok || v == nil {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Int returns an integer argument, or 0.
func (a *Arguments) Int(name string) int64 {
	v, _ := Value[int64](a, name)
	return v
}

// Float returns a float argument, or 0.
func (a *Arguments) Float(name string) float64 {
	v, _ := Value[float64](a, name)
	return v
}

// Bool returns a boolean argument, or false.
func (a *Arguments) Bool(name string) bool {
	v, _ := Value[bool](a, name)
	return v
}

// String returns a string-valued argument (string, enum, asset, path), or "".
func (a *Arguments) String(name string) string {
	v, _ := Value[string](a, name)
	return v
}

// Decimal returns a decimal argument, or zero.
func (a *Arguments) Decimal(name string) decimal.Decimal {
	v, _ := Value[decimal.Decimal](a, name)
	return v
}

// Time returns a timestamp argument, or the zero time.
func (a *Arguments) Time(name string) time.Time {
	v, _ := Value[time.Time](a, name)
	return v
}

// Address returns an address argument, or the zero address.
func (a *Arguments) Address(name string) common.Address {
	v, _ := Value[common.Address](a, name)
	return v
}

// UUID returns a uuid argument, or uuid.Nil.
func (a *Arguments) UUID(name string) uuid.UUID {
	v, _ := Value[uuid.UUID](a, name)
	return v
}

// File returns an uploaded file argument, or nil.
func (a *Arguments) File(name string) *File {
	v, _ := Value[*File](a, name)
	return v
}

// List returns a copy of a list argument, or nil.
func (a *Arguments) List(name string) []any {
	v, _ := Value[[]any](a, name)
	return v
}

// Strings returns the string elements of a list argument. Non-string elements are skipped.
func (a *Arguments) Strings(name string) []string {
	items := a.List(name)
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Ints returns the integer elements of a list argument. Non-integer elements are skipped.
func (a *Arguments) Ints(name string) []int64 {
	items := a.List(name)
	if items == nil {
		return nil
	}
	out := make([]int64, 0, len(items))
	for _, item := range items {
		if n, ok := item.(int64); ok {
			out = append(out, n)
		}
	}
	return out
}

func copyValue(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = copyValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
