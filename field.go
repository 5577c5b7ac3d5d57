package reqargs

// Field declares one expected argument. Build it with the typed constructors and the fluent
// modifiers, then pass it to NewSchema, which takes a private copy.
type Field struct {
	name        string
	typ         Type
	required    bool
	defValue    any
	hasDefault  bool
	rules       []Rule
	secret      bool
	description string
}

// NewField creates an optional field of the given type.
func NewField(name string, typ Type) *Field {
	return &Field{name: name, typ: typ}
}

func Int(name string) *Field       { return NewField(name, IntType()) }
func Float(name string) *Field     { return NewField(name, FloatType()) }
func Bool(name string) *Field      { return NewField(name, BoolType()) }
func String(name string) *Field    { return NewField(name, StringType()) }
func Decimal(name string) *Field   { return NewField(name, DecimalType()) }
func Timestamp(name string) *Field { return NewField(name, TimestampType()) }
func Asset(name string) *Field     { return NewField(name, AssetType()) }
func Address(name string) *Field   { return NewField(name, AddressType()) }
func UUID(name string) *Field      { return NewField(name, UUIDType()) }
func Upload(name string) *Field    { return NewField(name, FileType()) }

// Enum creates a field accepting one of values.
func Enum(name string, values ...string) *Field { return NewField(name, EnumType(values...)) }

// Path creates a filesystem path field.
func Path(name string, opts PathOptions) *Field { return NewField(name, PathType(opts)) }

// List creates a list field whose elements have type elem.
func List(name string, elem Type) *Field { return NewField(name, ListOf(elem)) }

// Optional creates a field of type inner that also accepts null.
func Optional(name string, inner Type) *Field { return NewField(name, OptionalOf(inner)) }

// Required marks the field as required. A default, when set, still satisfies the field.
func (f *Field) Required() *Field {
	f.required = true
	return f
}

// Default sets the value used when no location supplies the field. The value is coerced with
// the field type when the schema is built.
func (f *Field) Default(v any) *Field {
	f.defValue = v
	f.hasDefault = true
	return f
}

// Rules appends custom validators run after a successful coercion.
func (f *Field) Rules(rules ...Rule) *Field {
	f.rules = append(f.rules, rules...)
	return f
}

// Secret marks the field value as sensitive; dumps redact it.
func (f *Field) Secret() *Field {
	f.secret = true
	return f
}

// Describe attaches a human-readable description.
func (f *Field) Describe(text string) *Field {
	f.description = text
	return f
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Type returns the field type.
func (f *Field) Type() Type { return f.typ }

// IsRequired reports whether the field is required.
func (f *Field) IsRequired() bool { return f.required }

// IsSecret reports whether the field is secret.
func (f *Field) IsSecret() bool { return f.secret }

// Description returns the field description.
func (f *Field) Description() string { return f.description }

// DefaultValue returns the default and whether one is set.
func (f *Field) DefaultValue() (any, bool) { return f.defValue, f.hasDefault }

func (f *Field) clone() *Field {
	c := *f
	c.rules = append([]Rule(nil), f.rules...)
	return &c
}
