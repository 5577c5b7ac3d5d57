package schemafile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Azhovan/reqargs"
	"github.com/Azhovan/reqargs/internal/directive"
)

// Options configures definition loading.
type Options struct {
	// Format: "yaml", "json", or "toml". Auto-detected from extension if empty.
	Format string
}

// Document is the decoded form of a definition file.
type Document struct {
	Operations []OperationDef `yaml:"operations" json:"operations" toml:"operations"`
}

// OperationDef declares one operation.
type OperationDef struct {
	Name      string     `yaml:"name" json:"name" toml:"name"`
	Locations []string   `yaml:"locations" json:"locations" toml:"locations"`
	Strict    bool       `yaml:"strict" json:"strict" toml:"strict"`
	Fields    []FieldDef `yaml:"fields" json:"fields" toml:"fields"`
}

// FieldDef declares one field. Items names the element type of a list or the inner type of
// an optional; Values lists the allowed values of an enum (or of enum items).
type FieldDef struct {
	Name        string   `yaml:"name" json:"name" toml:"name"`
	Type        string   `yaml:"type" json:"type" toml:"type"`
	Items       string   `yaml:"items" json:"items" toml:"items"`
	Values      []string `yaml:"values" json:"values" toml:"values"`
	Rules       string   `yaml:"rules" json:"rules" toml:"rules"`
	Default     any      `yaml:"default" json:"default" toml:"default"`
	Description string   `yaml:"description" json:"description" toml:"description"`
	MustExist   bool     `yaml:"must_exist" json:"must_exist" toml:"must_exist"`
	Dir         bool     `yaml:"dir" json:"dir" toml:"dir"`
}

// Catalog holds the operations of one definition file.
type Catalog struct {
	ops   map[string]*reqargs.Operation
	order []string
}

// Load reads and builds the operations declared in path.
func Load(path string, opts Options) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition file %s: %w", path, err)
	}

	format := opts.Format
	if format == "" {
		format = inferFormat(path)
	}

	catalog, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return catalog, nil
}

// Parse decodes data in the given format and builds its operations.
func Parse(data []byte, format string) (*Catalog, error) {
	var doc Document
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse YAML definitions: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse JSON definitions: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse TOML definitions: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: yaml, json, toml)", format)
	}
	return Build(doc)
}

// Build turns a decoded document into operations. All declaration errors are reported together.
func Build(doc Document) (*Catalog, error) {
	c := &Catalog{ops: make(map[string]*reqargs.Operation, len(doc.Operations))}

	var errs []error
	for i, def := range doc.Operations {
		op, err := buildOperation(def)
		if err != nil {
			errs = append(errs, fmt.Errorf("operation %d (%s): %w", i, def.Name, err))
			continue
		}
		if _, dup := c.ops[op.Name()]; dup {
			errs = append(errs, fmt.Errorf("operation %q is declared twice", op.Name()))
			continue
		}
		c.ops[op.Name()] = op
		c.order = append(c.order, op.Name())
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// Lookup returns the operation with the given name.
func (c *Catalog) Lookup(name string) (*reqargs.Operation, bool) {
	op, ok := c.ops[name]
	return op, ok
}

// Names returns the operation names in declaration order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Operations returns the operations in declaration order.
func (c *Catalog) Operations() []*reqargs.Operation {
	out := make([]*reqargs.Operation, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.ops[name])
	}
	return out
}

func buildOperation(def OperationDef) (*reqargs.Operation, error) {
	locations := make([]reqargs.Location, 0, len(def.Locations))
	for _, name := range def.Locations {
		loc, err := reqargs.ParseLocation(name)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}

	fields := make([]*reqargs.Field, 0, len(def.Fields))
	var errs []error
	for _, fd := range def.Fields {
		f, err := buildField(fd)
		if err != nil {
			errs = append(errs, fmt.Errorf("field %q: %w", fd.Name, err))
			continue
		}
		fields = append(fields, f)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	var opts []reqargs.SchemaOption
	if def.Strict {
		opts = append(opts, reqargs.Strict())
	}
	schema, err := reqargs.NewSchema(fields, opts...)
	if err != nil {
		return nil, err
	}
	return reqargs.NewOperation(def.Name, schema, locations...)
}

func buildField(fd FieldDef) (*reqargs.Field, error) {
	typ, err := buildType(fd.Type, fd)
	if err != nil {
		return nil, err
	}

	set, err := directive.Parse(fd.Rules)
	if err != nil {
		return nil, err
	}

	f := reqargs.NewField(fd.Name, typ)
	if set.Required {
		f.Required()
	}
	if set.Secret {
		f.Secret()
	}
	if fd.Description != "" {
		f.Describe(fd.Description)
	}

	switch {
	case set.HasDefault && fd.Default != nil:
		return nil, errors.New("default is set both in rules and as a value")
	case set.HasDefault:
		f.Default(set.Default)
	case fd.Default != nil:
		f.Default(fd.Default)
	}

	rules, err := buildRules(typ, set)
	if err != nil {
		return nil, err
	}
	f.Rules(rules...)
	return f, nil
}

func buildType(name string, fd FieldDef) (reqargs.Type, error) {
	kind, err := reqargs.ParseKind(name)
	if err != nil {
		return nil, err
	}

	switch kind {
	case reqargs.KindString:
		return reqargs.StringType(), nil
	case reqargs.KindInteger:
		return reqargs.IntType(), nil
	case reqargs.KindFloat:
		return reqargs.FloatType(), nil
	case reqargs.KindBoolean:
		return reqargs.BoolType(), nil
	case reqargs.KindDecimal:
		return reqargs.DecimalType(), nil
	case reqargs.KindTimestamp:
		return reqargs.TimestampType(), nil
	case reqargs.KindEnum:
		if len(fd.Values) == 0 {
			return nil, errors.New("enum requires values")
		}
		return reqargs.EnumType(fd.Values...), nil
	case reqargs.KindAsset:
		return reqargs.AssetType(), nil
	case reqargs.KindPath:
		return reqargs.PathType(reqargs.PathOptions{MustExist: fd.MustExist, Dir: fd.Dir}), nil
	case reqargs.KindAddress:
		return reqargs.AddressType(), nil
	case reqargs.KindUUID:
		return reqargs.UUIDType(), nil
	case reqargs.KindFile:
		return reqargs.FileType(), nil
	case reqargs.KindList, reqargs.KindOptional:
		if fd.Items == "" {
			return nil, fmt.Errorf("%s requires items", kind)
		}
		if k, err := reqargs.ParseKind(fd.Items); err == nil && (k == reqargs.KindList || k == reqargs.KindOptional) {
			return nil, fmt.Errorf("%s items cannot be %s", kind, k)
		}
		inner, err := buildType(fd.Items, fd)
		if err != nil {
			return nil, err
		}
		if kind == reqargs.KindList {
			return reqargs.ListOf(inner), nil
		}
		return reqargs.OptionalOf(inner), nil
	default:
		return nil, fmt.Errorf("unsupported type %s", kind)
	}
}

// buildRules maps min/max to value bounds for numeric types and to length bounds for strings
// and lists.
func buildRules(typ reqargs.Type, set directive.Set) ([]reqargs.Rule, error) {
	var rules []reqargs.Rule

	kind := typ.Kind()
	if kind == reqargs.KindOptional {
		if o, ok := typ.(interface{ Inner() reqargs.Type }); ok {
			kind = o.Inner().Kind()
		}
	}

	bound := func(directiveName, value string, numeric func(float64) reqargs.Rule, length func(int) reqargs.Rule) error {
		if value == "" {
			return nil
		}
		switch kind {
		case reqargs.KindInteger, reqargs.KindFloat, reqargs.KindDecimal, reqargs.KindTimestamp:
			n, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid %s value %q: %w", directiveName, value, err)
			}
			rules = append(rules, numeric(n))
		case reqargs.KindString, reqargs.KindAsset, reqargs.KindPath, reqargs.KindList:
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid %s length %q", directiveName, value)
			}
			rules = append(rules, length(n))
		default:
			return fmt.Errorf("%s is not supported for type %s", directiveName, typ)
		}
		return nil
	}

	if err := bound("min", set.Min, reqargs.Min, reqargs.MinLen); err != nil {
		return nil, err
	}
	if err := bound("max", set.Max, reqargs.Max, reqargs.MaxLen); err != nil {
		return nil, err
	}

	if len(set.OneOf) > 0 {
		rules = append(rules, reqargs.OneOf(set.OneOf...))
	}
	if set.Pattern != "" {
		re, err := regexp.Compile(set.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		rules = append(rules, reqargs.Pattern(re))
	}
	return rules, nil
}

func inferFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return ""
	}
}
