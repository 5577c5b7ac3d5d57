package reqargs

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is the semantic type tag of a field.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindInteger
	KindFloat
	KindBoolean
	KindDecimal
	KindTimestamp
	KindEnum
	KindAsset
	KindPath
	KindAddress
	KindUUID
	KindFile
	KindList
	KindOptional
)

var kindNames = map[Kind]string{
	KindString:    "string",
	KindInteger:   "integer",
	KindFloat:     "float",
	KindBoolean:   "boolean",
	KindDecimal:   "decimal",
	KindTimestamp: "timestamp",
	KindEnum:      "enum",
	KindAsset:     "asset",
	KindPath:      "path",
	KindAddress:   "address",
	KindUUID:      "uuid",
	KindFile:      "file",
	KindList:      "list",
	KindOptional:  "optional",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind parses a kind name as produced by Kind.String. "int", "bool" and "number" are
// accepted as aliases.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "int":
		return KindInteger, nil
	case "bool":
		return KindBoolean, nil
	case "number":
		return KindFloat, nil
	}
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("reqargs: unknown type %q", s)
}

// Type converts a raw value into the typed value stored in Arguments.
// Coerce returns an Invalid error when the value has the right shape but is rejected (for
// example a bad address checksum); any other error is reported as invalid_type.
// Coerce must not modify raw.
type Type interface {
	Kind() Kind
	String() string
	Coerce(raw any) (any, error)
}

// IntType returns the integer type. Values are stored as int64.
func IntType() Type { return intType{} }

// FloatType returns the float type. Values are stored as float64.
func FloatType() Type { return floatType{} }

// BoolType returns the boolean type.
func BoolType() Type { return boolType{} }

// StringType returns the string type. Only strings are accepted.
func StringType() Type { return stringType{} }

// DecimalType returns the arbitrary-precision decimal type (decimal.Decimal).
func DecimalType() Type { return decimalType{} }

// TimestampType returns the timestamp type: non-negative unix seconds or RFC 3339, stored as
// time.Time in UTC.
func TimestampType() Type { return timestampType{} }

// EnumType returns a type accepting one of values, matched case-insensitively and stored in
// its canonical spelling.
func EnumType(values ...string) Type {
	return enumType{values: append([]string(nil), values...)}
}

// AssetType returns the asset identifier type: a non-empty string without surrounding spaces.
func AssetType() Type { return assetType{} }

// PathOptions configures PathType.
type PathOptions struct {
	MustExist bool // Reject paths that do not exist
	Dir       bool // Require an existing directory (implies MustExist)
}

// PathType returns the filesystem path type. Paths are cleaned.
func PathType(opts PathOptions) Type { return pathType{opts: opts} }

// AddressType returns the EVM address type (common.Address). Mixed-case input must carry
// a valid EIP-55 checksum.
func AddressType() Type { return addressType{} }

// UUIDType returns the UUID type (uuid.UUID).
func UUIDType() Type { return uuidType{} }

// FileType returns the uploaded file type (*File).
func FileType() Type { return fileType{} }

// ListOf returns a list type. A scalar is wrapped into a one-element list; each element is
// coerced with elem. Values are stored as []any.
func ListOf(elem Type) Type { return listType{elem: elem} }

// OptionalOf returns a type that also accepts null, stored as a present nil.
func OptionalOf(inner Type) Type { return optionalType{inner: inner} }

var errNull = errors.New("null is not allowed")

// describe names the shape of a raw value for error messages.
func describe(raw any) string {
	switch raw.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "number"
	case []any, []string:
		return "list"
	case map[string]any:
		return "object"
	case *File:
		return "file"
	default:
		return fmt.Sprintf("%T", raw)
	}
}

func mismatch(raw any) error {
	if raw == nil {
		return errNull
	}
	return fmt.Errorf("got %s", describe(raw))
}

type intType struct{}

func (intType) Kind() Kind     { return KindInteger }
func (intType) String() string { return "integer" }

func (intType) Coerce(raw any) (any, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows int64", v)
		}
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows int64", v)
		}
		return int64(v), nil
	case float32:
		return integralFloat(float64(v))
	case float64:
		return integralFloat(v)
	case json.Number:
		n, err := v.Int64()
		if err == nil {
			return n, nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("%s overflows int64", v.String())
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", v.String())
		}
		return integralFloat(f)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", v)
		}
		return n, nil
	default:
		return nil, mismatch(raw)
	}
}

func integralFloat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not an integer", f)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return nil, fmt.Errorf("%v overflows int64", f)
	}
	return int64(f), nil
}

type floatType struct{}

func (floatType) Kind() Kind     { return KindFloat }
func (floatType) String() string { return "float" }

func (floatType) Coerce(raw any) (any, error) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", v.String())
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", v)
		}
		f = parsed
	default:
		return nil, mismatch(raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%v is not a finite number", f)
	}
	return f, nil
}

type boolType struct{}

func (boolType) Kind() Kind     { return KindBoolean }
func (boolType) String() string { return "boolean" }

var (
	truthy = map[string]bool{"true": true, "t": true, "yes": true, "y": true, "on": true, "1": true}
	falsy  = map[string]bool{"false": true, "f": true, "no": true, "n": true, "off": true, "0": true}
)

func (boolType) Coerce(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		return parseBool(v)
	case json.Number:
		return parseBool(v.String())
	case int:
		return parseBool(strconv.Itoa(v))
	case int64:
		return parseBool(strconv.FormatInt(v, 10))
	default:
		return nil, mismatch(raw)
	}
}

func parseBool(s string) (any, error) {
	lower := strings.ToLower(s)
	if truthy[lower] {
		return true, nil
	}
	if falsy[lower] {
		return false, nil
	}
	return nil, fmt.Errorf("%q is not a boolean", s)
}

type stringType struct{}

func (stringType) Kind() Kind     { return KindString }
func (stringType) String() string { return "string" }

func (stringType) Coerce(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, mismatch(raw)
	}
	return s, nil
}

type decimalType struct{}

func (decimalType) Kind() Kind     { return KindDecimal }
func (decimalType) String() string { return "decimal" }

func (decimalType) Coerce(raw any) (any, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case json.Number:
		return parseDecimal(v.String())
	case string:
		return parseDecimal(v)
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%v is not a finite number", v)
		}
		return decimal.NewFromFloat(v), nil
	default:
		return nil, mismatch(raw)
	}
}

func parseDecimal(s string) (any, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%q is not a decimal", s)
	}
	return d, nil
}

type timestampType struct{}

func (timestampType) Kind() Kind     { return KindTimestamp }
func (timestampType) String() string { return "timestamp" }

func (timestampType) Coerce(raw any) (any, error) {
	if s, ok := raw.(string); ok {
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			t, perr := time.Parse(time.RFC3339, s)
			if perr != nil {
				return nil, fmt.Errorf("%q is neither unix seconds nor RFC 3339", s)
			}
			return t.UTC(), nil
		}
	}
	if t, ok := raw.(time.Time); ok {
		return t.UTC(), nil
	}

	n, err := intType{}.Coerce(raw)
	if err != nil {
		return nil, err
	}
	secs := n.(int64)
	if secs < 0 {
		return nil, Invalid("timestamp %d is negative", secs)
	}
	return time.Unix(secs, 0).UTC(), nil
}

type enumType struct {
	values []string
}

func (enumType) Kind() Kind { return KindEnum }

func (t enumType) String() string {
	return "enum(" + strings.Join(t.values, "|") + ")"
}

func (t enumType) Coerce(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, mismatch(raw)
	}
	for _, v := range t.values {
		if strings.EqualFold(v, s) {
			return v, nil
		}
	}
	return nil, Invalid("value %q must be one of: %s", s, strings.Join(t.values, ", "))
}

// Values returns the allowed values.
func (t enumType) Values() []string {
	return append([]string(nil), t.values...)
}

type assetType struct{}

func (assetType) Kind() Kind     { return KindAsset }
func (assetType) String() string { return "asset" }

func (assetType) Coerce(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, mismatch(raw)
	}
	if s == "" {
		return nil, Invalid("asset identifier must not be empty")
	}
	if strings.TrimSpace(s) != s {
		return nil, Invalid("asset identifier %q has surrounding whitespace", s)
	}
	return s, nil
}

type pathType struct {
	opts PathOptions
}

func (pathType) Kind() Kind     { return KindPath }
func (pathType) String() string { return "path" }

func (t pathType) Coerce(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, mismatch(raw)
	}
	if s == "" {
		return nil, Invalid("path must not be empty")
	}
	p := filepath.Clean(s)

	if t.opts.MustExist || t.opts.Dir {
		info, err := os.Stat(p)
		if err != nil {
			return nil, Invalid("path %q does not exist", p)
		}
		if t.opts.Dir && !info.IsDir() {
			return nil, Invalid("path %q is not a directory", p)
		}
	}
	return p, nil
}

type addressType struct{}

func (addressType) Kind() Kind     { return KindAddress }
func (addressType) String() string { return "address" }

func (addressType) Coerce(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, mismatch(raw)
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, fmt.Errorf("%q is missing the 0x prefix", s)
	}
	if !common.IsHexAddress(s) {
		return nil, fmt.Errorf("%q is not a 20-byte hex address", s)
	}

	addr := common.HexToAddress(s)
	digits := s[2:]
	if strings.ToLower(digits) != digits && strings.ToUpper(digits) != digits {
		if addr.Hex() != "0x"+digits {
			return nil, Invalid("address %q has an invalid checksum", s)
		}
	}
	return addr, nil
}

type uuidType struct{}

func (uuidType) Kind() Kind     { return KindUUID }
func (uuidType) String() string { return "uuid" }

func (uuidType) Coerce(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, mismatch(raw)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%q is not a uuid", s)
	}
	return id, nil
}

type fileType struct{}

func (fileType) Kind() Kind     { return KindFile }
func (fileType) String() string { return "file" }

func (fileType) Coerce(raw any) (any, error) {
	f, ok := raw.(*File)
	if !ok || f == nil {
		return nil, mismatch(raw)
	}
	return f, nil
}

type listType struct {
	elem Type
}

func (listType) Kind() Kind       { return KindList }
func (t listType) String() string { return "list of " + t.elem.String() }

// Elem returns the element type.
func (t listType) Elem() Type { return t.elem }

func (t listType) Coerce(raw any) (any, error) {
	var items []any
	switch v := raw.(type) {
	case nil:
		return nil, errNull
	case []any:
		items = v
	case []string:
		items = make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
	default:
		items = []any{raw}
	}

	out := make([]any, len(items))
	var failures elementErrors
	for i, item := range items {
		coerced, err := t.elem.Coerce(item)
		if err != nil {
			failures = append(failures, elementError{index: i, err: err})
			continue
		}
		out[i] = coerced
	}
	if len(failures) > 0 {
		return nil, failures
	}
	return out, nil
}

type optionalType struct {
	inner Type
}

func (optionalType) Kind() Kind       { return KindOptional }
func (t optionalType) String() string { return "optional " + t.inner.String() }

// Inner returns the wrapped type.
func (t optionalType) Inner() Type { return t.inner }

func (t optionalType) Coerce(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	return t.inner.Coerce(raw)
}
