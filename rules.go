package reqargs

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Rule validates a coerced value. Failures are reported as invalid_value.
type Rule interface {
	Check(v any) error
}

// RuleFunc is a function adapter for Rule interface.
type RuleFunc func(v any) error

func (f RuleFunc) Check(v any) error {
	return f(v)
}

// Min rejects numbers, decimals and timestamps (as unix seconds) below bound.
func Min(bound float64) Rule {
	b := decimal.NewFromFloat(bound)
	return RuleFunc(func(v any) error {
		n, ok := numericValue(v)
		if !ok {
			return nil
		}
		if n.LessThan(b) {
			return Invalid("value %s is below minimum %s", n, b)
		}
		return nil
	})
}

// Max rejects numbers, decimals and timestamps (as unix seconds) above bound.
func Max(bound float64) Rule {
	b := decimal.NewFromFloat(bound)
	return RuleFunc(func(v any) error {
		n, ok := numericValue(v)
		if !ok {
			return nil
		}
		if n.GreaterThan(b) {
			return Invalid("value %s exceeds maximum %s", n, b)
		}
		return nil
	})
}

// Range combines Min and Max.
func Range(min, max float64) Rule {
	lo, hi := Min(min), Max(max)
	return RuleFunc(func(v any) error {
		if err := lo.Check(v); err != nil {
			return err
		}
		return hi.Check(v)
	})
}

// MinLen rejects strings (by rune count) and lists shorter than n.
func MinLen(n int) Rule {
	return RuleFunc(func(v any) error {
		length, kind, ok := lengthOf(v)
		if !ok {
			return nil
		}
		if length < n {
			return Invalid("%s length %d is below minimum %d", kind, length, n)
		}
		return nil
	})
}

// MaxLen rejects strings (by rune count) and lists longer than n.
func MaxLen(n int) Rule {
	return RuleFunc(func(v any) error {
		length, kind, ok := lengthOf(v)
		if !ok {
			return nil
		}
		if length > n {
			return Invalid("%s length %d exceeds maximum %d", kind, length, n)
		}
		return nil
	})
}

// NotEmpty rejects empty strings and empty lists.
func NotEmpty() Rule {
	return MinLen(1)
}

// OneOf rejects values whose string form is not among allowed.
func OneOf(allowed ...string) Rule {
	return RuleFunc(func(v any) error {
		s := formatScalar(v)
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return Invalid("value %q must be one of: %s", s, strings.Join(allowed, ", "))
	})
}

// Pattern rejects strings that do not match re.
func Pattern(re *regexp.Regexp) Rule {
	return RuleFunc(func(v any) error {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		if !re.MatchString(s) {
			return Invalid("value %q does not match %s", s, re.String())
		}
		return nil
	})
}

// numericValue converts the numeric values produced by the built-in types to a decimal.
func numericValue(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case decimal.Decimal:
		return n, true
	case time.Time:
		return decimal.NewFromInt(n.Unix()), true
	default:
		return decimal.Decimal{}, false
	}
}

func lengthOf(v any) (int, string, bool) {
	switch x := v.(type) {
	case string:
		return utf8.RuneCountInString(x), "string", true
	case []any:
		return len(x), "list", true
	default:
		return 0, "", false
	}
}

// formatScalar renders a coerced value the way OneOf and dumps compare it.
func formatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}
