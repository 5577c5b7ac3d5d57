// Package directive parses compact field rule strings such as "required,default:10,min:1,oneof:a,b".
package directive

import (
	"fmt"
	"strings"
)

// Set holds parsed directives of one rule string.
type Set struct {
	Default    string   // Default value (default:value)
	HasDefault bool     // Whether a default directive was present
	Min        string   // Minimum constraint (min:N)
	Max        string   // Maximum constraint (max:M)
	OneOf      []string // Allowed values (oneof:a,b,c)
	Pattern    string   // Regular expression (pattern:expr)
	Required   bool     // Field is required (required or required:true)
	Secret     bool     // Field is secret (secret or secret:true)
}

// known lists directive names; a comma followed by one of them ends a oneof or pattern value.
var known = []string{"default:", "min:", "max:", "oneof:", "pattern:", "required", "secret"}

// Parse parses a rule string. Format: "directive1:value1,directive2:value2,...".
// Boolean directives can omit `:true` (e.g., "required" == "required:true").
// Unknown directives and malformed boolean values are errors.
func Parse(rule string) (Set, error) {
	set := Set{}

	if strings.TrimSpace(rule) == "" {
		return set, nil
	}

	for _, d := range split(rule) {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}

		// Split by colon to separate directive name from value
		parts := strings.SplitN(d, ":", 2)
		name := strings.TrimSpace(parts[0])
		var value string
		hasValue := len(parts) > 1
		if hasValue {
			value = parts[1] // Don't trim value - empty strings may be intentional
		}

		switch name {
		case "default":
			set.Default = value
			set.HasDefault = true
		case "min":
			set.Min = strings.TrimSpace(value)
		case "max":
			set.Max = strings.TrimSpace(value)
		case "pattern":
			set.Pattern = value
		case "oneof":
			if value != "" {
				set.OneOf = strings.Split(value, ",")
				for i := range set.OneOf {
					set.OneOf[i] = strings.TrimSpace(set.OneOf[i])
				}
			}
		case "required":
			b, err := parseBool(name, value, hasValue)
			if err != nil {
				return Set{}, err
			}
			set.Required = b
		case "secret":
			b, err := parseBool(name, value, hasValue)
			if err != nil {
				return Set{}, err
			}
			set.Secret = b
		default:
			return Set{}, fmt.Errorf("unknown directive %q", name)
		}
	}

	return set, nil
}

func parseBool(name, value string, hasValue bool) (bool, error) {
	if !hasValue {
		return true, nil
	}
	switch strings.TrimSpace(value) {
	case "", "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("directive %s: invalid boolean %q", name, value)
	}
}

// split splits a rule string into individual directives. Values of oneof and pattern may
// contain commas; inside them a comma ends the value only when a known directive follows.
func split(rule string) []string {
	var directives []string
	var current strings.Builder

	for i := 0; i < len(rule); i++ {
		ch := rule[i]
		if ch != ',' {
			current.WriteByte(ch)
			continue
		}

		if takesCommas(current.String()) && !startsWithDirective(rule[i+1:]) {
			current.WriteByte(ch)
			continue
		}
		directives = append(directives, current.String())
		current.Reset()
	}

	// Add the last directive
	if current.Len() > 0 {
		directives = append(directives, current.String())
	}

	return directives
}

// takesCommas reports whether the directive being accumulated keeps embedded commas.
func takesCommas(directive string) bool {
	d := strings.TrimSpace(directive)
	return strings.HasPrefix(d, "oneof:") || strings.HasPrefix(d, "pattern:")
}

// startsWithDirective checks if a string starts with a known directive name.
func startsWithDirective(s string) bool {
	s = strings.TrimSpace(s)
	for _, d := range known {
		if strings.HasPrefix(s, d) {
			return true
		}
	}
	return false
}
