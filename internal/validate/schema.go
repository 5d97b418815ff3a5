// Package validate is a small declarative schema engine for request scopes
// (body, query, params). A Schema maps field names to rules; Validate checks
// every field, collects ALL violations instead of stopping at the first, and
// returns a coerced copy of the data (trimmed strings, numeric strings turned
// into integers) so downstream code only sees clean values. Fields not named
// in the schema are stripped from the result; outright rejection of unknown
// fields is a separate middleware concern.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/devsahoo/auth-service/internal/httperr"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type kind int

const (
	kindString kind = iota
	kindNumber
)

// Field holds the rule chain for one schema entry. Build with String() or
// Number() and chain modifiers, Joi-style.
type Field struct {
	kind     kind
	required bool
	minLen   int
	maxLen   int
	email    bool
	password bool
	pattern  *regexp.Regexp
	patMsg   string
	oneOf    []string
	positive bool
}

// String declares a string field. String values are always trimmed during
// coercion.
func String() *Field { return &Field{kind: kindString} }

// Number declares an integer field. JSON numbers and numeric strings (query
// and path scopes arrive as strings) both coerce to uint64.
func Number() *Field { return &Field{kind: kindNumber} }

func (f *Field) Required() *Field { f.required = true; return f }

func (f *Field) Min(n int) *Field { f.minLen = n; return f }

func (f *Field) Max(n int) *Field { f.maxLen = n; return f }

func (f *Field) Email() *Field { f.email = true; return f }

// Password enforces the registration complexity rule: at least 8 characters
// with upper, lower, digit and symbol.
func (f *Field) Password() *Field { f.password = true; return f }

func (f *Field) Pattern(re *regexp.Regexp, msg string) *Field {
	f.pattern = re
	f.patMsg = msg
	return f
}

func (f *Field) OneOf(values ...string) *Field { f.oneOf = values; return f }

func (f *Field) Positive() *Field { f.positive = true; return f }

// Schema maps field names to their rules.
type Schema map[string]*Field

// Validate checks data against the schema. location names the scope ("body",
// "query" or "params") and is echoed into each violation. On success the
// returned map holds only schema fields with coerced values.
func (s Schema) Validate(location string, data map[string]any) (map[string]any, []httperr.Violation) {
	clean := make(map[string]any, len(s))
	var violations []httperr.Violation

	add := func(field, msg string) {
		violations = append(violations, httperr.Violation{
			Type:     "ValidationError",
			Msg:      msg,
			Path:     field,
			Location: location,
		})
	}

	for name, field := range s {
		raw, present := data[name]
		if !present || raw == nil {
			if field.required {
				add(name, fmt.Sprintf("%s is required", name))
			}
			continue
		}
		switch field.kind {
		case kindString:
			v, ok := raw.(string)
			if !ok {
				add(name, fmt.Sprintf("%s must be a string", name))
				continue
			}
			v = strings.TrimSpace(v)
			if field.required && v == "" {
				add(name, fmt.Sprintf("%s cannot be empty", name))
				continue
			}
			ok = true
			if field.minLen > 0 && len(v) < field.minLen {
				add(name, fmt.Sprintf("%s must be at least %d characters long", name, field.minLen))
				ok = false
			}
			if field.maxLen > 0 && len(v) > field.maxLen {
				add(name, fmt.Sprintf("%s must be at most %d characters long", name, field.maxLen))
				ok = false
			}
			if field.email && !emailRe.MatchString(v) {
				add(name, fmt.Sprintf("%s must be a valid email address", name))
				ok = false
			}
			if field.password && !strongPassword(v) {
				add(name, fmt.Sprintf("%s must be at least 8 characters long and include uppercase, lowercase, number, and special character", name))
				ok = false
			}
			if field.pattern != nil && !field.pattern.MatchString(v) {
				add(name, field.patMsg)
				ok = false
			}
			if len(field.oneOf) > 0 && !contains(field.oneOf, v) {
				add(name, fmt.Sprintf("%s must be one of: %s", name, strings.Join(field.oneOf, ", ")))
				ok = false
			}
			if ok {
				clean[name] = v
			}
		case kindNumber:
			n, err := coerceUint(raw)
			if err != nil {
				add(name, fmt.Sprintf("%s must be a valid number", name))
				continue
			}
			if field.positive && n == 0 {
				add(name, fmt.Sprintf("%s must be a positive number", name))
				continue
			}
			clean[name] = n
		}
	}
	return clean, violations
}

func coerceUint(raw any) (uint64, error) {
	switch v := raw.(type) {
	case float64:
		if v < 0 || v != float64(uint64(v)) {
			return 0, fmt.Errorf("not a non-negative integer: %v", v)
		}
		return uint64(v), nil
	case string:
		return strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	default:
		return 0, fmt.Errorf("not a number: %T", raw)
	}
}

func strongPassword(v string) bool {
	if len(v) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range v {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
