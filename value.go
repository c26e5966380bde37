package quill

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value represents a script value with type-safe accessors.
// Values use "shimmering": lazy conversion between representations, with at
// most one cached typed form alongside the canonical string.
type Value interface {
	// String returns the string representation of the value.
	String() string

	// Int returns the integer representation of the value.
	// Returns an error if the value cannot be converted to an integer.
	Int() (int64, error)

	// Float returns the floating-point representation of the value.
	// Returns an error if the value cannot be converted to a float.
	Float() (float64, error)

	// Bool returns the boolean representation of the value.
	// Truthy: "1", "true", "yes", "on" (case-insensitive)
	// Falsy: "0", "false", "no", "off" (case-insensitive)
	Bool() (bool, error)

	// List returns the list representation of the value.
	// Returns an error if the value cannot be parsed as a list.
	List() ([]Value, error)

	// Dict returns the dict representation of the value.
	// Returns an error if the value cannot be converted to a dict
	// (e.g., odd number of elements).
	Dict() (map[string]Value, error)

	// Type returns the native type: "string", "int", "double", "list",
	// "dict", "expr" or "script" (cached parse forms), or a host-defined
	// type name.
	Type() string

	// IsNil returns true if this is a nil/empty value.
	IsNil() bool
}

// *Obj satisfies Value.

func (o *Obj) Int() (int64, error)     { return AsInt(o) }
func (o *Obj) Float() (float64, error) { return AsDouble(o) }
func (o *Obj) Bool() (bool, error)     { return AsBool(o) }

func (o *Obj) List() ([]Value, error) {
	items, err := AsList(o)
	if err != nil {
		return nil, err
	}
	values := make([]Value, len(items))
	for i, item := range items {
		values[i] = item
	}
	return values, nil
}

func (o *Obj) Dict() (map[string]Value, error) {
	d, err := AsDict(o)
	if err != nil {
		return nil, err
	}
	m := make(map[string]Value, len(d.Items))
	for k, v := range d.Items {
		m[k] = v
	}
	return m, nil
}

// parseInt parses a script integer literal: optional sign, then a decimal
// run or a 0x/0o/0b/0d radix prefix. Surrounding whitespace is accepted.
func parseInt(s string) (int64, error) {
	orig := s
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("expected integer but got \"%s\"", orig)
	}

	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}

	base := 10
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base, s = 16, s[2:]
		case 'o', 'O':
			base, s = 8, s[2:]
		case 'b', 'B':
			base, s = 2, s[2:]
		case 'd', 'D':
			base, s = 10, s[2:]
		}
	}

	n, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		// Distinguish range errors from parse errors for better messages.
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return 0, fmt.Errorf("integer value too large to represent")
		}
		return 0, fmt.Errorf("expected integer but got \"%s\"", orig)
	}
	if neg {
		if n > uint64(math.MaxInt64)+1 {
			return 0, fmt.Errorf("integer value too large to represent")
		}
		return -int64(n), nil
	}
	if n > uint64(math.MaxInt64) {
		return 0, fmt.Errorf("integer value too large to represent")
	}
	return int64(n), nil
}

// parseFloat parses a script float literal: standard decimal notation with
// optional exponent, plus Inf and NaN (case-insensitive, optional sign).
func parseFloat(s string) (float64, error) {
	orig := s
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("expected floating-point number but got \"%s\"", orig)
	}

	body := s
	sign := 1.0
	switch body[0] {
	case '+':
		body = body[1:]
	case '-':
		sign = -1.0
		body = body[1:]
	}
	switch strings.ToLower(body) {
	case "inf", "infinity":
		return sign * math.Inf(1), nil
	case "nan":
		return math.NaN(), nil
	}

	// Go's ParseFloat accepts hex floats and underscores; the language does
	// not, so reject anything outside plain decimal/exponent syntax.
	for _, ch := range body {
		if (ch < '0' || ch > '9') && ch != '.' && ch != 'e' && ch != 'E' && ch != '+' && ch != '-' {
			return 0, fmt.Errorf("expected floating-point number but got \"%s\"", orig)
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("expected floating-point number but got \"%s\"", orig)
	}
	return f, nil
}

// parseBool parses the boolean constants and falls back to "nonzero is true"
// for numeric strings.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	if n, err := parseInt(s); err == nil {
		return n != 0, nil
	}
	if f, err := parseFloat(s); err == nil {
		return f != 0, nil
	}
	return false, fmt.Errorf("expected boolean value but got \"%s\"", s)
}
