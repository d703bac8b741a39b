// Package stats implements per-column statistics over delimited records:
// the type lattice, sampling-based inference, the column accumulator and the
// mergeable accumulator set a pipeline worker fills for one chunk.
package stats

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnType is a position in the widening lattice Null < Int < Float < String.
// A column's type only ever moves up.
type ColumnType uint8

const (
	Null ColumnType = iota
	Int
	Float
	String
)

var typeNames = [...]string{
	Null:   "null",
	Int:    "int",
	Float:  "float",
	String: "string",
}

func (t ColumnType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "ColumnType(" + strconv.Itoa(int(t)) + ")"
}

// Numeric reports whether values of this type carry min/max/mean/total.
func (t ColumnType) Numeric() bool { return t == Int || t == Float }

// MarshalText renders the lowercase type name (json, yaml).
func (t ColumnType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText accepts the names produced by MarshalText.
func (t *ColumnType) UnmarshalText(b []byte) error {
	v, err := ParseColumnType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseColumnType accepts null|int|float|string (case-insensitive) and the
// common aliases integer, double, text.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "null":
		return Null, nil
	case "int", "integer", "i64":
		return Int, nil
	case "float", "double", "f64":
		return Float, nil
	case "string", "str", "text":
		return String, nil
	}
	return Null, fmt.Errorf("unknown column type %q", s)
}

// Widen returns the least upper bound of a and b.
func Widen(a, b ColumnType) ColumnType { return max(a, b) }

// Observe returns the type after seeing v in a column currently typed t.
// Null markers leave t unchanged; String is absorbing.
func (t ColumnType) Observe(v string) ColumnType {
	if t == String || IsNull(v) {
		return t
	}
	return Widen(t, classify(v, t))
}

// classify returns the narrowest non-null type of v, skipping parses that
// cannot change the outcome given the current type.
func classify(v string, cur ColumnType) ColumnType {
	if cur <= Int {
		if _, err := strconv.ParseInt(v, 10, 64); err == nil {
			return Int
		}
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return Float
	}
	return String
}

// IsNull reports whether v is one of the recognized null markers. The match
// is exact and case-sensitive.
func IsNull(v string) bool {
	switch v {
	case "", "NA", "Na", "na", "NULL", "Null", "null":
		return true
	}
	return false
}
