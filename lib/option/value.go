package option

import (
	"fmt"
	"regexp"
	"strconv"
)

// Kind identifies the type of an option value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindString
	KindSymbol
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	default:
		return "invalid"
	}
}

var symbolPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Value is a typed option value. The zero Value is invalid.
type Value struct {
	kind Kind
	b    bool
	i    int64
	s    string
}

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer constant value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// String returns a string literal value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Symbol returns a symbol value without checking its syntax.
// Use ParseSymbol for untrusted input.
func Symbol(s string) Value { return Value{kind: KindSymbol, s: s} }

// ParseSymbol returns a symbol value if s is a valid C identifier.
func ParseSymbol(s string) (Value, error) {
	if !symbolPattern.MatchString(s) {
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidSymbol, s)
	}
	return Symbol(s), nil
}

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// AsBool returns the boolean held by v and whether v is a boolean.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer held by v and whether v is an integer.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// Text returns the string or symbol held by v.
func (v Value) Text() string { return v.s }

// Enabled reports whether v switches its option on: true, a non-zero
// integer, or a non-empty string or symbol.
func (v Value) Enabled() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindString, KindSymbol:
		return v.s != ""
	default:
		return false
	}
}

// Equal reports whether v and o have the same kind and value.
func (v Value) Equal(o Value) bool {
	return v == o
}

// String renders v for humans: true/false, decimal integers, quoted strings
// and bare symbols.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindString:
		return strconv.Quote(v.s)
	case KindSymbol:
		return v.s
	default:
		return "<invalid>"
	}
}
