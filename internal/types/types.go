// Package types defines Cylium's static type lattice and runtime value union.
package types

import (
	"fmt"
	"strconv"
)

// Kind is one of the four static types in the Cylium type lattice.
type Kind int

const (
	Number Kind = iota
	Float
	String
	Boolean
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Float:
		return "float"
	case String:
		return "string"
	case Boolean:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is a runtime value tagged with its Kind. Exactly one of the fields
// is meaningful, selected by Kind.
type Value struct {
	Kind Kind
	Num  int64
	Flt  float64
	Str  string
	Bool bool
}

func NewNumber(n int64) Value   { return Value{Kind: Number, Num: n} }
func NewFloat(f float64) Value  { return Value{Kind: Float, Flt: f} }
func NewString(s string) Value  { return Value{Kind: String, Str: s} }
func NewBoolean(b bool) Value   { return Value{Kind: Boolean, Bool: b} }

// Text renders v in Cylium's canonical echo/cast-to-string format.
func (v Value) Text() string {
	switch v.Kind {
	case Number:
		return strconv.FormatInt(v.Num, 10)
	case Float:
		return strconv.FormatFloat(v.Flt, 'g', -1, 64)
	case String:
		return v.Str
	case Boolean:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("<invalid:%d>", v.Kind)
	}
}
