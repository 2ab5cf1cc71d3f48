// Package dsg implements the CF discrete sampling geometries that store
// several profiles or timeseries in one padded instance-by-level grid, the
// so called "incomplete multidimensional" array representation.
// See https://cfconventions.org/cf-conventions/cf-conventions.html#_incomplete_multidimensional_array_representation_of_profiles.
package dsg

import (
	"errors"
	"fmt"
	"time"
)

// Type is the declared element type of a variable.
type Type int

// Variable element types, following the netCDF external types.
const (
	TypeUnknown Type = iota
	TypeByte
	TypeUByte
	TypeShort
	TypeUShort
	TypeInt
	TypeUInt
	TypeInt64
	TypeUInt64
	TypeFloat
	TypeDouble
	TypeChar
	TypeString
)

func (t Type) String() string {
	return [...]string{"unknown", "byte", "ubyte", "short", "ushort", "int", "uint",
		"int64", "uint64", "float", "double", "char", "string"}[t]
}

// Textual reports whether the type holds characters instead of numbers.
func (t Type) Textual() bool {
	return t == TypeChar || t == TypeString
}

// Variable is a named array within a Dataset.
type Variable interface {
	Name() string

	// Dimensions returns the ordered dimension names the variable spans.
	Dimensions() []string

	Type() Type

	// Len is the total element count, the product of the dimension
	// sizes. Character arrays count whole strings, so their trailing
	// string-length dimension is excluded.
	Len() int

	// Attributes returns the variable's attributes.
	Attributes() map[string]any

	// Read returns all elements flattened in row-major order, converted to
	// float64, together with the declared fill value or nil if none is
	// declared. Textual variables return an error.
	Read() (values []float64, fill *float64, err error)

	// ReadTime decodes the variable through its time units and calendar
	// into timestamps. Only meaningful for time axes.
	ReadTime() ([]time.Time, error)
}

// Dataset is a read-only view of one array dataset. Implementations decide
// whether concurrent reads are safe; the functions in this package never
// open, close or mutate the dataset.
type Dataset interface {
	// Dimensions maps dimension names to their sizes.
	Dimensions() map[string]int

	// VariablesByAttribute returns the variables carrying the named
	// attribute for which match returns true. Match is only called for
	// variables that have the attribute.
	VariablesByAttribute(attr string, match func(value any) bool) []Variable

	// FeatureType returns the global featureType attribute, or "".
	FeatureType() string

	// TAxes, XAxes, YAxes and ZAxes return the variables acting as the
	// time, longitude, latitude and vertical axes.
	TAxes() []Variable
	XAxes() []Variable
	YAxes() []Variable
	ZAxes() []Variable

	// DataVariables returns all non-coordinate, non-identifier variables,
	// in the dataset's declaration order.
	DataVariables() []Variable
}

// AttrEquals returns a match function for VariablesByAttribute that tests
// for an exact string value.
func AttrEquals(want string) func(any) bool {
	return func(v any) bool {
		s, ok := v.(string)
		return ok && s == want
	}
}

// AttrPresent matches any variable that carries the attribute at all.
func AttrPresent(any) bool { return true }

// Errors reported by Flatten.
var (
	// ErrUnknownRepresentation is returned when a dataset matches no known
	// grid representation.
	ErrUnknownRepresentation = errors.New("dsg: dataset matches no known grid representation")

	// ErrNotFlattenable is returned for representations that are
	// recognized but for which no table extraction exists yet.
	ErrNotFlattenable = errors.New("dsg: representation recognized but not flattenable")
)

// ShapeError reports a structural problem with a dataset that was expected
// to be readable, e.g. a missing or unreadable required axis.
type ShapeError struct {
	Var    string // offending variable, if any
	Reason string
	Err    error
}

func (e *ShapeError) Error() string {
	if e.Var != "" {
		return fmt.Sprintf("dsg: variable %q: %s", e.Var, e.Reason)
	}
	return "dsg: " + e.Reason
}

func (e *ShapeError) Unwrap() error { return e.Err }
