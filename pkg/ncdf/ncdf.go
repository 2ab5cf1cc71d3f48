// Package ncdf adapts NetCDF files to the dsg.Dataset capability using the
// pure-Go reader github.com/batchatco/go-native-netcdf.
package ncdf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/mholt/archiver/v3"

	"github.com/ioos-tools/godsg/pkg/dsg"
)

// ErrNotNumeric is returned when reading a char or string variable as
// numbers.
var ErrNotNumeric = errors.New("ncdf: variable is not numeric")

// File is an open NetCDF dataset. It implements dsg.Dataset. The caller
// owns the file and must Close it; concurrent reads are safe once Open has
// returned since all values are held in memory.
type File struct {
	g    api.Group
	tmp  string // unpacked copy of a compressed input, removed on Close
	vars []*Variable
	dims map[string]int
}

// Open reads a NetCDF file. Gzip-compressed files (.gz) are transparently
// unpacked to a temporary file first.
func Open(path string) (*File, error) {
	f := &File{dims: make(map[string]int)}
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		tmp, err := os.CreateTemp("", "ncdf-*.nc")
		if err != nil {
			return nil, err
		}
		tmp.Close()
		if err := archiver.DecompressFile(path, tmp.Name()); err != nil {
			os.Remove(tmp.Name())
			return nil, fmt.Errorf("ncdf: unpacking %s: %w", path, err)
		}
		f.tmp = tmp.Name()
		path = tmp.Name()
	}

	g, err := netcdf.Open(path)
	if err != nil {
		f.cleanup()
		return nil, fmt.Errorf("ncdf: opening %s: %w", path, err)
	}
	f.g = g

	for _, name := range g.ListVariables() {
		vg, err := g.GetVarGetter(name)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("ncdf: variable %s: %w", name, err)
		}
		values, err := vg.Values()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("ncdf: reading %s: %w", name, err)
		}
		v := &Variable{
			name:   name,
			dims:   vg.Dimensions(),
			typ:    typeFromCDL(vg.Type()),
			attrs:  attrMap(vg.Attributes()),
			values: values,
		}
		// Dimension sizes are not exposed directly by the reader, so
		// they are recovered from the array shapes.
		shape := valueShape(values)
		for i, d := range v.dims {
			if i < len(shape) {
				f.dims[d] = shape[i]
			}
		}
		f.vars = append(f.vars, v)
	}
	return f, nil
}

// Close releases the underlying reader and any temporary unpacked copy.
func (f *File) Close() error {
	if f.g != nil {
		f.g.Close()
		f.g = nil
	}
	f.cleanup()
	return nil
}

func (f *File) cleanup() {
	if f.tmp != "" {
		os.Remove(f.tmp)
		f.tmp = ""
	}
}

// Dimensions maps dimension names to sizes.
func (f *File) Dimensions() map[string]int { return f.dims }

// FeatureType returns the global featureType attribute.
func (f *File) FeatureType() string {
	if f.g == nil {
		return ""
	}
	if v, ok := f.g.Attributes().Get("featureType"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// VariablesByAttribute returns the variables carrying attr for which match
// returns true.
func (f *File) VariablesByAttribute(attr string, match func(value any) bool) []dsg.Variable {
	var out []dsg.Variable
	for _, v := range f.vars {
		if val, ok := v.attrs[attr]; ok && match(val) {
			out = append(out, v)
		}
	}
	return out
}

// TAxes returns the time axis variables.
func (f *File) TAxes() []dsg.Variable { return f.axes('T') }

// XAxes returns the longitude axis variables.
func (f *File) XAxes() []dsg.Variable { return f.axes('X') }

// YAxes returns the latitude axis variables.
func (f *File) YAxes() []dsg.Variable { return f.axes('Y') }

// ZAxes returns the vertical axis variables.
func (f *File) ZAxes() []dsg.Variable { return f.axes('Z') }

func (f *File) axes(which byte) []dsg.Variable {
	var out []dsg.Variable
	for _, v := range f.vars {
		if axisOf(v.attrs) == which {
			out = append(out, v)
		}
	}
	return out
}

// DataVariables returns the numeric non-coordinate, non-identifier
// variables in declaration order.
func (f *File) DataVariables() []dsg.Variable {
	var out []dsg.Variable
	for _, v := range f.vars {
		if v.typ.Textual() || len(v.dims) == 0 {
			continue
		}
		if _, ok := v.attrs["cf_role"]; ok {
			continue
		}
		if axisOf(v.attrs) != 0 {
			continue
		}
		out = append(out, v)
	}
	return out
}

// axisOf classifies a variable as one of the T/X/Y/Z axes from its
// attributes, or 0. The axis attribute wins over the standard name, which
// wins over unit heuristics.
func axisOf(attrs map[string]any) byte {
	if v, ok := attrs["axis"]; ok {
		if s, ok := v.(string); ok {
			switch strings.ToUpper(strings.TrimSpace(s)) {
			case "T":
				return 'T'
			case "X":
				return 'X'
			case "Y":
				return 'Y'
			case "Z":
				return 'Z'
			}
		}
	}
	if v, ok := attrs["standard_name"]; ok {
		if s, ok := v.(string); ok {
			switch s {
			case "time":
				return 'T'
			case "longitude":
				return 'X'
			case "latitude":
				return 'Y'
			case "depth", "height", "altitude", "air_pressure":
				return 'Z'
			}
		}
	}
	if v, ok := attrs["units"]; ok {
		if s, ok := v.(string); ok {
			switch {
			case strings.Contains(s, " since "):
				return 'T'
			case s == "degrees_east" || s == "degree_east":
				return 'X'
			case s == "degrees_north" || s == "degree_north":
				return 'Y'
			}
		}
	}
	if _, ok := attrs["positive"]; ok {
		return 'Z'
	}
	return 0
}

// Variable is one array of an open File. It implements dsg.Variable.
type Variable struct {
	name   string
	dims   []string
	typ    dsg.Type
	attrs  map[string]any
	values any
}

func (v *Variable) Name() string { return v.name }

func (v *Variable) Dimensions() []string { return v.dims }

func (v *Variable) Type() dsg.Type { return v.typ }

func (v *Variable) Len() int {
	n := 1
	for _, s := range valueShape(v.values) {
		n *= s
	}
	return n
}

func (v *Variable) Attributes() map[string]any { return v.attrs }

// Read returns the elements flattened row-major as float64 plus the
// declared fill value. The missing_value attribute takes precedence over
// _FillValue, as the original pyaxiom reader did.
func (v *Variable) Read() ([]float64, *float64, error) {
	if v.typ.Textual() {
		return nil, nil, ErrNotNumeric
	}
	vals, err := flattenNumeric(v.values)
	if err != nil {
		return nil, nil, fmt.Errorf("ncdf: variable %s: %w", v.name, err)
	}
	return vals, v.fillValue(), nil
}

// ReadTime decodes the variable's values through its units and calendar
// attributes. A scalar collapses to a one-element slice.
func (v *Variable) ReadTime() ([]time.Time, error) {
	units, _ := v.attrs["units"].(string)
	calendar, _ := v.attrs["calendar"].(string)
	dec, err := newTimeDecoder(units, calendar)
	if err != nil {
		return nil, fmt.Errorf("ncdf: variable %s: %w", v.name, err)
	}
	vals, err := flattenNumeric(v.values)
	if err != nil {
		return nil, fmt.Errorf("ncdf: variable %s: %w", v.name, err)
	}
	out := make([]time.Time, len(vals))
	for i, val := range vals {
		out[i] = dec.decode(val)
	}
	return out, nil
}

func (v *Variable) fillValue() *float64 {
	for _, attr := range []string{"missing_value", "_FillValue"} {
		if raw, ok := v.attrs[attr]; ok {
			if f, ok := toFloat(raw); ok {
				return &f
			}
		}
	}
	return nil
}

func attrMap(am api.AttributeMap) map[string]any {
	out := make(map[string]any)
	if am == nil {
		return out
	}
	for _, k := range am.Keys() {
		if v, ok := am.Get(k); ok {
			out[k] = v
		}
	}
	return out
}

func typeFromCDL(t string) dsg.Type {
	switch t {
	case "byte":
		return dsg.TypeByte
	case "ubyte":
		return dsg.TypeUByte
	case "short":
		return dsg.TypeShort
	case "ushort":
		return dsg.TypeUShort
	case "int":
		return dsg.TypeInt
	case "uint":
		return dsg.TypeUInt
	case "int64":
		return dsg.TypeInt64
	case "uint64":
		return dsg.TypeUInt64
	case "float":
		return dsg.TypeFloat
	case "double":
		return dsg.TypeDouble
	case "char":
		return dsg.TypeChar
	case "string":
		return dsg.TypeString
	}
	return dsg.TypeUnknown
}

// valueShape derives the array shape from the nested slices the reader
// returns. A scalar has an empty shape.
func valueShape(values any) []int {
	var shape []int
	rv := reflect.ValueOf(values)
	for rv.Kind() == reflect.Slice {
		shape = append(shape, rv.Len())
		if rv.Len() == 0 {
			break
		}
		rv = rv.Index(0)
	}
	return shape
}

// flattenNumeric flattens nested numeric slices row-major into float64.
func flattenNumeric(values any) ([]float64, error) {
	var out []float64
	var walk func(rv reflect.Value) error
	walk = func(rv reflect.Value) error {
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < rv.Len(); i++ {
				if err := walk(rv.Index(i)); err != nil {
					return err
				}
			}
			return nil
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
			out = append(out, float64(rv.Int()))
			return nil
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
			out = append(out, float64(rv.Uint()))
			return nil
		case reflect.Float32, reflect.Float64:
			out = append(out, rv.Float())
			return nil
		default:
			return fmt.Errorf("unsupported element kind %s", rv.Kind())
		}
	}
	if err := walk(reflect.ValueOf(values)); err != nil {
		return nil, err
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return float64(rv.Int()), true
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Slice:
		// Some writers store scalar attributes as one-element arrays.
		if rv.Len() == 1 {
			return toFloat(rv.Index(0).Interface())
		}
	}
	return 0, false
}
