package dsg

import (
	"math"
	"time"
)

// FlattenOptions controls table pruning.
type FlattenOptions struct {
	// DropEmptyColumns removes data columns that are missing in every row.
	DropEmptyColumns bool

	// DropEmptyRows removes rows where every data variable is missing,
	// i.e. the padding cells of the grid.
	DropEmptyRows bool
}

// DefaultFlattenOptions prunes both all-missing columns and padding rows.
var DefaultFlattenOptions = FlattenOptions{DropEmptyColumns: true, DropEmptyRows: true}

// Flatten turns a padded profile-grid dataset into a per-observation table.
// The dataset must classify as RepProfileGrid; a recognized timeseries grid
// yields ErrNotFlattenable and anything else ErrUnknownRepresentation.
func Flatten(ds Dataset, opts FlattenOptions) (*Table, error) {
	switch Classify(ds) {
	case RepProfileGrid:
	case RepTimeseriesGrid:
		return nil, ErrNotFlattenable
	default:
		return nil, ErrUnknownRepresentation
	}

	instanceDim, levelDim, ok := resolveGrid(ds)
	if !ok {
		return nil, &ShapeError{Reason: "cannot resolve instance and level dimensions"}
	}
	dims := ds.Dimensions()
	ps := dims[instanceDim]
	zs := dims[levelDim]

	pvar := ds.VariablesByAttribute("cf_role", AttrEquals("profile_id"))[0]
	instance := repeatInts(instanceIDs(pvar, ps), zs)

	zvar := ds.ZAxes()[0]
	vertical, err := readRepaired(zvar, 5)
	if err != nil {
		return nil, &ShapeError{Var: zvar.Name(), Reason: "reading vertical axis", Err: err}
	}

	tvar := ds.TAxes()[0]
	times, err := tvar.ReadTime()
	if err != nil {
		return nil, &ShapeError{Var: tvar.Name(), Reason: "decoding time axis", Err: err}
	}
	times = repeatTimes(times, zs)

	xvar := ds.XAxes()[0]
	lon, err := readRepaired(xvar, 5)
	if err != nil {
		return nil, &ShapeError{Var: xvar.Name(), Reason: "reading longitude axis", Err: err}
	}
	lon = repeatColumn(lon, zs)

	yvar := ds.YAxes()[0]
	lat, err := readRepaired(yvar, 5)
	if err != nil {
		return nil, &ShapeError{Var: yvar.Name(), Reason: "reading latitude axis", Err: err}
	}
	lat = repeatColumn(lat, zs)

	distance := alongTrack(lat, lon)

	t := &Table{
		Instance:  instance,
		Time:      times,
		Longitude: lon,
		Latitude:  lat,
		Vertical:  vertical,
		Distance:  distance,
	}

	// Padding rows are those where every data variable is missing at once.
	emptyRow := make([]bool, ps*zs)
	for i := range emptyRow {
		emptyRow[i] = true
	}
	for _, dv := range ds.DataVariables() {
		col, err := readRepaired(dv, 3)
		if err != nil {
			return nil, &ShapeError{Var: dv.Name(), Reason: "reading data variable", Err: err}
		}
		for i, m := range col.Missing {
			emptyRow[i] = emptyRow[i] && m
		}
		t.Data = append(t.Data, DataColumn{Name: dv.Name(), Column: col})
	}

	if opts.DropEmptyColumns {
		var kept []DataColumn
		for _, d := range t.Data {
			if !allMissing(d.Missing) {
				kept = append(kept, d)
			}
		}
		t.Data = kept
	}
	if opts.DropEmptyRows {
		keep := make([]bool, len(emptyRow))
		for i, e := range emptyRow {
			keep[i] = !e
		}
		t.filterRows(keep)
	}
	return t, nil
}

// instanceIDs reads the profile-identifier variable as integers. If the ids
// cannot be coerced, e.g. for textual identifiers, a synthetic 0-based
// sequence is substituted.
func instanceIDs(pvar Variable, ps int) []int {
	synthetic := func() []int {
		ids := make([]int, ps)
		for i := range ids {
			ids[i] = i
		}
		return ids
	}

	if pvar.Type().Textual() {
		return synthetic()
	}
	vals, fill, err := pvar.Read()
	if err != nil || len(vals) != ps {
		return synthetic()
	}
	ids := make([]int, ps)
	for i, v := range vals {
		if !isValid(v, fill) {
			return synthetic()
		}
		ids[i] = int(v)
	}
	return ids
}

// readRepaired reads a variable, masks invalid cells and rounds the
// surviving values to the given number of decimals.
func readRepaired(v Variable, decimals int) (Column, error) {
	vals, fill, err := v.Read()
	if err != nil {
		return Column{}, err
	}
	minv, maxv := validRange(v)
	col := Column{Values: make([]float64, len(vals)), Missing: make([]bool, len(vals))}
	for i, val := range vals {
		if !isValid(val, fill) || val < minv || val > maxv {
			col.Missing[i] = true
			continue
		}
		col.Values[i] = round(val, decimals)
	}
	return col, nil
}

// validRange resolves the valid value bounds of a variable. valid_range
// takes precedence over valid_min/valid_max; without any of them the
// natural range of the element type applies.
func validRange(v Variable) (minv, maxv float64) {
	minv, maxv = typeRange(v.Type())
	attrs := v.Attributes()
	if val, ok := attrNumber(attrs["valid_min"]); ok {
		minv = val
	}
	if val, ok := attrNumber(attrs["valid_max"]); ok {
		maxv = val
	}
	if vr, ok := attrs["valid_range"]; ok {
		if pair, ok := attrNumbers(vr); ok && len(pair) == 2 {
			minv, maxv = pair[0], pair[1]
		}
	}
	return minv, maxv
}

func typeRange(t Type) (float64, float64) {
	switch t {
	case TypeByte:
		return math.MinInt8, math.MaxInt8
	case TypeUByte:
		return 0, math.MaxUint8
	case TypeShort:
		return math.MinInt16, math.MaxInt16
	case TypeUShort:
		return 0, math.MaxUint16
	case TypeInt:
		return math.MinInt32, math.MaxInt32
	case TypeUInt:
		return 0, math.MaxUint32
	case TypeInt64:
		return math.MinInt64, math.MaxInt64
	case TypeUInt64:
		return 0, math.MaxUint64
	default:
		return -math.MaxFloat64, math.MaxFloat64
	}
}

func attrNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func attrNumbers(v any) ([]float64, bool) {
	switch vv := v.(type) {
	case []float64:
		return vv, true
	case []float32:
		out := make([]float64, len(vv))
		for i, n := range vv {
			out[i] = float64(n)
		}
		return out, true
	case []int32:
		out := make([]float64, len(vv))
		for i, n := range vv {
			out[i] = float64(n)
		}
		return out, true
	case []any:
		out := make([]float64, 0, len(vv))
		for _, n := range vv {
			f, ok := attrNumber(n)
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	}
	return nil, false
}

func isValid(v float64, fill *float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	if fill != nil && v == *fill {
		return false
	}
	return true
}

func round(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(v*scale) / scale
}

func allMissing(mask []bool) bool {
	for _, m := range mask {
		if !m {
			return false
		}
	}
	return true
}

func repeatInts(vals []int, n int) []int {
	out := make([]int, 0, len(vals)*n)
	for _, v := range vals {
		for i := 0; i < n; i++ {
			out = append(out, v)
		}
	}
	return out
}

func repeatTimes(vals []time.Time, n int) []time.Time {
	out := make([]time.Time, 0, len(vals)*n)
	for _, v := range vals {
		for i := 0; i < n; i++ {
			out = append(out, v)
		}
	}
	return out
}

func repeatColumn(c Column, n int) Column {
	out := Column{
		Values:  make([]float64, 0, len(c.Values)*n),
		Missing: make([]bool, 0, len(c.Values)*n),
	}
	for i := range c.Values {
		for j := 0; j < n; j++ {
			out.Values = append(out.Values, c.Values[i])
			out.Missing = append(out.Missing, c.Missing[i])
		}
	}
	return out
}

const earthRadius = 6371008.8 // mean Earth radius in meters

// alongTrack accumulates the great-circle distance over the broadcast
// position sequence, starting at 0. Steps with a missing endpoint
// contribute nothing and the cell is marked missing.
func alongTrack(lat, lon Column) Column {
	n := lat.Len()
	col := Column{Values: make([]float64, n), Missing: make([]bool, n)}
	if n == 0 {
		return col
	}
	col.Missing[0] = lat.Missing[0] || lon.Missing[0]
	sum := 0.0
	for i := 1; i < n; i++ {
		if lat.Missing[i-1] || lon.Missing[i-1] || lat.Missing[i] || lon.Missing[i] {
			col.Missing[i] = true
			col.Values[i] = round(sum, 2)
			continue
		}
		sum += haversine(lat.Values[i-1], lon.Values[i-1], lat.Values[i], lon.Values[i])
		col.Values[i] = round(sum, 2)
	}
	return col
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	phi1 := lat1 * rad
	phi2 := lat2 * rad
	dphi := (lat2 - lat1) * rad
	dlam := (lon2 - lon1) * rad
	a := math.Sin(dphi/2)*math.Sin(dphi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dlam/2)*math.Sin(dlam/2)
	return 2 * earthRadius * math.Asin(math.Min(1, math.Sqrt(a)))
}
