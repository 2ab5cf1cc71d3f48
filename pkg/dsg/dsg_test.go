package dsg

import (
	"time"
)

// memVar is an in-memory Variable for tests.
type memVar struct {
	name  string
	dims  []string
	typ   Type
	attrs map[string]any
	vals  []float64
	fill  *float64
	times []time.Time
	n     int
}

func (v *memVar) Name() string { return v.name }

func (v *memVar) Dimensions() []string { return v.dims }

func (v *memVar) Type() Type { return v.typ }

func (v *memVar) Attributes() map[string]any {
	if v.attrs == nil {
		return map[string]any{}
	}
	return v.attrs
}

func (v *memVar) Len() int {
	if v.n > 0 {
		return v.n
	}
	if len(v.times) > 0 {
		return len(v.times)
	}
	return len(v.vals)
}

func (v *memVar) Read() ([]float64, *float64, error) {
	return append([]float64(nil), v.vals...), v.fill, nil
}

func (v *memVar) ReadTime() ([]time.Time, error) {
	return append([]time.Time(nil), v.times...), nil
}

// memDataset is an in-memory Dataset for tests.
type memDataset struct {
	dims        map[string]int
	featureType string
	vars        []*memVar
	t, x, y, z  []*memVar
	data        []*memVar
}

func (d *memDataset) Dimensions() map[string]int { return d.dims }

func (d *memDataset) FeatureType() string { return d.featureType }

func (d *memDataset) VariablesByAttribute(attr string, match func(any) bool) []Variable {
	var out []Variable
	for _, v := range d.vars {
		if val, ok := v.attrs[attr]; ok && match(val) {
			out = append(out, v)
		}
	}
	return out
}

func (d *memDataset) TAxes() []Variable { return asVariables(d.t) }
func (d *memDataset) XAxes() []Variable { return asVariables(d.x) }
func (d *memDataset) YAxes() []Variable { return asVariables(d.y) }
func (d *memDataset) ZAxes() []Variable { return asVariables(d.z) }

func (d *memDataset) DataVariables() []Variable { return asVariables(d.data) }

func asVariables(vars []*memVar) []Variable {
	out := make([]Variable, len(vars))
	for i, v := range vars {
		out[i] = v
	}
	return out
}

// newProfileDataset builds a well-formed padded profile grid with p
// profiles of z levels each. Profile ids count from 1, verticals and the
// "temperature" data variable are sequential, positions step one degree
// per profile and times one hour.
func newProfileDataset(p, z int) *memDataset {
	epoch := time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC)

	pvar := &memVar{
		name:  "profile",
		dims:  []string{"profile"},
		typ:   TypeInt,
		attrs: map[string]any{"cf_role": "profile_id"},
	}
	tvar := &memVar{name: "time", dims: []string{"profile"}, typ: TypeDouble}
	xvar := &memVar{name: "longitude", dims: []string{"profile"}, typ: TypeDouble}
	yvar := &memVar{name: "latitude", dims: []string{"profile"}, typ: TypeDouble}
	for i := 0; i < p; i++ {
		pvar.vals = append(pvar.vals, float64(i+1))
		tvar.times = append(tvar.times, epoch.Add(time.Duration(i)*time.Hour))
		tvar.vals = append(tvar.vals, float64(i)*3600)
		xvar.vals = append(xvar.vals, float64(i+1))
		yvar.vals = append(yvar.vals, float64(i+1))
	}

	zvar := &memVar{name: "depth", dims: []string{"profile", "z"}, typ: TypeDouble}
	temp := &memVar{name: "temperature", dims: []string{"profile", "z"}, typ: TypeDouble}
	for i := 0; i < p*z; i++ {
		zvar.vals = append(zvar.vals, float64(i))
		temp.vals = append(temp.vals, 10+float64(i))
	}

	return &memDataset{
		dims:        map[string]int{"profile": p, "z": z},
		featureType: "profile",
		vars:        []*memVar{pvar, tvar, xvar, yvar, zvar, temp},
		t:           []*memVar{tvar},
		x:           []*memVar{xvar},
		y:           []*memVar{yvar},
		z:           []*memVar{zvar},
		data:        []*memVar{temp},
	}
}

// newTimeseriesDataset builds a well-formed padded timeseries grid.
func newTimeseriesDataset(stations, obs int) *memDataset {
	rvar := &memVar{
		name:  "station",
		dims:  []string{"station"},
		typ:   TypeInt,
		attrs: map[string]any{"cf_role": "timeseries_id"},
	}
	tvar := &memVar{name: "time", dims: []string{"station", "obs"}, typ: TypeDouble, n: stations * obs}
	xvar := &memVar{name: "longitude", dims: []string{"station"}, typ: TypeDouble}
	yvar := &memVar{name: "latitude", dims: []string{"station"}, typ: TypeDouble}
	for i := 0; i < stations; i++ {
		rvar.vals = append(rvar.vals, float64(i))
		xvar.vals = append(xvar.vals, float64(i))
		yvar.vals = append(yvar.vals, float64(i))
	}

	return &memDataset{
		dims:        map[string]int{"station": stations, "obs": obs},
		featureType: "timeSeries",
		vars:        []*memVar{rvar, tvar, xvar, yvar},
		t:           []*memVar{tvar},
		x:           []*memVar{xvar},
		y:           []*memVar{yvar},
	}
}
