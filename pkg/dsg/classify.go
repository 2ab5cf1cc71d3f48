package dsg

import "strings"

// Representation is the storage layout a dataset uses for its instances.
type Representation int

const (
	// RepUnknown means no supported representation matched.
	RepUnknown Representation = iota

	// RepProfileGrid is the incomplete multidimensional profile layout:
	// a profile-by-level grid with unused cells marked invalid.
	RepProfileGrid

	// RepTimeseriesGrid is the incomplete multidimensional timeseries
	// layout: a station-by-observation grid.
	RepTimeseriesGrid
)

func (r Representation) String() string {
	return [...]string{"unknown", "profile grid", "timeseries grid"}[r]
}

// Classify reports which padded-grid representation the dataset uses.
// It is a pure predicate: any structural shortfall, malformed attribute or
// panic from the dataset collapses into RepUnknown, never an error.
func Classify(ds Dataset) (rep Representation) {
	defer func() {
		if recover() != nil {
			rep = RepUnknown
		}
	}()

	if isProfileGrid(ds) {
		return RepProfileGrid
	}
	if isTimeseriesGrid(ds) {
		return RepTimeseriesGrid
	}
	return RepUnknown
}

// resolveGrid determines the instance (profile) and level dimensions of a
// profile-grid dataset. It fails closed on any ambiguity.
func resolveGrid(ds Dataset) (instanceDim, levelDim string, ok bool) {
	pvars := ds.VariablesByAttribute("cf_role", AttrEquals("profile_id"))
	if len(pvars) != 1 {
		return "", "", false
	}
	pdims := pvars[0].Dimensions()
	if len(pdims) == 0 {
		return "", "", false
	}
	instanceDim = pdims[0]

	zaxes := ds.ZAxes()
	if len(zaxes) != 1 {
		return "", "", false
	}
	zdims := zaxes[0].Dimensions()
	if len(zdims) != 2 {
		return "", "", false
	}
	for _, d := range zdims {
		if d != instanceDim {
			if levelDim != "" {
				return "", "", false // neither dimension is the instance dim
			}
			levelDim = d
		}
	}
	if levelDim == "" {
		return "", "", false
	}
	if _, found := ds.Dimensions()[instanceDim]; !found {
		return "", "", false
	}
	if _, found := ds.Dimensions()[levelDim]; !found {
		return "", "", false
	}
	return instanceDim, levelDim, true
}

func isProfileGrid(ds Dataset) bool {
	pvars := ds.VariablesByAttribute("cf_role", AttrEquals("profile_id"))
	if len(pvars) != 1 {
		return false
	}
	if !strings.EqualFold(ds.FeatureType(), "profile") {
		return false
	}
	if len(ds.TAxes()) != 1 || len(ds.XAxes()) != 1 || len(ds.YAxes()) != 1 || len(ds.ZAxes()) != 1 {
		return false
	}

	// A character-array encoding of string ids carries one extra dimension.
	pvar := pvars[0]
	minDims, maxDims := 1, 2
	if pvar.Type().Textual() {
		minDims++
		maxDims++
	}
	if n := len(pvar.Dimensions()); n < minDims || n > maxDims {
		return false
	}

	// One scalar time and location per profile.
	if ds.TAxes()[0].Len() != pvar.Len() {
		return false
	}
	if ds.XAxes()[0].Len() != pvar.Len() {
		return false
	}
	if ds.YAxes()[0].Len() != pvar.Len() {
		return false
	}

	instanceDim, levelDim, ok := resolveGrid(ds)
	if !ok {
		return false
	}
	dims := ds.Dimensions()
	want := dims[instanceDim] * dims[levelDim]

	// Every data variable, and the vertical axis itself, spans the full
	// instance-by-level grid.
	check := append(ds.DataVariables(), ds.ZAxes()[0])
	for _, dv := range check {
		if len(dv.Dimensions()) != 2 {
			return false
		}
		if !containsDim(dv, instanceDim) || !containsDim(dv, levelDim) {
			return false
		}
		if dv.Len() != want {
			return false
		}
	}
	return true
}

func isTimeseriesGrid(ds Dataset) bool {
	rvars := ds.VariablesByAttribute("cf_role", AttrEquals("timeseries_id"))
	if len(rvars) != 1 {
		return false
	}
	if !strings.EqualFold(ds.FeatureType(), "timeseries") {
		return false
	}
	if len(ds.TAxes()) < 1 || len(ds.XAxes()) < 1 || len(ds.YAxes()) < 1 {
		return false
	}

	// A sample_dimension attribute indicates a contiguous ragged layout,
	// an instance_dimension attribute an indexed ragged layout.
	if len(ds.VariablesByAttribute("sample_dimension", AttrPresent)) > 0 {
		return false
	}
	if len(ds.VariablesByAttribute("instance_dimension", AttrPresent)) > 0 {
		return false
	}

	// The padded layout is only used for multi-station files, so the time
	// axis is always station by observation.
	if len(ds.TAxes()[0].Dimensions()) != 2 {
		return false
	}

	// 0 = scalar, 1 = array of strings/ints, 2 = character arrays.
	if n := len(rvars[0].Dimensions()); n > 2 {
		return false
	}
	return true
}

func containsDim(v Variable, dim string) bool {
	for _, d := range v.Dimensions() {
		if d == dim {
			return true
		}
	}
	return false
}

