package urn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBareStandardName(t *testing.T) {
	got, err := Encode(Sensor{
		Authority:    "axiom",
		Label:        "station1",
		StandardName: "air_temperature",
	})
	require.NoError(t, err)
	assert.Equal(t, "urn:ioos:sensor:axiom:station1:air_temperature", got)
}

func TestEncodeFullRecord(t *testing.T) {
	got, err := Encode(Sensor{
		Authority:     "axiom",
		Label:         "station1",
		StandardName:  "sea_water_temperature",
		Discriminant:  "top",
		CellMethods:   []CellMethod{{"time", "variance"}, {"area", "point"}, {"time", "mean"}},
		Intervals:     []string{"pt1h"},
		VerticalDatum: "navd88",
		Bounds:        "sea_water_temperature_bounds",
	})
	require.NoError(t, err)
	assert.Equal(t,
		"urn:ioos:sensor:axiom:station1:sea_water_temperature-top"+
			"#cell_methods=area:point,time:mean,time:variance"+
			";bounds=sea_water_temperature_bounds"+
			";vertical_datum=NAVD88"+
			";interval=PT1H",
		got, "domains sort alphabetically, datum and intervals upper-case")
}

func TestEncodeCleansMethods(t *testing.T) {
	got, err := Encode(Sensor{
		Authority:    "axiom",
		Label:        "station1",
		StandardName: "air_temperature",
		CellMethods:  []CellMethod{{"time", "mean over years"}},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"urn:ioos:sensor:axiom:station1:air_temperature#cell_methods=time:mean_over_years",
		got)
}

func TestEncodeIgnoresForeignDomains(t *testing.T) {
	got, err := Encode(Sensor{
		Authority:    "axiom",
		Label:        "station1",
		StandardName: "air_temperature",
		CellMethods:  []CellMethod{{"comment", "sensor failed"}, {"time", "mean"}},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"urn:ioos:sensor:axiom:station1:air_temperature#cell_methods=time:mean",
		got)
}

func TestEncodeIntervalWithoutCellMethods(t *testing.T) {
	_, err := Encode(Sensor{
		Authority:    "axiom",
		Label:        "station1",
		StandardName: "air_temperature",
		Intervals:    []string{"PT1H"},
	})
	assert.ErrorIs(t, err, ErrGrammar)
}

func TestEncodeDeduplicatesIntervals(t *testing.T) {
	got, err := Encode(Sensor{
		Authority:    "axiom",
		Label:        "station1",
		StandardName: "air_temperature",
		CellMethods:  []CellMethod{{"time", "mean"}},
		Intervals:    []string{"PT1H", "pt1h", "PT24H"},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"urn:ioos:sensor:axiom:station1:air_temperature#cell_methods=time:mean;interval=PT1H,PT24H",
		got)
}

func TestEncodeFallbackName(t *testing.T) {
	e := Encoder{NameSource: func() string { return "abcdefgh" }}
	got, err := e.Encode(Sensor{Authority: "axiom", Label: "station1"})
	require.NoError(t, err)
	assert.Equal(t, "urn:ioos:sensor:axiom:station1:abcdefgh", got)
}

func TestEncodeNameFallsBackBeforeRandom(t *testing.T) {
	got, err := Encode(Sensor{Authority: "axiom", Label: "station1", Name: "temp_qc"})
	require.NoError(t, err)
	assert.Equal(t, "urn:ioos:sensor:axiom:station1:temp_qc", got)
}

func TestEncodeRejectsColonInAuthority(t *testing.T) {
	_, err := Encode(Sensor{Authority: "ax:iom", Label: "station1", StandardName: "x"})
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Encode(Sensor{Authority: "axiom", Label: "", StandardName: "x"})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestRoundTrip(t *testing.T) {
	in := Sensor{
		Authority:    "axiom",
		Label:        "station1",
		StandardName: "air_temperature",
		CellMethods:  []CellMethod{{"time", "mean"}},
		Intervals:    []string{"PT1H"},
	}
	s, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(s)
	require.NoError(t, err)
	assert.Equal(t, in.StandardName, out.StandardName)
	assert.Equal(t, in.CellMethods, out.CellMethods)
	assert.Equal(t, in.Intervals, out.Intervals)
	assert.Equal(t, in.Authority, out.Authority)
	assert.Equal(t, in.Label, out.Label)
}

func TestRoundTripMultiwordMethod(t *testing.T) {
	in := Sensor{
		Authority:    "axiom",
		Label:        "station1",
		StandardName: "air_temperature",
		CellMethods:  []CellMethod{{"time", "mean over years"}},
	}
	s, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(s)
	require.NoError(t, err)
	assert.Equal(t, in.CellMethods, out.CellMethods)
}

func TestDecodeDiscriminant(t *testing.T) {
	out, err := Decode("urn:ioos:sensor:axiom:station1:sea_water_temperature-top")
	require.NoError(t, err)
	assert.Equal(t, "sea_water_temperature", out.StandardName)
	assert.Equal(t, "top", out.Discriminant)
}

func TestDecodeFusedInterval(t *testing.T) {
	out, err := Decode("urn:ioos:sensor:axiom:station1:air_temperature#cell_methods=time:mean_(interval:_PT1H)")
	require.NoError(t, err)
	assert.Equal(t, []CellMethod{{"time", "mean"}}, out.CellMethods)
	assert.Equal(t, []string{"PT1H"}, out.Intervals)
}

func TestDecodeVerticalDatum(t *testing.T) {
	out, err := Decode("urn:ioos:sensor:axiom:station1:water_surface_height#vertical_datum=navd88")
	require.NoError(t, err)
	assert.Equal(t, "NAVD88", out.VerticalDatum)
}

func TestDecodeTolerant(t *testing.T) {
	// Unknown clauses and clauses without a value are skipped, not fatal.
	out, err := Decode("urn:ioos:sensor:axiom:station1:air_temperature#flavor=strange;cell_methods")
	require.NoError(t, err)
	assert.Equal(t, "air_temperature", out.StandardName)
	assert.Empty(t, out.CellMethods)
}

func TestDecodeNotASensor(t *testing.T) {
	_, err := Decode("urn:ioos:station:wmo:41001")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode("air_temperature")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFromAttributes(t *testing.T) {
	s := FromAttributes("axiom", "station1", "temp", map[string]any{
		"standard_name":  "sea_water_temperature",
		"cell_methods":   "time: mean (interval: PT1H)",
		"vertical_datum": "navd88",
	})
	assert.Equal(t, "sea_water_temperature", s.StandardName)
	assert.Equal(t, "temp", s.Name)
	assert.Equal(t, []CellMethod{{"time", "mean"}}, s.CellMethods)
	assert.Equal(t, []string{"PT1H"}, s.Intervals)
	assert.Equal(t, "navd88", s.VerticalDatum)

	got, err := Encode(s)
	require.NoError(t, err)
	assert.Equal(t,
		"urn:ioos:sensor:axiom:station1:sea_water_temperature"+
			"#cell_methods=time:mean;vertical_datum=NAVD88;interval=PT1H",
		got)
}

func TestCellMethodsAttribute(t *testing.T) {
	s := Sensor{
		CellMethods: []CellMethod{{"time", "mean"}, {"time", "variance"}},
		Intervals:   []string{"pt1h", "pt24h"},
	}
	assert.Equal(t, "time: mean (interval: PT1H) time: variance (interval: PT24H)",
		s.CellMethodsAttribute(), "matching counts fuse pairwise")

	s.Intervals = []string{"pt1h"}
	assert.Equal(t, "time: mean time: variance (interval: PT1H)",
		s.CellMethodsAttribute(), "mismatched counts append intervals unconsolidated")

	s.CellMethods = nil
	assert.Equal(t, "", s.CellMethodsAttribute())
}
