package dsg

import "time"

// Column is a numeric table column with a per-cell missing mask.
type Column struct {
	Values  []float64
	Missing []bool
}

// Len returns the number of cells.
func (c Column) Len() int { return len(c.Values) }

// Valid returns the values of all non-missing cells, in order.
func (c Column) Valid() []float64 {
	vals := make([]float64, 0, len(c.Values))
	for i, v := range c.Values {
		if !c.Missing[i] {
			vals = append(vals, v)
		}
	}
	return vals
}

func (c Column) take(keep []bool) Column {
	out := Column{}
	for i := range c.Values {
		if keep[i] {
			out.Values = append(out.Values, c.Values[i])
			out.Missing = append(out.Missing, c.Missing[i])
		}
	}
	return out
}

// DataColumn is a Column for one of the dataset's data variables.
type DataColumn struct {
	Name string
	Column
}

// Table is the flattened per-observation view of a padded-grid dataset,
// one row per instance and valid level, in on-disk element order.
type Table struct {
	Instance  []int
	Time      []time.Time
	Longitude Column
	Latitude  Column
	Vertical  Column

	// Distance is the cumulative along-track great-circle distance in
	// meters over the broadcast position sequence.
	Distance Column

	// Data holds one column per surviving data variable, in the
	// dataset's variable order.
	Data []DataColumn
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Instance) }

// Columns returns the column names in output order.
func (t *Table) Columns() []string {
	names := []string{"instance", "time", "longitude", "latitude", "vertical", "distance"}
	for _, d := range t.Data {
		names = append(names, d.Name)
	}
	return names
}

// Data column lookup by variable name. The second return reports presence.
func (t *Table) Column(name string) (DataColumn, bool) {
	for _, d := range t.Data {
		if d.Name == name {
			return d, true
		}
	}
	return DataColumn{}, false
}

// filterRows keeps only the rows for which keep is true.
func (t *Table) filterRows(keep []bool) {
	var instance []int
	var times []time.Time
	for i := range t.Instance {
		if keep[i] {
			instance = append(instance, t.Instance[i])
			times = append(times, t.Time[i])
		}
	}
	t.Instance = instance
	t.Time = times
	t.Longitude = t.Longitude.take(keep)
	t.Latitude = t.Latitude.take(keep)
	t.Vertical = t.Vertical.take(keep)
	t.Distance = t.Distance.take(keep)
	for i := range t.Data {
		t.Data[i].Column = t.Data[i].take(keep)
	}
}
