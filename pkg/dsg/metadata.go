package dsg

import (
	"math"
	"sort"
	"time"

	"github.com/ctessum/geom"
)

// ProfileSummary describes one instance of a flattened dataset. The anchor
// values come from the instance's earliest row.
type ProfileSummary struct {
	ID        int
	MinZ      float64
	MaxZ      float64
	Time      time.Time
	Longitude float64
	Latitude  float64
	Location  geom.Point
}

// Metadata summarizes a flattened dataset.
type Metadata struct {
	MinTime  time.Time
	MaxTime  time.Time
	Profiles map[int]ProfileSummary

	// FirstLocation is the position of the table's first row, nil when
	// the table is empty.
	FirstLocation *geom.Point

	// Geometry is nil for an empty table, a geom.Point when the table
	// holds a single distinct position, and a geom.LineString otherwise.
	Geometry geom.Geom
}

// Summarize groups the table's rows by instance and derives per-instance
// extents, the overall time span and the spatial geometry.
func Summarize(t *Table) *Metadata {
	meta := &Metadata{Profiles: make(map[int]ProfileSummary)}
	if t.Len() == 0 {
		return meta
	}

	// Stable-sorted row indices per instance, earliest first.
	groups := make(map[int][]int)
	var order []int
	for i, id := range t.Instance {
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], i)
	}

	for _, id := range order {
		rows := groups[id]
		sort.SliceStable(rows, func(a, b int) bool {
			return t.Time[rows[a]].Before(t.Time[rows[b]])
		})
		first := rows[0]
		p := ProfileSummary{
			ID:        id,
			MinZ:      math.NaN(),
			MaxZ:      math.NaN(),
			Time:      t.Time[first],
			Longitude: t.Longitude.Values[first],
			Latitude:  t.Latitude.Values[first],
			Location:  geom.Point{X: t.Longitude.Values[first], Y: t.Latitude.Values[first]},
		}
		for _, r := range rows {
			if t.Vertical.Missing[r] {
				continue
			}
			z := t.Vertical.Values[r]
			if math.IsNaN(p.MinZ) || z < p.MinZ {
				p.MinZ = z
			}
			if math.IsNaN(p.MaxZ) || z > p.MaxZ {
				p.MaxZ = z
			}
		}
		meta.Profiles[id] = p
	}

	meta.MinTime = t.Time[0]
	meta.MaxTime = t.Time[0]
	for _, ts := range t.Time[1:] {
		if ts.Before(meta.MinTime) {
			meta.MinTime = ts
		}
		if ts.After(meta.MaxTime) {
			meta.MaxTime = ts
		}
	}

	meta.FirstLocation = &geom.Point{X: t.Longitude.Values[0], Y: t.Latitude.Values[0]}
	coords := justSeenCoords(t)
	switch len(coords) {
	case 0:
	case 1:
		meta.Geometry = coords[0]
	default:
		meta.Geometry = geom.LineString(coords)
	}
	return meta
}

// justSeenCoords returns the table's position sequence with immediately
// repeated positions collapsed. Non-adjacent repeats stay distinct, so a
// track that revisits a position keeps both visits. Rows with a missing
// coordinate are skipped.
func justSeenCoords(t *Table) []geom.Point {
	var coords []geom.Point
	for i := range t.Instance {
		if t.Longitude.Missing[i] || t.Latitude.Missing[i] {
			continue
		}
		p := geom.Point{X: t.Longitude.Values[i], Y: t.Latitude.Values[i]}
		if len(coords) > 0 && coords[len(coords)-1].Equals(p) {
			continue
		}
		coords = append(coords, p)
	}
	return coords
}
