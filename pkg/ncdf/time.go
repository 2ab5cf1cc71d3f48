package ncdf

import (
	"fmt"
	"strings"
	"time"
)

// timeDecoder converts numeric time-axis values into timestamps from a CF
// units string such as "seconds since 1990-01-01 00:00:00".
type timeDecoder struct {
	epoch time.Time
	step  time.Duration
}

var timeUnits = map[string]time.Duration{
	"s": time.Second, "sec": time.Second, "secs": time.Second,
	"second": time.Second, "seconds": time.Second,
	"min": time.Minute, "mins": time.Minute,
	"minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour,
	"hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
}

// Epoch layouts seen in the wild, all interpreted as UTC unless the string
// carries an offset.
var epochLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999 -0700",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func newTimeDecoder(units, calendar string) (*timeDecoder, error) {
	switch strings.ToLower(strings.TrimSpace(calendar)) {
	case "", "standard", "gregorian", "proleptic_gregorian":
	default:
		return nil, fmt.Errorf("unsupported calendar %q", calendar)
	}

	unit, epoch, found := strings.Cut(units, " since ")
	if !found {
		return nil, fmt.Errorf("time units %q lack a \"since\" epoch", units)
	}
	step, ok := timeUnits[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return nil, fmt.Errorf("unsupported time unit %q", unit)
	}

	epoch = strings.TrimSpace(epoch)
	for _, layout := range epochLayouts {
		if t, err := time.ParseInLocation(layout, epoch, time.UTC); err == nil {
			return &timeDecoder{epoch: t, step: step}, nil
		}
	}
	return nil, fmt.Errorf("cannot parse epoch %q", epoch)
}

func (d *timeDecoder) decode(val float64) time.Time {
	return d.epoch.Add(time.Duration(val * float64(d.step))).UTC()
}
