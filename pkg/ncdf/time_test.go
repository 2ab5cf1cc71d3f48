package ncdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeDecoder(t *testing.T) {
	tests := []struct {
		units string
		val   float64
		want  time.Time
	}{
		{"seconds since 1990-01-01 00:00:00", 0, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"seconds since 1990-01-01 00:00:00", 90, time.Date(1990, 1, 1, 0, 1, 30, 0, time.UTC)},
		{"hours since 1900-01-01 00:00:00", 24, time.Date(1900, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"days since 2008-01-01", 1.5, time.Date(2008, 1, 2, 12, 0, 0, 0, time.UTC)},
		{"minutes since 2016-03-01T00:00:00Z", 30, time.Date(2016, 3, 1, 0, 30, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		dec, err := newTimeDecoder(tc.units, "")
		require.NoError(t, err, tc.units)
		assert.Equal(t, tc.want, dec.decode(tc.val), "%s / %g", tc.units, tc.val)
	}
}

func TestTimeDecoderCalendars(t *testing.T) {
	for _, cal := range []string{"", "standard", "Gregorian", "proleptic_gregorian"} {
		_, err := newTimeDecoder("seconds since 1990-01-01", cal)
		assert.NoError(t, err, cal)
	}

	_, err := newTimeDecoder("seconds since 1990-01-01", "noleap")
	assert.Error(t, err, "non-gregorian calendars are not supported")
}

func TestTimeDecoderBadUnits(t *testing.T) {
	_, err := newTimeDecoder("seconds", "")
	assert.Error(t, err)

	_, err = newTimeDecoder("fortnights since 1990-01-01", "")
	assert.Error(t, err)

	_, err = newTimeDecoder("seconds since yesterday", "")
	assert.Error(t, err)
}
