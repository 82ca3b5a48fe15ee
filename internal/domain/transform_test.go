package domain

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPressurePa = "101325"

// hourlyRow builds a 35-column source row with recognisable values: column i
// holds "c<i>" except for the date, time and pressure columns.
func hourlyRow(year, month, day, hour, minute, pressure string) SourceRecord {
	rec := make(SourceRecord, 35)
	for i := range rec {
		rec[i] = "c" + strconv.Itoa(i)
	}
	rec[0], rec[1], rec[2], rec[3], rec[4] = year, month, day, hour, minute
	rec[9] = pressure
	return rec
}

func TestTargetHeaders(t *testing.T) {
	expected := [TargetWidth]string{
		"Date (MM/DD/YYYY)", "Time (HH:MM)", "ETR (W/m^2)", "ETRN (W/m^2)",
		"GHI (W/m^2)", "DNI (W/m^2)", "DHI (W/m^2)", "GH illum (lx)",
		"DN illum (lx)", "DH illum (lx)", "Zenith lum (cd/m^2)", "Dry-bulb (C)",
		"Dew-point (C)", "RHum (%)", "Pressure (mbar)", "Wdir (degrees)",
		"Wspd (m/s)", "TotCld (tenths)", "OpqCld (tenths)", "Hvis (m)",
		"CeilHgt (m)", "Present Wx Obs", "Present Wx Codes", "Pwat (mm)",
		"AOD (unitless)", "Snow Depth (cm)", "Days Since Snow", "Alb (unitless)",
		"Lprecip depth (mm)", "Lprecip quantity (hr)",
	}
	assert.Equal(t, expected, TargetHeaders)
}

func TestMapRow(t *testing.T) {
	t.Run("full row", func(t *testing.T) {
		out, err := MapRow(hourlyRow("2021", "1", "1", "13", "0", testPressurePa))
		require.NoError(t, err)

		expected := TargetRecord{
			"1/1/2021", "13:00",
			"c10", "c11", "c13", "c14", "c15", "c16", "c17", "c18", "c19",
			"c6", "c7", "c8", "1013",
			"c20", "c21", "c22", "c23", "c24",
			"c25", "c26", "c27", "c28", "c29", "c30", "c31", "c32", "c33", "c34",
		}
		assert.Equal(t, expected, out)
	})

	t.Run("date is not padded", func(t *testing.T) {
		out, err := MapRow(hourlyRow("1999", "12", "07", "5", "30", testPressurePa))
		require.NoError(t, err)
		assert.Equal(t, "12/07/1999", out[0])
	})

	t.Run("truncated to 25 fields", func(t *testing.T) {
		rec := hourlyRow("2021", "6", "15", "8", "0", testPressurePa)[:25]
		out, err := MapRow(rec)
		require.NoError(t, err)

		assert.Len(t, out.Row(), TargetWidth)
		assert.Equal(t, "c24", out[19])
		for i := 20; i < TargetWidth; i++ {
			assert.Empty(t, out[i], "column %d", i)
		}
	})

	t.Run("too few fields", func(t *testing.T) {
		_, err := MapRow(SourceRecord{"2021", "1", "1", "1", "0"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTooFewFields)
	})

	t.Run("required column missing", func(t *testing.T) {
		rec := hourlyRow("2021", "1", "1", "1", "0", testPressurePa)[:20]
		_, err := MapRow(rec)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingField)
		assert.Contains(t, err.Error(), "Wdir")
	})

	t.Run("ten fields is still too short for radiation columns", func(t *testing.T) {
		rec := hourlyRow("2021", "1", "1", "1", "0", testPressurePa)[:10]
		_, err := MapRow(rec)
		assert.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("malformed pressure skips the row", func(t *testing.T) {
		_, err := MapRow(hourlyRow("2021", "1", "1", "1", "0", "1.2.3"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedNumber))
	})
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name     string
		hour     string
		minute   string
		expected string
	}{
		{"midnight becomes hour 24 with seconds", "0", "0", "24:00:00"},
		{"hour 24 with minutes", "0", "30", "24:30"},
		{"whole hour", "13", "0", "13:00"},
		{"single digit hour", "1", "0", "1:00"},
		{"minutes kept verbatim", "7", "30", "7:30"},
		{"padded minute kept verbatim", "7", "00", "7:00"},
		{"padded zero hour is not relabelled", "00", "0", "00:00"},
		{"epw minute 60", "24", "60", "24:60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := hourlyRow("2021", "1", "1", tt.hour, tt.minute, testPressurePa)
			got, err := formatTime(rec)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestConvertPressure(t *testing.T) {
	tests := []struct {
		name     string
		pressure string
		expected string
	}{
		{"standard atmosphere", "101325", "1013"},
		{"decimal pascals truncate", "83950.9", "839"},
		{"below one millibar truncates to zero", "99", "0"},
		{"zero", "0", ""},
		{"negative", "-500", ""},
		{"empty", "", ""},
		{"non numeric", "abc", ""},
		{"missing sentinel", "999999", "9999"},
		{"exponent is not numeric", "1e5", ""},
		{"lone minus", "-", ""},
		{"lone point", ".", ""},
		{"beyond int64 millibars", "102400000000000000000000", "1024000000000000000000"},
		{"doubled minus is not numeric", "--5", ""},
		{"trailing minus is not numeric", "5-", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := hourlyRow("2021", "1", "1", "1", "0", tt.pressure)
			got, err := convertPressure(rec)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("multiple points", func(t *testing.T) {
		_, err := convertPressure(hourlyRow("2021", "1", "1", "1", "0", "10.13.25"))
		assert.ErrorIs(t, err, ErrMalformedNumber)
	})
}

func TestNewRowSkip(t *testing.T) {
	skip := NewRowSkip(12, "2021,1", ErrTooFewFields)
	assert.Equal(t, 12, skip.Line)
	assert.Equal(t, "2021,1", skip.Content)
	assert.ErrorIs(t, skip.Err, ErrTooFewFields)
	assert.Equal(t, "too few fields", skip.Reason)
}
