package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TargetWidth is the number of columns in a TMY3 data row.
const TargetWidth = 30

// TargetRecord is one TMY3 data row in TargetHeaders order.
type TargetRecord [TargetWidth]string

// extractor produces one TMY3 cell from a source row.
type extractor func(rec SourceRecord) (string, error)

// column binds a TMY3 header to the extractor that fills it.
type column struct {
	header  string
	extract extractor
}

// columns is the TMY3 layout in output order. Source columns 5 and 12 have
// no TMY3 counterpart and are dropped.
var columns = [TargetWidth]column{
	{"Date (MM/DD/YYYY)", formatDate},
	{"Time (HH:MM)", formatTime},
	{"ETR (W/m^2)", required(10)},
	{"ETRN (W/m^2)", required(11)},
	{"GHI (W/m^2)", required(13)},
	{"DNI (W/m^2)", required(14)},
	{"DHI (W/m^2)", required(15)},
	{"GH illum (lx)", required(16)},
	{"DN illum (lx)", required(17)},
	{"DH illum (lx)", required(18)},
	{"Zenith lum (cd/m^2)", required(19)},
	{"Dry-bulb (C)", required(6)},
	{"Dew-point (C)", required(7)},
	{"RHum (%)", required(8)},
	{"Pressure (mbar)", convertPressure},
	{"Wdir (degrees)", required(20)},
	{"Wspd (m/s)", required(21)},
	{"TotCld (tenths)", required(22)},
	{"OpqCld (tenths)", required(23)},
	{"Hvis (m)", required(24)},
	{"CeilHgt (m)", optional(25)},
	{"Present Wx Obs", optional(26)},
	{"Present Wx Codes", optional(27)},
	{"Pwat (mm)", optional(28)},
	{"AOD (unitless)", optional(29)},
	{"Snow Depth (cm)", optional(30)},
	{"Days Since Snow", optional(31)},
	{"Alb (unitless)", optional(32)},
	{"Lprecip depth (mm)", optional(33)},
	{"Lprecip quantity (hr)", optional(34)},
}

// TargetHeaders lists the TMY3 column headers written on line 2 of the output.
var TargetHeaders = func() [TargetWidth]string {
	var h [TargetWidth]string
	for i, c := range columns {
		h[i] = c.header
	}
	return h
}()

// MapRow converts one hourly source row into a TMY3 row. Columns 25-34 are
// optional and become empty cells when the row is shorter; every earlier
// column must be present.
func MapRow(rec SourceRecord) (TargetRecord, error) {
	var out TargetRecord
	if len(rec) < MinSourceFields {
		return out, fmt.Errorf("%w: got %d, need %d", ErrTooFewFields, len(rec), MinSourceFields)
	}
	for i, c := range columns {
		v, err := c.extract(rec)
		if err != nil {
			return TargetRecord{}, fmt.Errorf("%s: %w", c.header, err)
		}
		out[i] = v
	}
	return out, nil
}

// Row returns the record as a slice suitable for a CSV writer.
func (r TargetRecord) Row() []string {
	return r[:]
}

// RowSkip records a source line that was not converted.
type RowSkip struct {
	Line    int    `json:"line"`
	Content string `json:"content,omitempty"`
	Err     error  `json:"-"`
	Reason  string `json:"reason"`
}

// NewRowSkip builds a RowSkip for the 1-based source line n.
func NewRowSkip(n int, content string, err error) RowSkip {
	return RowSkip{Line: n, Content: content, Err: err, Reason: err.Error()}
}

func required(i int) extractor {
	return func(rec SourceRecord) (string, error) {
		if i >= len(rec) {
			return "", fmt.Errorf("%w: column %d", ErrMissingField, i)
		}
		return rec[i], nil
	}
}

func optional(i int) extractor {
	return func(rec SourceRecord) (string, error) {
		return rec.Field(i), nil
	}
}

// formatDate renders M/D/YYYY from the month, day and year columns verbatim.
func formatDate(rec SourceRecord) (string, error) {
	return rec[1] + "/" + rec[2] + "/" + rec[0], nil
}

// formatTime renders the TMY3 time cell. Hour "0" is the final hour of the
// day and becomes 24; only that branch carries seconds.
func formatTime(rec SourceRecord) (string, error) {
	hour, minute := rec[3], rec[4]
	if hour == "0" {
		if minute == "0" {
			return "24:00:00", nil
		}
		return "24:" + minute, nil
	}
	if minute == "0" {
		minute = "00"
	}
	return hour + ":" + minute, nil
}

// convertPressure turns station pressure in Pa into whole millibars.
// Values that are not plain decimal numbers count as zero, and non-positive
// pressures produce an empty cell.
func convertPressure(rec SourceRecord) (string, error) {
	raw := rec[9]
	var pa float64
	if looksNumeric(raw) {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return "", fmt.Errorf("%w: pressure %q", ErrMalformedNumber, raw)
		}
		pa = v
	}
	if pa <= 0 {
		return "", nil
	}
	return strconv.FormatFloat(math.Trunc(pa/100), 'f', 0, 64), nil
}

// looksNumeric reports whether s is digits once a leading minus sign and all
// decimal points are removed.
func looksNumeric(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return isDigits(strings.ReplaceAll(s, ".", ""))
}
