package domain

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultDataStartLine is the 1-based line where hourly data conventionally
// begins in TMYx and EPW files. It is used when no year-led line is found.
const DefaultDataStartLine = 9

// MinSourceFields is the fewest fields a source row may carry and still be
// considered an hourly record.
const MinSourceFields = 10

// OutputSuffix is appended to the station identifier to name the output file.
const OutputSuffix = "TMYX.csv"

var (
	// ErrTooFewFields marks a source row with fewer than MinSourceFields fields.
	ErrTooFewFields = errors.New("too few fields")

	// ErrMissingField marks a source row missing a column the TMY3 layout requires.
	ErrMissingField = errors.New("missing required field")

	// ErrMalformedNumber marks a numeric column that looks numeric but does not parse.
	ErrMalformedNumber = errors.New("malformed number")
)

// stationIDRe matches a WMO-style 6-digit station number inside a filename,
// e.g. "USA_CO_Denver.Intl.AP.725650_TMYx.epw" -> "725650".
var stationIDRe = regexp.MustCompile(`[0-9]{6}`)

// SourceRecord is one hourly row of a TMYx or EPW file, split into fields.
// Fields are positional; see the package documentation for the column layout.
type SourceRecord []string

// Field returns the value at index i, or "" if the record is shorter.
func (r SourceRecord) Field(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// LocationMetadata holds the station fields taken from line 1 of a source file.
type LocationMetadata struct {
	StationID string `json:"station_id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	TZ        string `json:"tz"`
	Elevation string `json:"elevation"`
}

// Row returns the metadata in TMY3 header order:
// station id, name, state, latitude, longitude, tz, elevation.
func (m LocationMetadata) Row() []string {
	return []string{m.StationID, m.Name, m.State, m.Latitude, m.Longitude, m.TZ, m.Elevation}
}

// ParseLocationLine extracts station metadata from the first line of a source
// file. Positions beyond the end of the line yield empty strings.
func ParseLocationLine(line string) LocationMetadata {
	rec := SourceRecord(strings.Split(strings.TrimSpace(line), ","))
	return LocationMetadata{
		Name:      rec.Field(1),
		State:     rec.Field(2),
		StationID: rec.Field(5),
		Latitude:  rec.Field(6),
		Longitude: rec.Field(7),
		TZ:        rec.Field(8),
		Elevation: rec.Field(9),
	}
}

// IsDataStart reports whether line opens the hourly block: it is non-blank
// and its first comma-delimited field is a 4-digit year.
func IsDataStart(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	first, _, _ := strings.Cut(line, ",")
	return len(first) == 4 && isDigits(first)
}

// StationIDFromFilename returns the first 6-digit run in the base name of path.
func StationIDFromFilename(path string) (string, bool) {
	id := stationIDRe.FindString(filepath.Base(path))
	return id, id != ""
}

// OutputFilename names the TMY3 file written for a station.
func OutputFilename(stationID string) string {
	return stationID + OutputSuffix
}

// FileType labels a source path for user-facing messages. Detection of the
// data block never depends on it.
func FileType(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".epw") {
		return "EPW"
	}
	return "TMYx"
}

// isDigits reports whether s is a non-empty run of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
