// Command validate checks a converted TMY3 file against the TMYx/EPW file it
// was produced from: station header, column headers, row parity, row order and
// per-cell values. It re-derives every expected row with the domain package, so
// it catches output that was edited, truncated or produced by another tool.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -source testdata/USA_CO_Denver.725650_TMYx.epw \
//	  -tmy3 out/725650TMYX.csv
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/tmy3-convert/internal/adapter/weatherfile"
	"github.com/couchcryptid/tmy3-convert/internal/domain"
)

// maxReported caps the errors printed per phase.
const maxReported = 20

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// expectedRow is a source row the converter should have written.
type expectedRow struct {
	line int
	row  domain.TargetRecord
}

func main() {
	source := flag.String("source", "", "TMYx (.csv) or EPW (.epw) source file")
	tmy3 := flag.String("tmy3", "", "converted TMY3 file")
	flag.Parse()

	if *source == "" || *tmy3 == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(os.Stdout, *source, *tmy3))
}

func run(out io.Writer, sourcePath, tmy3Path string) int {
	fmt.Fprintln(out, "=== TMY3 Conversion Validation ===")
	fmt.Fprintln(out)

	meta, expected, skipped, err := loadSource(sourcePath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load source: %v\n", err)
		return 1
	}

	rows, err := loadTMY3(tmy3Path)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load TMY3: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateHeaders(rows, meta),
		validateParity(rows, expected),
		validateRows(rows, expected),
		validateSchema(rows),
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-32s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Rows: %d expected, %d skipped in source, %d in TMY3 file\n",
		len(expected), skipped, max(len(rows)-2, 0))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxReported {
				fmt.Fprintf(out, "  ... %d more\n", len(p.errors)-maxReported)
				break
			}
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// loadSource reads the source file the same way the converter does and
// returns the station metadata, the rows that should convert, and how many
// data rows should have been skipped.
func loadSource(path string) (domain.LocationMetadata, []expectedRow, int, error) {
	meta, err := weatherfile.ReadLocation(path)
	if err != nil {
		return meta, nil, 0, err
	}
	start, _, err := weatherfile.FindDataStart(path)
	if err != nil {
		return meta, nil, 0, err
	}
	lines, err := weatherfile.ReadLines(path)
	if err != nil {
		return meta, nil, 0, err
	}

	var expected []expectedRow
	skipped := 0
	for i := start - 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		rec, err := weatherfile.SplitRecord(lines[i])
		if err != nil {
			skipped++
			continue
		}
		row, err := domain.MapRow(rec)
		if err != nil {
			skipped++
			continue
		}
		expected = append(expected, expectedRow{line: i + 1, row: row})
	}
	return meta, expected, skipped, nil
}

func loadTMY3(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.New("missing header rows")
	}
	return rows, nil
}

// ── Validation phases ──

func validateHeaders(rows [][]string, meta domain.LocationMetadata) *phase {
	p := &phase{name: "Header rows"}

	want := meta.Row()
	if !equalRows(rows[0], want) {
		p.errorf("station row = %q, want %q", rows[0], want)
	}
	if !equalRows(rows[1], domain.TargetHeaders[:]) {
		p.errorf("column header row = %q, want %q", rows[1], domain.TargetHeaders)
	}
	return p
}

func validateParity(rows [][]string, expected []expectedRow) *phase {
	p := &phase{name: "Row parity"}
	if got := len(rows) - 2; got != len(expected) {
		p.errorf("TMY3 data rows = %d, want %d", got, len(expected))
	}
	return p
}

func validateRows(rows [][]string, expected []expectedRow) *phase {
	p := &phase{name: "Row values and order"}
	data := rows[2:]
	for i, exp := range expected {
		if i >= len(data) {
			p.errorf("source line %d: missing from TMY3 file", exp.line)
			continue
		}
		got := data[i]
		if len(got) != domain.TargetWidth {
			continue // reported by the schema phase
		}
		for col := range domain.TargetWidth {
			if got[col] != exp.row[col] {
				p.errorf("source line %d, %s = %q, want %q",
					exp.line, domain.TargetHeaders[col], got[col], exp.row[col])
			}
		}
	}
	return p
}

func validateSchema(rows [][]string) *phase {
	p := &phase{name: "Schema alignment"}
	for i, row := range rows[2:] {
		if len(row) != domain.TargetWidth {
			p.errorf("TMY3 line %d: %d columns, want %d", i+3, len(row), domain.TargetWidth)
		}
		if len(row) > 1 && !validTime(row[1]) {
			p.errorf("TMY3 line %d: time %q is not H:MM or 24:00:00", i+3, row[1])
		}
	}
	return p
}

// validTime accepts the forms the converter writes: "<h>:<mm>" and "24:00:00".
func validTime(s string) bool {
	if s == "24:00:00" {
		return true
	}
	h, m, ok := strings.Cut(s, ":")
	return ok && h != "" && m != "" && !strings.Contains(m, ":")
}

func equalRows(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
