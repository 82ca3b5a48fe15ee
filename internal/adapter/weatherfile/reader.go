// Package weatherfile reads TMYx/EPW source files and writes TMY3 output files.
package weatherfile

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/couchcryptid/tmy3-convert/internal/domain"
)

// ErrInvalidEncoding is returned when a source file is not valid UTF-8.
var ErrInvalidEncoding = errors.New("file is not valid UTF-8")

// ReadLocation reads the first line of the file at path and extracts the
// station metadata from it.
func ReadLocation(path string) (domain.LocationMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.LocationMetadata{}, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return domain.LocationMetadata{}, fmt.Errorf("read location line: %w", err)
	}
	// Old Mac line endings leave the whole file on one "line".
	line, _, _ = strings.Cut(line, "\r")
	if !utf8.ValidString(line) {
		return domain.LocationMetadata{}, fmt.Errorf("read location line: %w", ErrInvalidEncoding)
	}
	return domain.ParseLocationLine(line), nil
}

// FindDataStart scans the file at path and returns the 1-based number of the
// first line that opens the hourly block. When no line qualifies it returns
// domain.DefaultDataStartLine and found is false.
func FindDataStart(path string) (line int, found bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(scanUniversalLines)
	for n := 1; sc.Scan(); n++ {
		if domain.IsDataStart(sc.Text()) {
			return n, true, nil
		}
	}
	if err := sc.Err(); err != nil {
		return 0, false, fmt.Errorf("scan source: %w", err)
	}
	return domain.DefaultDataStartLine, false, nil
}

// ReadLines reads the whole file at path and splits it into lines. "\r\n",
// "\r" and "\n" all terminate a line; terminators are not included.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}
	if len(data) == 0 {
		return nil, nil
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n"), nil
}

// SplitRecord parses one trimmed source line into fields, honouring CSV
// quoting. Blank lines yield a nil record.
func SplitRecord(line string) (domain.SourceRecord, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	fields, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("split record: %w", err)
	}
	return domain.SourceRecord(fields), nil
}

// scanUniversalLines is a bufio.SplitFunc that accepts "\n", "\r\n" and "\r"
// line endings.
func scanUniversalLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		switch b {
		case '\n':
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if atEOF {
				return i + 1, data[:i], nil
			}
			// Need one more byte to tell "\r" from "\r\n".
			return 0, nil, nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
