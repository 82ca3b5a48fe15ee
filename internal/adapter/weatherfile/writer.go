package weatherfile

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Writer writes TMY3 rows to a file, one complete CRLF-terminated line per
// write. A crash between rows leaves a truncated but line-valid file.
//
// Quoting is minimal: a field is quoted only when it holds a comma, a double
// quote, CR or LF, with embedded quotes doubled. Leading spaces are written
// as-is, so station names such as " CO" round-trip byte for byte.
type Writer struct {
	file *os.File
	buf  *bufio.Writer
	path string
	rows int
}

// Create opens path for writing, truncating any existing file.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return &Writer{file: f, buf: bufio.NewWriter(f), path: path}, nil
}

// WriteRow encodes and flushes a single row.
func (w *Writer) WriteRow(row []string) error {
	w.buf.WriteString(encodeRow(row))
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	w.rows++
	return nil
}

// Rows returns the number of rows written so far, header rows included.
func (w *Writer) Rows() int {
	return w.rows
}

// Path returns the output file path.
func (w *Writer) Path() string {
	return w.path
}

// Close flushes any buffered data and closes the file. It is safe to call
// more than once.
func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}
	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	w.file = nil
	if flushErr != nil {
		return fmt.Errorf("flush %s: %w", w.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", w.path, closeErr)
	}
	return nil
}

// encodeRow renders one CSV line including its CRLF terminator. A row made of
// a single empty field is written as "" so it reads back as a field, not a
// blank line.
func encodeRow(row []string) string {
	if len(row) == 1 && row[0] == "" {
		return "\"\"\r\n"
	}
	var b strings.Builder
	for i, field := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		if !strings.ContainsAny(field, ",\"\r\n") {
			b.WriteString(field)
			continue
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(field, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
	return b.String()
}
