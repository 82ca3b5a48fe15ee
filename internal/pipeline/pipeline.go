package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/tmy3-convert/internal/adapter/weatherfile"
	"github.com/couchcryptid/tmy3-convert/internal/domain"
	"github.com/couchcryptid/tmy3-convert/internal/observability"
	"github.com/google/uuid"
)

// ErrInputNotFound is returned when the source file does not exist.
var ErrInputNotFound = errors.New("input file not found")

// RowPublisher receives converted rows in batches, in source order.
type RowPublisher interface {
	PublishRows(ctx context.Context, batch domain.RowBatch) error
}

// Options configures a Converter.
type Options struct {
	// DefaultOutputDir is used when Convert is called without an output
	// directory. Empty means the working directory at call time.
	DefaultOutputDir string

	// BatchSize bounds the rows handed to the publisher per call.
	BatchSize int
}

// Report summarises one conversion.
type Report struct {
	RunID          string                  `json:"run_id"`
	Input          string                  `json:"input"`
	Output         string                  `json:"output"`
	FileType       string                  `json:"file_type"`
	StationID      string                  `json:"station_id"`
	Location       domain.LocationMetadata `json:"location"`
	DataStartLine  int                     `json:"data_start_line"`
	DataStartFound bool                    `json:"data_start_found"`
	RowsWritten    int                     `json:"rows_written"`
	Skipped        []domain.RowSkip        `json:"skipped"`
	Duration       time.Duration           `json:"duration"`
}

// Converter turns TMYx/EPW files into TMY3 files.
type Converter struct {
	publisher RowPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options
}

// New creates a Converter. Pass a nil publisher to write files only.
func New(publisher RowPublisher, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Converter {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	return &Converter{
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		opts:      opts,
	}
}

// CheckReadiness reports whether the default output directory exists and is a
// directory. It never creates anything.
func (c *Converter) CheckReadiness(_ context.Context) error {
	if c.opts.DefaultOutputDir == "" {
		return nil
	}
	info, err := os.Stat(c.opts.DefaultOutputDir)
	if err != nil {
		return fmt.Errorf("output directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory unavailable: %s is not a directory", c.opts.DefaultOutputDir)
	}
	return nil
}

// Convert reads inputPath and writes its TMY3 rendering into outputDir,
// creating the directory if needed. Malformed data rows are skipped and
// listed in the report; missing input and I/O failures are returned as errors.
func (c *Converter) Convert(ctx context.Context, inputPath, outputDir string) (Report, error) {
	start := domain.Now()
	report := Report{
		RunID:    uuid.NewString(),
		Input:    inputPath,
		FileType: domain.FileType(inputPath),
	}

	err := c.convert(ctx, &report, outputDir)
	report.Duration = domain.Since(start)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.Conversions.WithLabelValues(report.FileType, outcome).Inc()
	c.metrics.ConversionDuration.Observe(report.Duration.Seconds())

	if err != nil {
		c.logger.Error("conversion failed", "input", inputPath, "run_id", report.RunID, "error", err)
		return report, err
	}
	c.logger.Info("conversion complete",
		"output", report.Output,
		"rows_written", report.RowsWritten,
		"rows_skipped", len(report.Skipped),
		"run_id", report.RunID,
	)
	return report, nil
}

// convert runs locate, extract, map and write in order. Every read completes
// before the output file is created.
func (c *Converter) convert(ctx context.Context, report *Report, outputDir string) (err error) {
	inputPath := report.Input
	info, err := os.Stat(inputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, inputPath)
		}
		return fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input %s is a directory", inputPath)
	}

	dir, err := c.resolveOutputDir(outputDir)
	if err != nil {
		return err
	}

	meta, err := weatherfile.ReadLocation(inputPath)
	if err != nil {
		return err
	}
	report.Location = meta

	stationID, ok := domain.StationIDFromFilename(inputPath)
	if !ok {
		stationID = meta.StationID
	}
	report.StationID = stationID
	report.Output = filepath.Join(dir, domain.OutputFilename(stationID))

	c.logger.Info("converting weather file",
		"file_type", report.FileType,
		"input", filepath.Base(inputPath),
		"output", report.Output,
		"run_id", report.RunID,
	)

	report.DataStartLine, report.DataStartFound, err = weatherfile.FindDataStart(inputPath)
	if err != nil {
		return err
	}
	if !report.DataStartFound {
		c.logger.Debug("no year-led line found, using default data start", "line", report.DataStartLine)
		c.metrics.DataStartFallbacks.Inc()
	}

	lines, err := weatherfile.ReadLines(inputPath)
	if err != nil {
		return err
	}

	w, err := weatherfile.Create(report.Output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := w.WriteRow(meta.Row()); err != nil {
		return err
	}
	if err := w.WriteRow(domain.TargetHeaders[:]); err != nil {
		return err
	}

	return c.writeRows(ctx, w, report, lines)
}

// writeRows maps and writes every data line from the data start onwards.
func (c *Converter) writeRows(ctx context.Context, w *weatherfile.Writer, report *Report, lines []string) error {
	batch := domain.RowBatch{
		RunID:       report.RunID,
		StationID:   report.StationID,
		Location:    report.Location,
		ConvertedAt: domain.Now(),
	}

	for i := report.DataStartLine - 1; i < len(lines); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		c.metrics.RowsRead.Inc()

		out, err := transformLine(line)
		if err != nil {
			c.skipRow(report, i+1, line, err)
			continue
		}

		if err := w.WriteRow(out.Row()); err != nil {
			return err
		}
		report.RowsWritten++
		c.metrics.RowsWritten.Inc()

		if c.publisher == nil {
			continue
		}
		batch.Rows = append(batch.Rows, out)
		if len(batch.Rows) >= c.opts.BatchSize {
			if err := c.publish(ctx, &batch); err != nil {
				return err
			}
		}
	}

	if c.publisher != nil && len(batch.Rows) > 0 {
		return c.publish(ctx, &batch)
	}
	return nil
}

func (c *Converter) skipRow(report *Report, line int, content string, err error) {
	c.logger.Warn("skipping malformed row",
		"line", line,
		"content", content,
		"error", err,
	)
	c.metrics.RowsSkipped.WithLabelValues(skipReason(err)).Inc()
	report.Skipped = append(report.Skipped, domain.NewRowSkip(line, content, err))
}

// publish hands the pending rows to the publisher and resets the batch.
func (c *Converter) publish(ctx context.Context, batch *domain.RowBatch) error {
	if err := c.publisher.PublishRows(ctx, *batch); err != nil {
		return fmt.Errorf("publish rows: %w", err)
	}
	c.metrics.RowsPublished.Add(float64(len(batch.Rows)))
	batch.Rows = nil
	return nil
}

// resolveOutputDir picks the explicit directory, then the configured default,
// then the working directory, and makes sure it exists.
func (c *Converter) resolveOutputDir(dir string) (string, error) {
	if dir == "" {
		dir = c.opts.DefaultOutputDir
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve output directory: %w", err)
		}
		dir = wd
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return dir, nil
}
