// Command tmy3convert converts TMYx (.csv) and EnergyPlus (.epw) weather files
// to the legacy TMY3 layout, either once from the command line or on demand
// over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/couchcryptid/tmy3-convert/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/tmy3-convert/internal/adapter/kafka"
	"github.com/couchcryptid/tmy3-convert/internal/config"
	"github.com/couchcryptid/tmy3-convert/internal/observability"
	"github.com/couchcryptid/tmy3-convert/internal/pipeline"
)

const version = "1.0.0"

// defaultMetrics registers the process metrics once per process.
var defaultMetrics = sync.OnceValue(observability.NewMetrics)

func usage() {
	fmt.Fprintf(os.Stderr, `tmy3convert v%s
TMYx/EPW to TMY3 weather file converter

Usage:
  tmy3convert <weather_file> [output_dir]          Convert one file
  tmy3convert convert <weather_file> [output_dir]  Convert one file
  tmy3convert serve                                Start the HTTP converter
  tmy3convert help                                 Show this help message

Supported formats: .csv (TMYx), .epw (EnergyPlus Weather)

Examples:
  tmy3convert USA_CO_Akron.csv
  tmy3convert USA_CO_Akron.epw
  tmy3convert weather_data.epw ./converted

Output is written to {station id}TMYX.csv in output_dir, or OUTPUT_DIR,
or the current directory.
`, version)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		usage()
		return 1
	}

	switch strings.ToLower(args[0]) {
	case "help", "-h", "--help":
		usage()
		return 0
	case "version", "-v", "--version":
		fmt.Println(version)
		return 0
	case "serve", "server":
		return serve()
	case "convert":
		args = args[1:]
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "Error: weather file path required")
			usage()
			return 1
		}
	}

	var outputDir string
	if len(args) >= 2 {
		outputDir = args[1]
	}
	return convert(args[0], outputDir)
}

// setup loads configuration and builds the converter with its optional Kafka sink.
func setup() (*config.Config, *slog.Logger, *pipeline.Converter, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	logger := observability.NewLogger(cfg)
	metrics := defaultMetrics()

	var publisher pipeline.RowPublisher
	cleanup := func() {}
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		cleanup = func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}
		logger.Info("kafka row publishing enabled", "topic", cfg.KafkaSinkTopic, "batch_size", cfg.BatchSize)
	}

	conv := pipeline.New(publisher, logger, metrics, pipeline.Options{
		DefaultOutputDir: cfg.OutputDir,
		BatchSize:        cfg.BatchSize,
	})
	return cfg, logger, conv, cleanup, nil
}

func convert(inputPath, outputDir string) int {
	_, logger, conv, cleanup, err := setup()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := conv.Convert(ctx, inputPath, outputDir)
	if err != nil {
		return 1
	}
	if len(report.Skipped) > 0 {
		logger.Warn("some rows were skipped", "count", len(report.Skipped), "output", report.Output)
	}
	fmt.Printf("Output saved to: %s\n", report.Output)
	return 0
}

func serve() int {
	cfg, logger, conv, cleanup, err := setup()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	defer cleanup()

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		logger.Error("failed to create output directory", "dir", cfg.OutputDir, "error", err)
		return 1
	}

	roots := httpadapter.Roots{Input: cfg.InputDir, Output: cfg.OutputDir}
	srv := httpadapter.NewServer(cfg.HTTPAddr, conv, conv, roots, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
		return 1
	}

	logger.Info("shutdown complete")
	return 0
}
