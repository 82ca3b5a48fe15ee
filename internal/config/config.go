package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all converter settings, populated from environment variables
// and an optional .env file in the working directory.
type Config struct {
	// OutputDir receives converted files when a conversion names no directory.
	// Defaults to the working directory at load time.
	OutputDir string

	// InputDir confines the input paths accepted over HTTP. Defaults to the
	// working directory at load time.
	InputDir string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka row publishing. Enabled when KAFKA_BROKERS is set unless
	// KAFKA_ENABLED says otherwise.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
	BatchSize      int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	outputDir, err := resolveDir("OUTPUT_DIR")
	if err != nil {
		return nil, err
	}
	inputDir, err := resolveDir("INPUT_DIR")
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		OutputDir:       outputDir,
		InputDir:        inputDir,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		ShutdownTimeout: shutdownTimeout,
		KafkaEnabled:    kafkaEnabled,
		KafkaBrokers:    brokers,
		KafkaSinkTopic:  sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "tmy3-hourly-rows"),
		BatchSize:       batchSize,
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

// resolveDir returns the directory named by the environment variable key as
// an absolute path, or the working directory when it is unset.
func resolveDir(key string) (string, error) {
	dir := os.Getenv(key)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", key, err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid %s: %w", key, err)
	}
	return abs, nil
}
