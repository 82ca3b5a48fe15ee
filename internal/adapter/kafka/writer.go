package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/tmy3-convert/internal/config"
	"github.com/couchcryptid/tmy3-convert/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// HourlyRow is the JSON value published for each TMY3 row.
type HourlyRow struct {
	StationID string            `json:"station_id"`
	Date      string            `json:"date"`
	Time      string            `json:"time"`
	Values    map[string]string `json:"values"`
}

// Writer produces TMY3 rows to a Kafka topic.
// It implements pipeline.RowPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishRows serializes a batch of rows and publishes them in a single
// WriteMessages call. All rows share the station key, so they land on one
// partition in source order.
func (w *Writer) PublishRows(ctx context.Context, batch domain.RowBatch) error {
	if len(batch.Rows) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(batch.Rows))
	for i := range batch.Rows {
		msg, err := serializeToMessage(batch, batch.Rows[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write messages: %w", err)
	}
	w.logger.Debug("published rows", "count", len(msgs), "station_id", batch.StationID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one TMY3 row into a Kafka message.
func serializeToMessage(batch domain.RowBatch, row domain.TargetRecord) (kafkago.Message, error) {
	values := make(map[string]string, domain.TargetWidth-2)
	for i := 2; i < domain.TargetWidth; i++ {
		values[domain.TargetHeaders[i]] = row[i]
	}
	data, err := json.Marshal(HourlyRow{
		StationID: batch.StationID,
		Date:      row[0],
		Time:      row[1],
		Values:    values,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize tmy3 row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(batch.StationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station_id", Value: []byte(batch.StationID)},
			{Key: "run_id", Value: []byte(batch.RunID)},
			{Key: "converted_at", Value: []byte(batch.ConvertedAt.Format(time.RFC3339))},
		},
	}, nil
}
