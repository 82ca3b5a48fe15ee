//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/tmy3-convert/internal/adapter/kafka"
	"github.com/couchcryptid/tmy3-convert/internal/config"
	"github.com/couchcryptid/tmy3-convert/internal/observability"
	"github.com/couchcryptid/tmy3-convert/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSinkTopic = "test-tmy3-rows"

// publishedMessage holds a deserialized message read from the sink topic.
type publishedMessage struct {
	Row     kafka.HourlyRow
	Key     string
	Headers map[string]string
}

func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var row kafka.HourlyRow
	require.NoError(t, json.Unmarshal(msg.Value, &row), "unmarshal sink message")

	return publishedMessage{Row: row, Key: string(msg.Key), Headers: headers}
}

// TestConvertPublishesRows runs a conversion with the Kafka writer attached and
// checks that every written row arrives on the sink topic, in source order,
// and that skipped rows are never published.
func TestConvertPublishesRows(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
		BatchSize:      10,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	const hours = 24
	source := writeSource(t, hours, "2021,7,5,1,0,truncated")

	conv := pipeline.New(writer, discardLogger(), observability.NewMetricsForTesting(), pipeline.Options{
		BatchSize: cfg.BatchSize,
	})
	report, err := conv.Convert(ctx, source, t.TempDir())
	require.NoError(t, err)
	require.Equal(t, hours, report.RowsWritten)
	require.Len(t, report.Skipped, 1)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	for h := 1; h <= hours; h++ {
		pm := readPublished(ctx, t, consumer)
		assert.Equal(t, "725650", pm.Key)
		assert.Equal(t, "725650", pm.Headers["station_id"])
		assert.Equal(t, report.RunID, pm.Headers["run_id"])
		_, err := time.Parse(time.RFC3339, pm.Headers["converted_at"])
		assert.NoError(t, err, "converted_at should be valid RFC3339")

		assert.Equal(t, "7/4/2021", pm.Row.Date)
		assert.Equal(t, fmt.Sprintf("%d:00", h), pm.Row.Time, "rows must arrive in source order")
		assert.Equal(t, "835", pm.Row.Values["Pressure (mbar)"])
	}

	// The truncated row was skipped, so nothing else is on the topic.
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err = consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no further messages on sink topic")

	// The file written alongside the published rows has the same row count.
	data, err := os.ReadFile(report.Output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\r\n"), "\r\n")
	assert.Len(t, lines, hours+2)
}

// TestConvertFailsWhenTopicUnreachable verifies a publish failure surfaces as
// a conversion error.
func TestConvertFailsWhenTopicUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := &config.Config{
		KafkaBrokers:   []string{"127.0.0.1:1"},
		KafkaSinkTopic: testSinkTopic,
		BatchSize:      10,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	conv := pipeline.New(writer, discardLogger(), observability.NewMetricsForTesting(), pipeline.Options{})
	_, err := conv.Convert(ctx, writeSource(t, 3), t.TempDir())
	require.Error(t, err)
}
