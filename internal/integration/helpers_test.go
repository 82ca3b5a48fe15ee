//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker for the lifetime of the test.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("tmy3-convert-test"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// writeSource writes a small EPW file: a LOCATION line, seven preamble lines,
// and one data row per hour, plus any extra raw lines.
func writeSource(t *testing.T, hours int, extra ...string) string {
	t.Helper()
	lines := []string{"LOCATION,Denver Intl AP,CO,USA,TMYx,725650,39.833,-104.65,-7.0,1650.0"}
	for i := 0; i < 7; i++ {
		lines = append(lines, "COMMENTS 1,preamble")
	}
	for h := 1; h <= hours; h++ {
		row := make([]string, 35)
		for i := range row {
			row[i] = "1"
		}
		row[0], row[1], row[2], row[3], row[4] = "2021", "7", "4", strconv.Itoa(h), "0"
		row[9] = "83500"
		lines = append(lines, strings.Join(row, ","))
	}
	lines = append(lines, extra...)

	path := filepath.Join(t.TempDir(), "USA_CO_Denver.725650_TMYx.epw")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\r\n")+"\r\n"), 0o644))
	return path
}
