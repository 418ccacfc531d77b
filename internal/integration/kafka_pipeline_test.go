//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/nabr-climate-report/internal/adapter/kafka"
	"github.com/couchcryptid/nabr-climate-report/internal/config"
	"github.com/couchcryptid/nabr-climate-report/internal/domain"
	"github.com/couchcryptid/nabr-climate-report/internal/mockdata"
	"github.com/couchcryptid/nabr-climate-report/internal/observability"
	"github.com/couchcryptid/nabr-climate-report/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSinkTopic = "test-annotated-observations"

type staticExtractor struct {
	historic, nearTerm []domain.Observation
}

func (s staticExtractor) Extract(context.Context) ([]domain.Observation, []domain.Observation, error) {
	return s.historic, s.nearTerm, nil
}

// TestPublishAnnotatedObservations runs the publish path against a real broker
// and reads every message back from the sink topic.
func TestPublishAnnotatedObservations(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	opts := mockdata.DefaultOptions()
	opts.Cols, opts.Rows = 2, 2
	opts.HistoricFrom, opts.HistoricTo = 2015, 2019
	historic, nearTerm := mockdata.Generate(opts)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaSinkTopic: testSinkTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(staticExtractor{historic: historic, nearTerm: nearTerm}, nil,
		pipeline.Options{Center: domain.DefaultCenter, PublishBatchSize: 7},
		discardLogger(), observability.NewMetricsForTesting())

	sent, err := p.Publish(ctx, writer)
	require.NoError(t, err)
	require.Positive(t, sent)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testSinkTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	seen := make(map[string]bool, sent)
	for range sent {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from sink topic")

		var decoded kafka.Message
		require.NoError(t, json.Unmarshal(msg.Value, &decoded))
		assert.Contains(t, domain.DroughtLevels, decoded.DroughtLevel)
		assert.Contains(t, domain.Regions, decoded.Region)

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, string(decoded.DroughtLevel), headers["drought_level"])
		assert.Equal(t, string(decoded.Region), headers["region"])
		assert.NotEmpty(t, headers["generated_at"])

		seen[string(msg.Key)] = true
	}
	assert.Len(t, seen, sent, "one message per site and year")
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("nabr-report-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

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

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
