package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/nabr-climate-report/internal/config"
	"github.com/couchcryptid/nabr-climate-report/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces annotated observations to a Kafka topic.
// It implements pipeline.BatchLoader.
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
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes the rows in a single WriteMessages call.
// Messages are keyed by site and year so a site's rows share a partition.
func (w *Writer) LoadBatch(ctx context.Context, rows []domain.AnnotatedObservation) error {
	if len(rows) == 0 {
		return nil
	}
	publishedAt := domain.Now()
	msgs := make([]kafkago.Message, len(rows))
	for i := range rows {
		msg, err := serializeToMessage(rows[i], publishedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	w.logger.Debug("batch published", "topic", w.writer.Topic, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// Message is the JSON value of a published observation.
type Message struct {
	SiteID           string              `json:"site_id"`
	Longitude        float64             `json:"longitude"`
	Latitude         float64             `json:"latitude"`
	Year             int                 `json:"year"`
	AvgTemperature   float64             `json:"avg_temperature"`
	AvgPrecipitation float64             `json:"avg_precipitation"`
	DroughtLevel     domain.DroughtLevel `json:"drought_level"`
	Region           domain.Region       `json:"region"`
	// Values holds every numeric column; missing values are null.
	Values map[domain.Field]*float64 `json:"values"`
}

// MessageKey is the partition key of an observation: site id and year.
func MessageKey(row domain.AnnotatedObservation) string {
	return row.Location.SiteID() + ":" + strconv.Itoa(row.Year)
}

// serializeToMessage marshals an annotated observation into a Kafka message.
func serializeToMessage(row domain.AnnotatedObservation, publishedAt time.Time) (kafkago.Message, error) {
	values := make(map[domain.Field]*float64, len(domain.Fields))
	for _, f := range domain.Fields {
		values[f] = domain.Nullable(row.Value(f))
	}
	data, err := json.Marshal(Message{
		SiteID:           row.Location.SiteID(),
		Longitude:        row.Location.Lon,
		Latitude:         row.Location.Lat,
		Year:             row.Year,
		AvgTemperature:   row.AvgTemperature,
		AvgPrecipitation: row.AvgPrecipitation,
		DroughtLevel:     row.Drought,
		Region:           row.Region,
		Values:           values,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation %s: %w", MessageKey(row), err)
	}
	return kafkago.Message{
		Key:   []byte(MessageKey(row)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "drought_level", Value: []byte(row.Drought)},
			{Key: "region", Value: []byte(row.Region)},
			{Key: "generated_at", Value: []byte(publishedAt.Format(time.RFC3339))},
		},
	}, nil
}
