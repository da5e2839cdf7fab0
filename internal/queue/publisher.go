package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hetulpatel/LiveEdge/internal/logging"
	"github.com/hetulpatel/LiveEdge/internal/models"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// PublishScan writes one finished scan, keyed by event so every scan of an
// event lands on the same partition.
func PublishScan(ctx context.Context, writer MessageWriter, event models.ScanEvent) error {
	if writer == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal scan %s: %w", event.ScanID, err)
	}
	msg := kafka.Message{
		Key:   []byte(event.Event),
		Value: payload,
		Time:  event.FinishedAt,
		Headers: []kafka.Header{
			{Key: "scan_id", Value: []byte(event.ScanID)},
		},
	}
	return writer.WriteMessages(ctx, msg)
}

// ScanSink adapts a writer to the orchestrator's scan-complete hook. Publish
// errors are logged; a broker outage never blocks the dashboard for longer
// than timeout.
func ScanSink(writer MessageWriter, timeout time.Duration) func(models.ScanEvent) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return func(event models.ScanEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := PublishScan(ctx, writer, event); err != nil {
			logging.Errorf("[scan-feed] publish scan %s: %v", event.ScanID, err)
			return
		}
		logging.Debugf("[scan-feed] published scan %s", event.ScanID)
	}
}
