package workers

import (
	"context"
	"encoding/json"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/hetulpatel/LiveEdge/internal/kafka"
	"github.com/hetulpatel/LiveEdge/internal/logging"
	"github.com/hetulpatel/LiveEdge/internal/models"
)

type Handler func(context.Context, *models.ScanEvent) error

// MessageReader is satisfied by *kafka.Reader.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
}

func Run(ctx context.Context, brokers []string, topic, group string, workerCount int, handler Handler) {
	if workerCount <= 0 {
		workerCount = 1
	}
	// Without a consumer group every reader would see every message.
	if group == "" {
		workerCount = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			reader := kafka.NewReader(brokers, topic, group)
			defer reader.Close()
			Consume(ctx, reader, handler)
		}(i)
	}

	<-ctx.Done()
	wg.Wait()
}

// Consume reads scan events until ctx is done. Undecodable messages and
// handler errors are logged and skipped.
func Consume(ctx context.Context, reader MessageReader, handler Handler) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Errorf("[scan-feed] read error: %v", err)
			continue
		}

		var event models.ScanEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logging.Errorf("[scan-feed] unmarshal error: %v", err)
			continue
		}

		if handler != nil {
			if err := handler(ctx, &event); err != nil {
				logging.Errorf("[scan-feed] handler error: %v", err)
			}
		}
	}
}
