package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hetulpatel/LiveEdge/internal/logging"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultBroker    = "kafka-broker:9092"
	DefaultScanTopic = "liveedge.scans"
)

func Brokers() []string {
	return ParseBrokers(os.Getenv("KAFKA_BROKERS"))
}

// ParseBrokers splits a comma separated broker list, defaulting to
// DefaultBroker.
func ParseBrokers(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		raw = DefaultBroker
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ErrTopicSetup marks a broker that answered but would not create the scan
// topic. Brokers with auto-create enabled still accept writes, so callers
// usually log it and carry on.
var ErrTopicSetup = errors.New("kafka: topic setup")

const (
	dialRetryEvery    = time.Second
	topicSetupTimeout = 30 * time.Second
)

// Ready blocks until the first broker accepts a connection, giving up after
// wait, and then makes sure topic exists with a single partition so scan
// events stay in order for every consumer.
func Ready(ctx context.Context, brokers []string, topic string, wait time.Duration) error {
	if len(brokers) == 0 {
		return errors.New("kafka: no brokers configured")
	}

	dialCtx, cancel := context.WithTimeout(ctx, wait)
	conn, err := awaitBroker(dialCtx, brokers[0])
	cancel()
	if err != nil {
		return err
	}
	defer conn.Close()

	setupCtx, cancel := context.WithTimeout(ctx, topicSetupTimeout)
	defer cancel()
	if err := createScanTopic(setupCtx, conn, topic); err != nil {
		return fmt.Errorf("%w %s: %v", ErrTopicSetup, topic, err)
	}
	return nil
}

func awaitBroker(ctx context.Context, addr string) (*kafka.Conn, error) {
	for attempt := 1; ; attempt++ {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err == nil {
			return conn, nil
		}
		logging.Debugf("[kafka] broker %s not ready (attempt %d): %v", addr, attempt, err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("kafka: broker %s unreachable after %d attempts: %w", addr, attempt, err)
		case <-time.After(dialRetryEvery):
		}
	}
}

// createScanTopic asks the cluster controller, found through conn, for the
// topic. An existing topic is left as is.
func createScanTopic(ctx context.Context, conn *kafka.Conn, topic string) error {
	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("find controller: %w", err)
	}
	addr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))
	ctrl, err := kafka.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial controller %s: %w", addr, err)
	}
	defer ctrl.Close()

	err = ctrl.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	if errors.Is(err, kafka.TopicAlreadyExists) {
		return nil
	}
	return err
}

// NewWriter publishes scan events keyed by event so one event's scans land
// together. Writes are flushed quickly because a scan is a single message
// every few seconds at most.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              1,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// NewReader joins group when set; an empty group tails the topic from the
// newest offset without committing.
func NewReader(brokers []string, topic, group string) *kafka.Reader {
	cfg := kafka.ReaderConfig{
		Brokers:           brokers,
		Topic:             topic,
		GroupID:           group,
		MinBytes:          1,
		MaxBytes:          10e6,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
		CommitInterval:    time.Second,
		StartOffset:       kafka.FirstOffset,
	}
	if group == "" {
		cfg.StartOffset = kafka.LastOffset
		cfg.CommitInterval = 0
	}
	return kafka.NewReader(cfg)
}
