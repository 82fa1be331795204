package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/log"
)

const (
	defaultKafkaQueueSize    = 256
	defaultKafkaBatchTimeout = 100 * time.Millisecond
	defaultKafkaWriteTimeout = 5 * time.Second
)

// KafkaConfig configures the optional Kafka alert sink.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	QueueSize    int           `mapstructure:"queue_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// KafkaSink publishes fired alerts to a Kafka topic. Delivery runs on its
// own goroutine; Publish never blocks the capture pipeline, events are
// dropped when the queue is full.
type KafkaSink struct {
	writer *kafka.Writer
	events chan Event
	done   chan struct{}
}

// NewKafkaSink creates and starts a Kafka sink.
func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka sink requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka sink requires a topic")
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultKafkaQueueSize
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = defaultKafkaBatchTimeout
	}

	s := &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: batchTimeout,
			WriteTimeout: defaultKafkaWriteTimeout,
			Compression:  kafka.Snappy,
		},
		events: make(chan Event, queueSize),
		done:   make(chan struct{}),
	}
	go s.run()
	return s, nil
}

// Publish enqueues an event for delivery, dropping it if the queue is full.
func (s *KafkaSink) Publish(ev Event) {
	select {
	case s.events <- ev:
	default:
		log.GetLogger().WithField("rule", ev.Rule).
			Warn("kafka alert queue full, dropping event")
	}
}

// Close stops the delivery goroutine and flushes the writer.
func (s *KafkaSink) Close() error {
	close(s.events)
	<-s.done
	return s.writer.Close()
}

func (s *KafkaSink) run() {
	defer close(s.done)
	for ev := range s.events {
		payload, err := json.Marshal(ev)
		if err != nil {
			log.GetLogger().WithError(err).Error("failed to encode alert event")
			continue
		}
		msg := kafka.Message{
			Key:   []byte(ev.Rule),
			Value: payload,
			Time:  ev.At,
		}
		if err := s.writer.WriteMessages(context.Background(), msg); err != nil {
			log.GetLogger().WithError(err).Error("failed to publish alert to kafka")
		}
	}
}
