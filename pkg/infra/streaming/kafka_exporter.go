package streaming

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SentriLabs/SentriAuth/pkg/config"
	"github.com/SentriLabs/SentriAuth/pkg/domain/audit"
	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// Exporter publishes audit events to an external stream for SIEM ingestion.
type Exporter interface {
	Publish(ctx context.Context, event *audit.Event) error
	Close()
}

// KafkaExporter streams audit events to a kafka topic.
type KafkaExporter struct {
	topic    string
	producer *kafka.Producer
}

func NewKafkaExporter(cfg config.KafkaConfig) (*KafkaExporter, error) {
	if cfg.Host == "" {
		return nil, errors.New("kafka host is required")
	}
	if cfg.Port == "" {
		return nil, errors.New("kafka port is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &KafkaExporter{
		topic:    cfg.Topic,
		producer: producer,
	}, nil
}

func (e *KafkaExporter) Publish(_ context.Context, event *audit.Event) error {
	if e.producer == nil {
		return errors.New("kafka producer is not initialized")
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}
	deliveryChan := make(chan kafka.Event)

	err = e.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &e.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.ID.String()),
		Value:          data,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}
	evt := <-deliveryChan
	m, ok := evt.(*kafka.Message)
	if !ok {
		return errors.New("unexpected kafka event type")
	}

	if m.TopicPartition.Error != nil {
		return fmt.Errorf("delivery failed: %w", m.TopicPartition.Error)
	}

	close(deliveryChan)
	return nil
}

func (e *KafkaExporter) Close() {
	if e.producer != nil {
		e.producer.Flush(5000)
		e.producer.Close()
	}
}
