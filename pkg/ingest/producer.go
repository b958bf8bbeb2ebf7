package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/AccelByte/extend-runner-progression/pkg/service"
)

// Producer publishes gameplay events keyed by player ID.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducerConfig returns the sarama configuration used for gameplay events.
func NewProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Flush.Frequency = 100 * time.Millisecond
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	return cfg
}

// NewProducer connects a synchronous producer to brokers.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	p, err := sarama.NewSyncProducer(brokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}
	return NewProducerFrom(p, topic), nil
}

// NewProducerFrom wraps an existing sarama producer.
func NewProducerFrom(p sarama.SyncProducer, topic string) *Producer {
	return &Producer{producer: p, topic: topic}
}

// Publish validates and sends one event.
func (p *Producer) Publish(e service.GameplayEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding gameplay event: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(e.PlayerID),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		return fmt.Errorf("sending gameplay event: %w", err)
	}
	return nil
}

// Close flushes and closes the producer.
func (p *Producer) Close() error {
	return p.producer.Close()
}
