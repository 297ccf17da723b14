package events

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
)

type kafkaPublisher struct {
	producer sarama.SyncProducer
}

func NewKafkaPublisher(brokers []string) (Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("connect kafka %v: %w", brokers, err)
	}
	return NewKafkaPublisherWithProducer(producer), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer) Publisher {
	return &kafkaPublisher{producer: producer}
}

// Publish keys messages by request id so a request's events stay ordered
// within one partition.
func (k *kafkaPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := event.encode()
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: event.Type,
		Key:   sarama.StringEncoder(event.RequestID),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := k.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

func (k *kafkaPublisher) Close() error {
	return k.producer.Close()
}
