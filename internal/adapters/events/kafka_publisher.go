package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"donation-route-service/internal/domain"
	"donation-route-service/internal/ports"

	"github.com/segmentio/kafka-go"
)

var _ ports.StatusPublisher = (*KafkaStatusPublisher)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaStatusPublisher records donation status changes on a topic keyed by
// donation id, so the changes of one donation stay ordered.
type KafkaStatusPublisher struct {
	writer messageWriter
}

func NewKafkaStatusPublisher(brokers []string, topic string) *KafkaStatusPublisher {
	return &KafkaStatusPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}}
}

func (p *KafkaStatusPublisher) PublishStatusChanged(ctx context.Context, evt domain.StatusChanged) error {
	ce, err := NewCloudEvent(TypeStatusChanged, newStatusMessage(evt))
	if err != nil {
		return err
	}
	value, err := json.Marshal(ce)
	if err != nil {
		return fmt.Errorf("marshal status change: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(evt.DonationID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "ce_type", Value: []byte(ce.Type)},
			{Key: "ce_id", Value: []byte(ce.ID)},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka write status change for donation %d: %w", evt.DonationID, err)
	}
	return nil
}

func (p *KafkaStatusPublisher) Close() error {
	return p.writer.Close()
}
