package events

import (
	"context"
	"encoding/json"
	"fmt"

	"donation-route-service/internal/domain"
	"donation-route-service/internal/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

var _ ports.ProximityPublisher = (*RabbitMQProximityPublisher)(nil)

const (
	proximityExchange = "driver.events"
	proximityQueue    = "proximity_prompts"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// amqpTopology is the part of *amqp.Channel used to declare the prompt exchange.
type amqpTopology interface {
	amqpChannel
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// RabbitMQProximityPublisher fans proximity prompts out to driver clients.
type RabbitMQProximityPublisher struct {
	ch amqpChannel
}

func NewRabbitMQ(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq connect: %w", err)
	}
	return conn, nil
}

func NewRabbitMQProximityPublisher(conn *amqp.Connection) (*RabbitMQProximityPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	return newProximityPublisher(ch)
}

// newProximityPublisher declares the fanout topology on ch. The channel is
// closed when any declaration fails.
func newProximityPublisher(ch amqpTopology) (*RabbitMQProximityPublisher, error) {
	if err := declareProximityTopology(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return &RabbitMQProximityPublisher{ch: ch}, nil
}

func declareProximityTopology(ch amqpTopology) error {
	if err := ch.ExchangeDeclare(proximityExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(proximityQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(proximityQueue, "", proximityExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (p *RabbitMQProximityPublisher) PublishProximity(ctx context.Context, prompt domain.ProximityPrompt) error {
	ce, err := NewCloudEvent(TypeProximityPrompt, newProximityMessage(prompt))
	if err != nil {
		return err
	}
	body, err := json.Marshal(ce)
	if err != nil {
		return fmt.Errorf("marshal proximity prompt: %w", err)
	}

	return p.ch.PublishWithContext(ctx, proximityExchange, "", false, false, amqp.Publishing{
		ContentType: "application/cloudevents+json",
		MessageId:   ce.ID,
		Type:        ce.Type,
		Timestamp:   ce.Time,
		Body:        body,
	})
}

func (p *RabbitMQProximityPublisher) Close() error {
	return p.ch.Close()
}
