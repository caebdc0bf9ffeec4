package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	routingKeyCustomerCreated = "customer.created"
	publisherAppID            = "crm-devbackend"
)

type EventPublisher interface {
	PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error
}

// amqpChannel is the subset of *amqp.Channel the publisher needs.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type channelOpener func() (amqpChannel, error)

// RabbitMQEventPublisher publishes JSON events on a durable topic exchange.
// It keeps one channel open and replaces it after a failed publish.
type RabbitMQEventPublisher struct {
	open         channelOpener
	exchangeName string
	logger       *slog.Logger

	mu      sync.Mutex
	channel amqpChannel
}

func NewRabbitMQEventPublisher(conn *amqp.Connection, exchangeName string, logger *slog.Logger) (*RabbitMQEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection cannot be nil")
	}
	return newPublisher(func() (amqpChannel, error) { return conn.Channel() }, exchangeName, logger)
}

func newPublisher(open channelOpener, exchangeName string, logger *slog.Logger) (*RabbitMQEventPublisher, error) {
	if exchangeName == "" {
		return nil, fmt.Errorf("RabbitMQ exchange name cannot be empty")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	ch, err := open()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchangeName, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchangeName, err)
	}

	logger = logger.With("component", "RabbitMQEventPublisher", "exchange", exchangeName)
	logger.Info("Exchange ready", "type", amqp.ExchangeTopic)

	return &RabbitMQEventPublisher{
		open:         open,
		exchangeName: exchangeName,
		logger:       logger,
		channel:      ch,
	}, nil
}

func (p *RabbitMQEventPublisher) PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error {
	return p.publish(ctx, routingKeyCustomerCreated, event)
}

func (p *RabbitMQEventPublisher) publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", routingKey, err)
	}

	msg := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now().UTC(),
		MessageId:     uuid.NewString(),
		CorrelationId: middleware.GetReqID(ctx),
		Type:          routingKey,
		AppId:         publisherAppID,
		Body:          body,
	}
	logger := p.logger.With(slog.String("routingKey", routingKey), slog.String("messageID", msg.MessageId))

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		ch, err := p.open()
		if err != nil {
			logger.ErrorContext(ctx, "Failed to reopen RabbitMQ channel", slog.Any("error", err))
			return fmt.Errorf("failed to open channel: %w", err)
		}
		p.channel = ch
	}

	if err := p.channel.PublishWithContext(ctx, p.exchangeName, routingKey, false, false, msg); err != nil {
		logger.ErrorContext(ctx, "Publish failed; channel will be reopened", slog.Any("error", err))
		p.channel.Close()
		p.channel = nil
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logger.InfoContext(ctx, "Event published", "bodySize", len(body))
	return nil
}

// Close releases the publishing channel. The connection stays open.
func (p *RabbitMQEventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return nil
	}
	err := p.channel.Close()
	p.channel = nil
	return err
}

var _ EventPublisher = (*RabbitMQEventPublisher)(nil)

// NopPublisher drops events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishCustomerCreated(context.Context, CustomerCreatedEvent) error { return nil }

var _ EventPublisher = NopPublisher{}
