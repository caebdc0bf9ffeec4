package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind, durable, autoDelete, internal, noWait, args).Error(0)
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(ctx, exchange, key, mandatory, immediate, msg).Error(0)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func declaringChannel() *mockChannel {
	ch := new(mockChannel)
	ch.On("ExchangeDeclare", "crm", amqp.ExchangeTopic, true, false, false, false, amqp.Table(nil)).Return(nil)
	ch.On("Close").Return(nil)
	return ch
}

func TestNewPublisher(t *testing.T) {
	t.Run("declares topic exchange and keeps the channel", func(t *testing.T) {
		ch := declaringChannel()
		opens := 0

		p, err := newPublisher(func() (amqpChannel, error) { opens++; return ch, nil }, "crm", testLogger())

		require.NoError(t, err)
		assert.Equal(t, 1, opens)
		ch.AssertCalled(t, "ExchangeDeclare", "crm", amqp.ExchangeTopic, true, false, false, false, amqp.Table(nil))
		ch.AssertNotCalled(t, "Close")
		require.NoError(t, p.Close())
		require.NoError(t, p.Close(), "second close is a no-op")
		ch.AssertNumberOfCalls(t, "Close", 1)
	})

	t.Run("rejects empty exchange name", func(t *testing.T) {
		_, err := newPublisher(func() (amqpChannel, error) { return nil, nil }, "", testLogger())
		assert.EqualError(t, err, "RabbitMQ exchange name cannot be empty")
	})

	t.Run("propagates channel open failure", func(t *testing.T) {
		_, err := newPublisher(func() (amqpChannel, error) { return nil, errors.New("closed") }, "crm", testLogger())
		assert.ErrorContains(t, err, "failed to open channel")
	})

	t.Run("closes channel when declaration fails", func(t *testing.T) {
		ch := new(mockChannel)
		ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("access refused"))
		ch.On("Close").Return(nil).Once()

		_, err := newPublisher(func() (amqpChannel, error) { return ch, nil }, "crm", testLogger())

		assert.ErrorContains(t, err, "failed to declare exchange 'crm'")
		ch.AssertExpectations(t)
	})
}

func TestPublishCustomerCreated(t *testing.T) {
	ch := declaringChannel()

	var published amqp.Publishing
	ch.On("PublishWithContext", mock.Anything, "crm", "customer.created", false, false, mock.AnythingOfType("amqp091.Publishing")).
		Run(func(args mock.Arguments) { published = args.Get(5).(amqp.Publishing) }).
		Return(nil).Once()

	p, err := newPublisher(func() (amqpChannel, error) { return ch, nil }, "crm", testLogger())
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	evt := CustomerCreatedEvent{
		Timestamp: time.Now(),
		Payload:   CustomerEventPayload{CustomerID: 11, RepID: 7, Username: "acme"},
	}
	require.NoError(t, p.PublishCustomerCreated(ctx, evt))

	assert.Equal(t, "application/json", published.ContentType)
	assert.Equal(t, publisherAppID, published.AppId)
	assert.Equal(t, "customer.created", published.Type)
	assert.Equal(t, "req-42", published.CorrelationId)
	assert.NotEmpty(t, published.MessageId)

	var decoded CustomerCreatedEvent
	require.NoError(t, json.Unmarshal(published.Body, &decoded))
	assert.Equal(t, int64(11), decoded.Payload.CustomerID)
	ch.AssertExpectations(t)
}

func TestPublishReopensChannelAfterFailure(t *testing.T) {
	first := declaringChannel()
	first.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("channel closed")).Once()

	second := new(mockChannel)
	second.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	channels := []amqpChannel{first, second}
	open := func() (amqpChannel, error) {
		ch := channels[0]
		channels = channels[1:]
		return ch, nil
	}

	p, err := newPublisher(open, "crm", testLogger())
	require.NoError(t, err)

	ctx := context.Background()
	assert.ErrorContains(t, p.PublishCustomerCreated(ctx, CustomerCreatedEvent{}), "failed to publish message")
	require.NoError(t, p.PublishCustomerCreated(ctx, CustomerCreatedEvent{}))

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}
