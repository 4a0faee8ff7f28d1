package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// AMQPDispatcher publishes ledger events to a durable RabbitMQ queue.
type AMQPDispatcher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

var _ Dispatcher = (*AMQPDispatcher)(nil)

// NewAMQPDispatcher connects to the broker and declares the exchange, queue
// and binding.
func NewAMQPDispatcher(url, exchangeName, queueName string) (*AMQPDispatcher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	d := &AMQPDispatcher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := d.setup(); err != nil {
		d.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return d, nil
}

func (d *AMQPDispatcher) setup() error {
	err := d.channel.ExchangeDeclare(
		d.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = d.channel.QueueDeclare(
		d.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key is the queue name; the exchange is direct.
	err = d.channel.QueueBind(d.queueName, d.queueName, d.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// Publish sends the event as a persistent JSON message.
func (d *AMQPDispatcher) Publish(ctx context.Context, event *Event) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = d.channel.PublishWithContext(
		ctx,
		d.exchangeName,
		d.queueName,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	slog.InfoContext(ctx, "published ledger event",
		"type", event.Type,
		"colocation_id", event.ColocationID,
		"entity_id", event.EntityID)

	return nil
}

// Consume delivers queued events to the handler until the context is
// cancelled. A handler error nacks the message back onto the queue; an
// undecodable message is dropped.
func (d *AMQPDispatcher) Consume(ctx context.Context, handler func(*Event) error) error {
	msgs, err := d.channel.Consume(
		d.queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "consuming ledger events", "queue", d.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "stopping event consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			event, err := EventFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "failed to decode event", "error", err)
				delivery.Nack(false, false)
				continue
			}

			if err := handler(event); err != nil {
				slog.ErrorContext(ctx, "failed to handle event",
					"error", err,
					"type", event.Type,
					"entity_id", event.EntityID)
				delivery.Nack(false, true)
				continue
			}

			delivery.Ack(false)
		}
	}
}

func (d *AMQPDispatcher) Close() error {
	if d.channel != nil {
		d.channel.Close()
	}
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}
