package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// AMQP publishes events to a durable fanout exchange.
//
// Every queue bound to the exchange receives every event.
type AMQP struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

// NewAMQP connects to the broker at url and declares the exchange.
func NewAMQP(url, exchange string) (*AMQP, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQP{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

func (a *AMQP) Notify(ctx context.Context, event Event) error {
	body, err := event.JSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = a.channel.PublishWithContext(
		ctx,
		a.exchange, // exchange
		"",         // routing key, ignored for fanout exchanges
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    event.ID.String(),
			Timestamp:    event.Time,
			Type:         event.Operation,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	log.Debug().Str("exchange", a.exchange).Str("event", event.ID.String()).Str("operation", event.Operation).Msg("AMQP notification")
	return nil
}

// Close closes the channel and the connection.
func (a *AMQP) Close() error {
	if a.channel != nil {
		a.channel.Close()
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
