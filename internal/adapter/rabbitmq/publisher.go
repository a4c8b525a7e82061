package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/polkiloo/foodrush/internal/realtime"
)

// Publisher forwards realtime envelopes to an external broker.
type Publisher interface {
	Publish(ctx context.Context, env realtime.Envelope) error
	Close() error
}

// ErrClosed is returned when publishing through a closed client.
var ErrClosed = errors.New("rabbitmq publisher closed")

type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Client publishes envelopes to a durable fanout exchange.
// The routing key is the room key, or "broadcast" for broadcast events.
type Client struct {
	ch       channel
	conn     io.Closer
	exchange string
	logger   *slog.Logger
	now      func() time.Time

	// amqp channels must not be used for concurrent publishes
	mu     sync.Mutex
	closed bool
}

// Dial connects to url and declares exchange.
func Dial(url, exchange string, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	client, err := newClient(ch, conn, exchange, logger)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return client, nil
}

func newClient(ch channel, conn io.Closer, exchange string, logger *slog.Logger) (*Client, error) {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Client{ch: ch, conn: conn, exchange: exchange, logger: logger, now: time.Now}, nil
}

// Publish sends env as a persistent JSON message.
func (c *Client) Publish(ctx context.Context, env realtime.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	key := env.Room
	if key == "" {
		key = realtime.Broadcast.String()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	err = c.ch.PublishWithContext(ctx, c.exchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    c.now().UTC(),
		Type:         env.Event,
		Headers:      amqp.Table{"event": env.Event},
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", env.Event, key, err)
	}
	return nil
}

// Close releases the channel and connection. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	if c.ch != nil {
		errs = append(errs, c.ch.Close())
	}
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
	}
	c.logger.Info("rabbitmq publisher closed", slog.String("exchange", c.exchange))
	return errors.Join(errs...)
}

// Nop discards every envelope. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, realtime.Envelope) error { return nil }

func (Nop) Close() error { return nil }
