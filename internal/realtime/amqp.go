package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// ExchangeName is the fanout exchange every event goes to.
const ExchangeName = "dinepos.realtime"

type amqpPublisher struct {
	url string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPPublisher dials the broker, retrying a few times, and declares the exchange.
func NewAMQPPublisher(url string) (Publisher, error) {
	p := &amqpPublisher{url: url}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *amqpPublisher) connect() error {
	const maxRetries = 5
	var err error

	for i := 0; i < maxRetries; i++ {
		if err = p.dial(); err == nil {
			return nil
		}
		if i < maxRetries-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			logrus.WithError(err).WithField("retry_in", wait).Warn("failed to connect to RabbitMQ")
			time.Sleep(wait)
		}
	}
	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

func (p *amqpPublisher) dial() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	err = ch.ExchangeDeclare(
		ExchangeName, // name
		"fanout",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare %s exchange: %w", ExchangeName, err)
	}
	p.conn, p.channel = conn, ch
	return nil
}

// RoutingKey is <table>.<type>, e.g. orders.update.
func RoutingKey(event Event) string {
	return strings.ToLower(event.Table + "." + event.Type)
}

func (p *amqpPublisher) Publish(ctx context.Context, event Event) error {
	event = stamp(event)
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		if err := p.dial(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, ExchangeName, RoutingKey(event), false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Transient,
		Timestamp:    event.Timestamp,
		Type:         event.Type,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn.Close()
	}
	return nil
}
