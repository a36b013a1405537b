// Package queue publishes report events to the external analysis pipeline.
// Publishing is best-effort: a broker failure never fails the write path.
package queue

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// Publisher pushes payloads onto a named queue.
type Publisher interface {
	Publish(queueName string, payload interface{}) error
	Close() error
}

// AMQPPublisher is a Publisher backed by a RabbitMQ channel.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPPublisher connects to the broker and opens a channel.
func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &AMQPPublisher{conn: conn, channel: channel}, nil
}

// Publish declares the queue and pushes one persistent JSON message.
func (p *AMQPPublisher) Publish(queueName string, payload interface{}) error {
	if _, err := p.channel.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	err = p.channel.Publish("", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Close shuts the channel and connection down.
func (p *AMQPPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
