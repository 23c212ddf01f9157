package messagequeue

import (
	"context"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// RabbitMQService implements the MessageQueue interface using RabbitMQ.
type RabbitMQService struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex // amqp.Channel is not safe for concurrent publishes
	logger  *zap.Logger
}

// NewRabbitMQServiceConfig contains options for creating a new RabbitMQService.
type NewRabbitMQServiceConfig struct {
	URL string
}

// NewRabbitMQService dials RabbitMQ and opens a channel.
func NewRabbitMQService(cfg NewRabbitMQServiceConfig, logger *zap.Logger) (*RabbitMQService, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a RabbitMQ channel: %w", err)
	}

	logger.Info("Connected to RabbitMQ and opened a channel")
	return &RabbitMQService{conn: conn, channel: ch, logger: logger}, nil
}

func (s *RabbitMQService) declare(queueName string) (amqp.Queue, error) {
	return s.channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
}

// Publish sends a persistent JSON message to a RabbitMQ queue.
func (s *RabbitMQService) Publish(ctx context.Context, queueName string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.declare(queueName)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	err = s.channel.Publish(
		"",     // exchange
		q.Name, // routing key (queue name)
		false,  // mandatory
		false,  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		})
	if err != nil {
		return fmt.Errorf("failed to publish to queue %s: %w", queueName, err)
	}
	s.logger.Debug("Published message", zap.String("queue", queueName), zap.Int("bytes", len(body)))
	return nil
}

// Consume delivers messages from a RabbitMQ queue to handler with manual
// acknowledgement. Messages whose handler fails are dropped, not requeued.
func (s *RabbitMQService) Consume(ctx context.Context, queueName string, handler Handler) error {
	s.mu.Lock()
	q, err := s.declare(queueName)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to declare queue %s for consuming: %w", queueName, err)
	}

	msgs, err := s.channel.Consume(
		q.Name, // queue
		"",     // consumer
		false,  // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to register a consumer for queue %s: %w", queueName, err)
	}

	s.logger.Info("Waiting for messages", zap.String("queue", q.Name))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel for queue %s closed", queueName)
			}
			if err := handler(ctx, d.Body); err != nil {
				s.logger.Warn("Message handler failed", zap.String("queue", queueName), zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Close closes the RabbitMQ channel and connection.
func (s *RabbitMQService) Close() error {
	var lastErr error
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			s.logger.Warn("Error closing RabbitMQ channel", zap.Error(err))
			lastErr = err
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.logger.Warn("Error closing RabbitMQ connection", zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}
