package queue

import (
	"fmt"
	"time"

	"github.com/OFFIS-RIT/scorelink/internal/config"
	"github.com/OFFIS-RIT/scorelink/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

const (
	ResolveQueue = "resolve_queue"

	retrySuffix = "_retry"
	dlqSuffix   = "_dlq"
	retryTTL    = int32(10000)
)

// Publisher is the publishing side of an AMQP channel.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

type declarer interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
}

func Dial(cfg config.QueueConfig) (*amqp091.Connection, error) {
	conn, err := amqp091.Dial(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ at %s:%s: %w", cfg.Host, cfg.Port, err)
	}
	return conn, nil
}

// SetupQueues declares each work queue with its dead letter queue and its
// retry queue. Retried messages wait for the retry TTL and are then routed
// back to the work queue.
func SetupQueues(ch declarer, queueNames []string) error {
	for _, name := range queueNames {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare %s: %w", name, err)
		}

		dlqName := name + dlqSuffix
		if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare %s: %w", dlqName, err)
		}

		retryName := name + retrySuffix
		_, err := ch.QueueDeclare(
			retryName,
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             retryTTL,
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			return fmt.Errorf("declare %s: %w", retryName, err)
		}
		logger.Debug("[Worker] Queue ready", "queue", name)
	}
	return nil
}

// PublishFIFO publishes a persistent message on the default exchange.
func PublishFIFO(pub Publisher, queueName string, data []byte) error {
	return pub.Publish(
		"",
		queueName,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         data,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
}

func retries(headers amqp091.Table) int {
	switch v := headers["x-retries"].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// HandleProcessingError moves a failed message to the retry queue, or to the
// dead letter queue once it has been retried maxRetries times. The original
// delivery is acked when the move succeeds and requeued otherwise.
func HandleProcessingError(pub Publisher, msg amqp091.Delivery, queueName string, maxRetries int) {
	n := retries(msg.Headers)

	if n >= maxRetries {
		dlqName := queueName + dlqSuffix
		logger.Info("[Worker] Sending message to DLQ", "dlq", dlqName, "retries", n)
		pubErr := pub.Publish("", dlqName, false, false, amqp091.Publishing{
			ContentType: msg.ContentType,
			Body:        msg.Body,
			Headers:     msg.Headers,
		})
		if pubErr != nil {
			logger.Error("[Worker] Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			_ = msg.Nack(false, true)
			return
		}
		_ = msg.Ack(false)
		return
	}

	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["x-retries"] = int32(n + 1)

	retryName := queueName + retrySuffix
	pubErr := pub.Publish("", retryName, false, false, amqp091.Publishing{
		ContentType: msg.ContentType,
		Body:        msg.Body,
		Headers:     headers,
	})
	if pubErr != nil {
		logger.Error("[Worker] Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}
