package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// AMQPNotifier publishes notifications as persistent JSON messages on a
// durable queue. A mail worker consumes them. A connection or channel lost
// to a broker restart is redialled on the next publish.
type AMQPNotifier struct {
	mu      sync.Mutex
	url     string
	conn    *amqp091.Connection
	channel *amqp091.Channel
	queue   string
	logger  *zap.Logger
}

func NewAMQPNotifier(url, queue string, logger *zap.Logger) (*AMQPNotifier, error) {
	n := &AMQPNotifier{
		url:    url,
		queue:  queue,
		logger: logger,
	}
	if err := n.connect(); err != nil {
		return nil, err
	}
	return n, nil
}

// connect dials the broker and declares the queue. Callers hold mu or own n
// exclusively.
func (n *AMQPNotifier) connect() error {
	conn, err := amqp091.Dial(n.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		n.queue, // name
		true,    // durable
		false,   // delete when unused
		false,   // exclusive
		false,   // no-wait
		nil,     // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("declare queue: %w", err)
	}

	n.conn = conn
	n.channel = channel
	return nil
}

// reset drops a dead connection so the next publish redials.
func (n *AMQPNotifier) reset() {
	if n.channel != nil {
		n.channel.Close()
		n.channel = nil
	}
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
	}
}

func (n *AMQPNotifier) ready() bool {
	return n.conn != nil && !n.conn.IsClosed() && n.channel != nil && !n.channel.IsClosed()
}

func (n *AMQPNotifier) Welcome(ctx context.Context, msg WelcomeMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// amqp channels are not safe for concurrent publishing
	n.mu.Lock()
	defer n.mu.Unlock()

	err = n.publish(ctx, body)
	if errors.Is(err, amqp091.ErrClosed) {
		n.reset()
		err = n.publish(ctx, body)
	}
	if err != nil {
		return err
	}

	n.logger.Debug("published welcome notification",
		zap.String("user_id", msg.UserID),
		zap.String("queue", n.queue),
	)
	return nil
}

func (n *AMQPNotifier) publish(ctx context.Context, body []byte) error {
	if !n.ready() {
		n.reset()
		n.logger.Info("reconnecting to AMQP broker", zap.String("queue", n.queue))
		if err := n.connect(); err != nil {
			return err
		}
	}

	err := n.channel.PublishWithContext(
		ctx,
		"",      // default exchange
		n.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Type:         "welcome",
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

func (n *AMQPNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var err error
	if n.channel != nil {
		n.channel.Close()
		n.channel = nil
	}
	if n.conn != nil {
		err = n.conn.Close()
		n.conn = nil
	}
	return err
}
