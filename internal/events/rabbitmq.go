package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "cloudslate.events"
	// BindingKey matches every post.* routing key.
	BindingKey = "post.*"
	QueueName  = "sitemap.post_changed"
)

var ErrPublisherClosed = errors.New("publisher closed")

// RabbitMQPublisher publishes post events in confirm mode and waits for the
// broker to acknowledge each one.
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
	once    sync.Once
}

var _ Publisher = (*RabbitMQPublisher)(nil)

func NewRabbitMQPublisher(url string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := DeclareExchange(ch); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}
	return &RabbitMQPublisher{conn: conn, channel: ch}, nil
}

// DeclareExchange declares the durable topic exchange post events go through.
func DeclareExchange(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	return nil
}

// DeclareSitemapQueue declares the exchange and the durable sitemap queue
// bound to every post event.
func DeclareSitemapQueue(ch *amqp.Channel) (amqp.Queue, error) {
	if err := DeclareExchange(ch); err != nil {
		return amqp.Queue{}, err
	}
	q, err := ch.QueueDeclare(QueueName, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, BindingKey, ExchangeName, false, nil); err != nil {
		return amqp.Queue{}, fmt.Errorf("bind queue: %w", err)
	}
	return q, nil
}

// PublishPostChanged routes e by its type, e.g. post.updated.
func (p *RabbitMQPublisher) PublishPostChanged(ctx context.Context, e PostChanged) error {
	if !IsPostChange(e.Type) {
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return ErrPublisherClosed
	}
	confirm, err := p.channel.PublishWithDeferredConfirmWithContext(ctx, ExchangeName, e.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("await confirm: %w", err)
	}
	if !acked {
		return fmt.Errorf("broker rejected %s for post %s", e.Type, e.Payload.PostID)
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	var err error
	p.once.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.channel != nil {
			err = p.channel.Close()
			p.channel = nil
		}
		if p.conn != nil {
			err = errors.Join(err, p.conn.Close())
			p.conn = nil
		}
	})
	return err
}
