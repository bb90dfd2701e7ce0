package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestRabbitMQPublisher_RoundTrip(t *testing.T) {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		t.Skip("RABBITMQ_URL not set")
	}

	pub, err := NewRabbitMQPublisher(url)
	if err != nil {
		t.Fatalf("NewRabbitMQPublisher: %v", err)
	}
	defer pub.Close()

	conn, err := amqp.Dial(url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		t.Fatalf("channel: %v", err)
	}
	if err := DeclareExchange(ch); err != nil {
		t.Fatal(err)
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := ch.QueueBind(q.Name, BindingKey, ExchangeName, false, nil); err != nil {
		t.Fatal(err)
	}
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pub.PublishPostChanged(ctx, NewPostChanged(TypePostUpdated, "p1", "s", "T")); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case d := <-deliveries:
		if d.RoutingKey != TypePostUpdated {
			t.Errorf("routing key %q", d.RoutingKey)
		}
		var e PostChanged
		if err := json.Unmarshal(d.Body, &e); err != nil || e.Payload.PostID != "p1" {
			t.Errorf("body %s (%v)", d.Body, err)
		}
	case <-ctx.Done():
		t.Fatal("no delivery")
	}

	if err := pub.PublishPostChanged(ctx, NewPostChanged("post.published", "p1", "", "")); err == nil {
		t.Error("unknown event type should be rejected")
	}

	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := pub.PublishPostChanged(ctx, NewPostChanged(TypePostDeleted, "p1", "", "")); !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("publish after close = %v", err)
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	if err := p.PublishPostChanged(context.Background(), NewPostChanged(TypePostCreated, "x", "", "")); err != nil {
		t.Errorf("noop publish: %v", err)
	}
}
