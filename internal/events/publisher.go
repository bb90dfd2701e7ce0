package events

import "context"

// Publisher announces changes to the post collection.
type Publisher interface {
	PublishPostChanged(ctx context.Context, e PostChanged) error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

var _ Publisher = NoopPublisher{}

func (NoopPublisher) PublishPostChanged(context.Context, PostChanged) error {
	return nil
}
