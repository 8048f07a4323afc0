package outbox

import "context"

// Event is a stored fact that still has to be announced on the bus.
type Event struct {
	ID         int
	RoutingKey string
	Payload    any
}

// Source lists events that were stored but never published. Implementations decide what
// "pending" means, usually a nullable sent_at column on the business table itself.
type Source interface {
	PendingEvents(ctx context.Context, limit int) ([]Event, error)
	MarkSent(ctx context.Context, id int) error
}

type Publisher interface {
	Publish(routingKey string, payload any) error
}
