package services

// EventPublisher publishes domain events to the message broker. The event
// name (e.g. "user.registered") identifies the event type; where it lands is
// the publisher's concern. Satisfied by *rabbitmq.Client; tests substitute a
// mock.
type EventPublisher interface {
	Publish(eventType string, body []byte) error
}
