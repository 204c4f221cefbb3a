package booking

import (
	"context"
	"log"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/kafka"
)

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Notifier publishes ledger events after a mutation has completed. Publish
// failures are logged and never undo the mutation.
type Notifier struct {
	producer           Producer
	ledgerTopic        string
	notificationsTopic string
}

type NotifierOption func(*Notifier)

func WithNotificationsTopic(topic string) NotifierOption {
	return func(n *Notifier) {
		n.notificationsTopic = topic
	}
}

// NewNotifier returns a Notifier; a nil producer makes it a no-op.
func NewNotifier(producer Producer, ledgerTopic string, opts ...NotifierOption) *Notifier {
	n := &Notifier{producer: producer, ledgerTopic: ledgerTopic}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// BookingEvent assembles an event from the booking and the entities it links.
func BookingEvent(eventType string, b domain.Booking, c domain.Customer, f domain.Flight) kafka.LedgerEvent {
	event := kafka.NewLedgerEvent(eventType)
	event.BookingID = b.ID
	event.CustomerID = b.CustomerID
	event.CustomerName = c.Name
	event.Email = c.Email
	event.FlightID = b.FlightID
	event.FlightNumber = f.FlightNumber
	if !f.DepartureDate.IsZero() {
		event.DepartureDate = f.DepartureDate.Format(domain.DateLayout)
	}
	event.BookingDate = b.BookingDate.Format(domain.DateLayout)
	event.Price = b.Price
	return event
}

func (n *Notifier) Notify(ctx context.Context, event kafka.LedgerEvent) {
	if n == nil || n.producer == nil || n.ledgerTopic == "" {
		return
	}
	if err := n.producer.Publish(ctx, n.ledgerTopic, event.Key(), event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %d: %v", event.Type, event.BookingID, err)
		return
	}
	if n.notificationsTopic != "" {
		if err := n.producer.Publish(ctx, n.notificationsTopic, event.Key(), event); err != nil {
			log.Printf("WARNING: failed to publish %s notification for booking %d: %v", event.Type, event.BookingID, err)
		}
	}
}
