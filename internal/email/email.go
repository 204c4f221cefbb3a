package email

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Domenick1991/flightledger/config"
	"github.com/Domenick1991/flightledger/internal/kafka"
	"github.com/mailersend/mailersend-go"
)

// Sender notifies customers about changes to their bookings. Without an API
// key it only logs what it would have sent.
type Sender struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewSender(cfg config.MailConfig) *Sender {
	s := &Sender{from: mailersend.From{Name: cfg.FromName, Email: cfg.FromEmail}}
	if cfg.APIKey != "" {
		s.client = mailersend.NewMailersend(cfg.APIKey)
	}
	return s
}

func (s *Sender) Send(ctx context.Context, event kafka.LedgerEvent) error {
	if event.Email == "" {
		log.Printf("skip %s for booking %d: customer has no email", event.Type, event.BookingID)
		return nil
	}
	subject, body := render(event)

	if s.client == nil {
		log.Printf("send email to %s: %s", event.Email, subject)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	message := s.client.Email.NewMessage()
	message.SetFrom(s.from)
	message.SetRecipients([]mailersend.Recipient{{Name: event.CustomerName, Email: event.Email}})
	message.SetSubject(subject)
	message.SetText(body)

	res, err := s.client.Email.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	log.Printf("email sent for booking %d, message id %s", event.BookingID, res.Header.Get("X-Message-Id"))
	return nil
}

// Handler sends the email for each event, retrying failed sends. An error
// means the event was not delivered and must not be acknowledged.
func (s *Sender) Handler(attempts int, backoff time.Duration) func(context.Context, kafka.LedgerEvent) error {
	return kafka.Retry(s.Send, attempts, backoff)
}

func render(e kafka.LedgerEvent) (subject, body string) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hello %s,\n\n", e.CustomerName)

	switch e.Type {
	case kafka.EventBookingCreated:
		subject = fmt.Sprintf("Booking #%d confirmed: flight %s", e.BookingID, e.FlightNumber)
		fmt.Fprintf(&sb, "your booking on flight %s departing %s is confirmed.\n", e.FlightNumber, e.DepartureDate)
	case kafka.EventBookingRebooked:
		subject = fmt.Sprintf("Booking #%d changed: flight %s", e.BookingID, e.FlightNumber)
		fmt.Fprintf(&sb, "your booking on flight %s now has booking date %s.\n", e.FlightNumber, e.BookingDate)
	case kafka.EventBookingCancelled:
		subject = fmt.Sprintf("Booking #%d cancelled: flight %s", e.BookingID, e.FlightNumber)
		fmt.Fprintf(&sb, "your booking on flight %s departing %s has been cancelled.\n", e.FlightNumber, e.DepartureDate)
		if e.Reason != "" {
			fmt.Fprintf(&sb, "Reason: %s.\n", e.Reason)
		}
	default:
		subject = fmt.Sprintf("Booking #%d updated", e.BookingID)
		sb.WriteString("your booking has been updated.\n")
	}
	fmt.Fprintf(&sb, "Price: %d\n", e.Price)
	return subject, sb.String()
}
