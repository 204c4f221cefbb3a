package booking

import (
	"context"
	"time"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/kafka"
	"github.com/Domenick1991/flightledger/internal/ledger"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, customerID, flightID int64) (*domain.Booking, error)
	RebookBooking(ctx context.Context, bookingID int64, newDate time.Time) (*domain.Booking, error)
	EditBooking(ctx context.Context, customerID, flightID int64, newDate time.Time) (*domain.Booking, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	FindBooking(ctx context.Context, customerID, flightID int64) (*domain.Booking, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
}

type CreateBookingInput struct {
	CustomerID int64 `json:"customer_id"`
	FlightID   int64 `json:"flight_id"`
	// Date defaults to the ledger's reference date.
	Date time.Time `json:"date"`
}

type BookingService struct {
	ledger   *ledger.Ledger
	notifier *Notifier
}

func NewBookingService(l *ledger.Ledger, notifier *Notifier) *BookingService {
	return &BookingService{ledger: l, notifier: notifier}
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	date := input.Date
	if date.IsZero() {
		date = s.ledger.Today()
	}

	b, err := s.ledger.AddBooking(input.CustomerID, input.FlightID, date)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventBookingCreated, b)
	return &b, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, customerID, flightID int64) (*domain.Booking, error) {
	b, err := s.ledger.CancelBooking(customerID, flightID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventBookingCancelled, b)
	return &b, nil
}

func (s *BookingService) RebookBooking(ctx context.Context, bookingID int64, newDate time.Time) (*domain.Booking, error) {
	b, err := s.ledger.RebookBooking(bookingID, newDate)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventBookingRebooked, b)
	return &b, nil
}

func (s *BookingService) EditBooking(ctx context.Context, customerID, flightID int64, newDate time.Time) (*domain.Booking, error) {
	b, err := s.ledger.EditBooking(customerID, flightID, newDate)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventBookingRebooked, b)
	return &b, nil
}

func (s *BookingService) GetBooking(_ context.Context, id int64) (*domain.Booking, error) {
	b, err := s.ledger.Booking(id)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindBooking returns ledger.ErrNotFound when the customer has no booking on the flight.
func (s *BookingService) FindBooking(_ context.Context, customerID, flightID int64) (*domain.Booking, error) {
	b, ok := s.ledger.BookingFor(customerID, flightID)
	if !ok {
		return nil, &ledger.Error{Kind: ledger.ErrNotFound, Entity: ledger.EntityBooking, Detail: "no booking for this customer and flight"}
	}
	return &b, nil
}

func (s *BookingService) ListBookings(_ context.Context) ([]domain.Booking, error) {
	return s.ledger.Bookings(), nil
}

// The customer and flight still exist right after a booking mutation; if a
// concurrent delete removed one, the event goes out with IDs only.
func (s *BookingService) publish(ctx context.Context, eventType string, b domain.Booking) {
	c, _ := s.ledger.Customer(b.CustomerID)
	f, _ := s.ledger.Flight(b.FlightID)
	s.notifier.Notify(ctx, BookingEvent(eventType, b, c, f))
}

var _ BookingUseCase = (*BookingService)(nil)
