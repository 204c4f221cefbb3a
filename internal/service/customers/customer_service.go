package customers

import (
	"context"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/kafka"
	"github.com/Domenick1991/flightledger/internal/ledger"
	"github.com/Domenick1991/flightledger/internal/service/booking"
)

type CustomerUseCase interface {
	List(ctx context.Context) ([]domain.Customer, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	Create(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error)
	Delete(ctx context.Context, id int64) ([]domain.Booking, error)
	Bookings(ctx context.Context, id int64) ([]domain.Booking, error)
}

type CreateCustomerInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Balance int64  `json:"balance"`
}

type CustomerService struct {
	ledger   *ledger.Ledger
	notifier *booking.Notifier
}

func NewCustomerService(l *ledger.Ledger, notifier *booking.Notifier) *CustomerService {
	return &CustomerService{ledger: l, notifier: notifier}
}

func (s *CustomerService) List(_ context.Context) ([]domain.Customer, error) {
	return s.ledger.Customers(), nil
}

func (s *CustomerService) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	c, err := s.ledger.Customer(id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CustomerService) Create(_ context.Context, input CreateCustomerInput) (*domain.Customer, error) {
	c, err := s.ledger.CreateCustomer(domain.Customer{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		Balance: input.Balance,
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes the customer together with every booking they held.
func (s *CustomerService) Delete(ctx context.Context, id int64) ([]domain.Booking, error) {
	customer, err := s.ledger.Customer(id)
	if err != nil {
		return nil, err
	}
	removed, err := s.ledger.DeleteCustomer(id)
	if err != nil {
		return nil, err
	}

	for _, b := range removed {
		f, _ := s.ledger.Flight(b.FlightID)
		event := booking.BookingEvent(kafka.EventBookingCancelled, b, customer, f)
		event.Reason = "customer removed"
		s.notifier.Notify(ctx, event)
	}
	return removed, nil
}

func (s *CustomerService) Bookings(_ context.Context, id int64) ([]domain.Booking, error) {
	return s.ledger.CustomerBookings(id)
}

var _ CustomerUseCase = (*CustomerService)(nil)
