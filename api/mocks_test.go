package api

import (
	"context"
	"time"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/service/booking"
	"github.com/Domenick1991/flightledger/internal/service/customers"
	"github.com/Domenick1991/flightledger/internal/service/flights"
	"github.com/stretchr/testify/mock"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) ListActive(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) ListAll(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Passengers(ctx context.Context, id int64) ([]domain.Customer, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockFlightUseCase) Bookings(ctx context.Context, id int64) ([]domain.Booking, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockFlightUseCase) Create(ctx context.Context, input flights.CreateFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Delete(ctx context.Context, id int64) ([]domain.Booking, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockFlightUseCase) Quote(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockCustomerUseCase is a mock implementation of customers.CustomerUseCase
type MockCustomerUseCase struct {
	mock.Mock
}

func (m *MockCustomerUseCase) List(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockCustomerUseCase) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerUseCase) Create(ctx context.Context, input customers.CreateCustomerInput) (*domain.Customer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerUseCase) Delete(ctx context.Context, id int64) ([]domain.Booking, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockCustomerUseCase) Bookings(ctx context.Context, id int64) ([]domain.Booking, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	return bookingResult(args)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, customerID, flightID int64) (*domain.Booking, error) {
	args := m.Called(ctx, customerID, flightID)
	return bookingResult(args)
}

func (m *MockBookingUseCase) RebookBooking(ctx context.Context, bookingID int64, newDate time.Time) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, newDate)
	return bookingResult(args)
}

func (m *MockBookingUseCase) EditBooking(ctx context.Context, customerID, flightID int64, newDate time.Time) (*domain.Booking, error) {
	args := m.Called(ctx, customerID, flightID, newDate)
	return bookingResult(args)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	return bookingResult(args)
}

func (m *MockBookingUseCase) FindBooking(ctx context.Context, customerID, flightID int64) (*domain.Booking, error) {
	args := m.Called(ctx, customerID, flightID)
	return bookingResult(args)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func bookingResult(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
