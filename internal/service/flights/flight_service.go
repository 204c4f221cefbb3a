package flights

import (
	"context"
	"log"
	"time"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/kafka"
	"github.com/Domenick1991/flightledger/internal/ledger"
	"github.com/Domenick1991/flightledger/internal/service/booking"
)

type FlightUseCase interface {
	ListActive(ctx context.Context) ([]domain.Flight, error)
	ListAll(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Passengers(ctx context.Context, id int64) ([]domain.Customer, error)
	Bookings(ctx context.Context, id int64) ([]domain.Booking, error)
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	Delete(ctx context.Context, id int64) ([]domain.Booking, error)
	Quote(ctx context.Context, id int64) (int64, error)
}

type CreateFlightInput struct {
	FlightNumber  string    `json:"flight_number"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureDate time.Time `json:"departure_date"`
	Seats         int       `json:"seats"`
	Price         int64     `json:"price"`
}

// FlightCache stores the active-flight list tagged with the ledger flight
// version it was read at. Get must report a miss for any other version.
type FlightCache interface {
	GetActiveFlights(ctx context.Context, today time.Time, version uint64) ([]domain.Flight, error)
	SetActiveFlights(ctx context.Context, today time.Time, version uint64, flights []domain.Flight) error
	InvalidateActiveFlights(ctx context.Context, today time.Time) error
}

type FlightService struct {
	ledger   *ledger.Ledger
	cache    FlightCache
	notifier *booking.Notifier
}

// NewFlightService builds the service; cache may be nil.
func NewFlightService(l *ledger.Ledger, cache FlightCache, notifier *booking.Notifier) *FlightService {
	return &FlightService{ledger: l, cache: cache, notifier: notifier}
}

// ListActive serves the active-flight list through the cache. A list written
// back after a concurrent create or delete carries the older version and is
// never served again.
func (s *FlightService) ListActive(ctx context.Context) ([]domain.Flight, error) {
	if s.cache == nil {
		return s.ledger.ActiveFlights(), nil
	}

	today := s.ledger.Today()
	if cached, err := s.cache.GetActiveFlights(ctx, today, s.ledger.FlightsVersion()); err == nil && cached != nil {
		return cached, nil
	}

	flights, version := s.ledger.ActiveFlightsVersion()
	_ = s.cache.SetActiveFlights(ctx, today, version, flights)
	return flights, nil
}

func (s *FlightService) ListAll(_ context.Context) ([]domain.Flight, error) {
	return s.ledger.Flights(), nil
}

func (s *FlightService) GetByID(_ context.Context, id int64) (*domain.Flight, error) {
	f, err := s.ledger.Flight(id)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FlightService) Passengers(_ context.Context, id int64) ([]domain.Customer, error) {
	return s.ledger.Passengers(id)
}

func (s *FlightService) Bookings(_ context.Context, id int64) ([]domain.Booking, error) {
	return s.ledger.FlightBookings(id)
}

func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	f, err := s.ledger.CreateFlight(domain.Flight{
		FlightNumber:  input.FlightNumber,
		Origin:        input.Origin,
		Destination:   input.Destination,
		DepartureDate: input.DepartureDate,
		Seats:         input.Seats,
		Price:         input.Price,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return &f, nil
}

// Delete removes the flight and its bookings, and tells every affected
// customer their booking was cancelled.
func (s *FlightService) Delete(ctx context.Context, id int64) ([]domain.Booking, error) {
	flight, err := s.ledger.Flight(id)
	if err != nil {
		return nil, err
	}
	removed, err := s.ledger.DeleteFlight(id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	for _, b := range removed {
		c, _ := s.ledger.Customer(b.CustomerID)
		event := booking.BookingEvent(kafka.EventBookingCancelled, b, c, flight)
		event.Reason = "flight withdrawn"
		s.notifier.Notify(ctx, event)
	}
	return removed, nil
}

func (s *FlightService) Quote(_ context.Context, id int64) (int64, error) {
	return s.ledger.Quote(id)
}

// ResetCache drops whatever list an earlier process left in the cache. Call it
// once after the ledger is loaded, since flight versions restart with the process.
func (s *FlightService) ResetCache(ctx context.Context) {
	s.invalidate(ctx)
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateActiveFlights(ctx, s.ledger.Today()); err != nil {
		log.Printf("WARNING: failed to invalidate active flights cache: %v", err)
	}
}

var _ FlightUseCase = (*FlightService)(nil)
