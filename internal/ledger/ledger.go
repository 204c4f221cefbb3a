// Package ledger is the in-memory store of flights, customers and the bookings
// linking them. All mutations run under one lock so that the canonical maps
// and the relation index are never observed out of step.
package ledger

import (
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/pricing"
)

// Ledger owns every entity and the ID sequences. It uses a fixed reference
// date ("today") for all date validation and pricing.
type Ledger struct {
	mu     sync.RWMutex
	today  time.Time
	logger *slog.Logger

	flights   map[int64]*domain.Flight
	customers map[int64]*domain.Customer
	bookings  map[int64]*domain.Booking
	idx       *index

	lastFlightID   int64
	lastCustomerID int64
	lastBookingID  int64

	// flightsVersion moves on every change to the flight set.
	flightsVersion uint64
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates an empty ledger whose reference date is the calendar day of today.
func New(today time.Time, opts ...Option) *Ledger {
	l := &Ledger{
		today:     domain.DateOf(today),
		logger:    slog.Default(),
		flights:   make(map[int64]*domain.Flight),
		customers: make(map[int64]*domain.Customer),
		bookings:  make(map[int64]*domain.Booking),
		idx:       newIndex(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Today returns the reference date.
func (l *Ledger) Today() time.Time {
	return l.today
}

// AddFlight inserts a flight under its own ID.
func (l *Ledger) AddFlight(f domain.Flight) (domain.Flight, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.insertFlight(&f); err != nil {
		return domain.Flight{}, err
	}
	l.logger.Debug("flight added", "flight_id", f.ID, "flight_number", f.FlightNumber)
	return f, nil
}

// CreateFlight allocates the next flight ID and inserts the flight.
func (l *Ledger) CreateFlight(f domain.Flight) (domain.Flight, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f.ID = l.lastFlightID + 1
	if err := l.insertFlight(&f); err != nil {
		return domain.Flight{}, err
	}
	l.logger.Debug("flight created", "flight_id", f.ID, "flight_number", f.FlightNumber)
	return f, nil
}

func (l *Ledger) insertFlight(f *domain.Flight) error {
	if err := validateFlight(f); err != nil {
		return err
	}
	if _, exists := l.flights[f.ID]; exists {
		return duplicateID(EntityFlight, f.ID)
	}
	f.DepartureDate = domain.DateOf(f.DepartureDate)
	for _, existing := range l.flights {
		if existing.FlightNumber == f.FlightNumber && existing.DepartureDate.Equal(f.DepartureDate) {
			return &Error{
				Kind:   ErrScheduleConflict,
				Entity: EntityFlight,
				ID:     existing.ID,
				Detail: f.FlightNumber + " on " + f.DepartureDate.Format(domain.DateLayout),
			}
		}
	}

	stored := *f
	l.flights[f.ID] = &stored
	l.lastFlightID = max(l.lastFlightID, f.ID)
	l.flightsVersion++
	return nil
}

func validateFlight(f *domain.Flight) error {
	switch {
	case f.ID <= 0:
		return ValidationError{Field: "id", Message: "must be positive"}
	case strings.TrimSpace(f.FlightNumber) == "":
		return ValidationError{Field: "flight_number", Message: "is required"}
	case strings.TrimSpace(f.Origin) == "":
		return ValidationError{Field: "origin", Message: "is required"}
	case strings.TrimSpace(f.Destination) == "":
		return ValidationError{Field: "destination", Message: "is required"}
	case f.DepartureDate.IsZero():
		return ValidationError{Field: "departure_date", Message: "is required"}
	case f.Seats <= 0:
		return ValidationError{Field: "seats", Message: "must be positive"}
	case f.Price < 0:
		return ValidationError{Field: "price", Message: "must not be negative"}
	}
	return nil
}

// AddCustomer inserts a customer under its own ID.
func (l *Ledger) AddCustomer(c domain.Customer) (domain.Customer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.insertCustomer(&c); err != nil {
		return domain.Customer{}, err
	}
	l.logger.Debug("customer added", "customer_id", c.ID)
	return c, nil
}

// CreateCustomer allocates the next customer ID and inserts the customer.
func (l *Ledger) CreateCustomer(c domain.Customer) (domain.Customer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c.ID = l.lastCustomerID + 1
	if err := l.insertCustomer(&c); err != nil {
		return domain.Customer{}, err
	}
	l.logger.Debug("customer created", "customer_id", c.ID)
	return c, nil
}

func (l *Ledger) insertCustomer(c *domain.Customer) error {
	if c.ID <= 0 {
		return ValidationError{Field: "id", Message: "must be positive"}
	}
	if strings.TrimSpace(c.Name) == "" {
		return ValidationError{Field: "name", Message: "is required"}
	}
	if _, exists := l.customers[c.ID]; exists {
		return duplicateID(EntityCustomer, c.ID)
	}

	stored := *c
	l.customers[c.ID] = &stored
	l.lastCustomerID = max(l.lastCustomerID, c.ID)
	return nil
}

// AddBooking books the customer on the flight for the given date. The price
// is computed once here and cached on the booking.
func (l *Ledger) AddBooking(customerID, flightID int64, date time.Time) (domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.customers[customerID]; !ok {
		return domain.Booking{}, notFound(EntityCustomer, customerID)
	}
	flight, ok := l.flights[flightID]
	if !ok {
		return domain.Booking{}, notFound(EntityFlight, flightID)
	}
	date = domain.DateOf(date)
	if err := l.checkBookable(flight, date); err != nil {
		return domain.Booking{}, err
	}
	if existing, booked := l.idx.forPair(customerID, flightID); booked {
		return domain.Booking{}, &Error{Kind: ErrAlreadyBooked, Entity: EntityBooking, ID: existing}
	}

	l.lastBookingID++
	b := &domain.Booking{
		ID:          l.lastBookingID,
		CustomerID:  customerID,
		FlightID:    flightID,
		BookingDate: date,
		Price:       pricing.BookingPrice(domain.DaysBetween(l.today, flight.DepartureDate), flight.Seats),
	}
	l.bookings[b.ID] = b
	l.idx.link(b)

	l.logger.Debug("booking added", "booking_id", b.ID, "customer_id", customerID, "flight_id", flightID, "price", b.Price)
	return *b, nil
}

func (l *Ledger) checkBookable(flight *domain.Flight, date time.Time) error {
	if date.Before(l.today) || date.After(flight.DepartureDate) {
		return &Error{
			Kind:   ErrInvalidDate,
			Entity: EntityFlight,
			ID:     flight.ID,
			Detail: date.Format(domain.DateLayout) + " not within " +
				l.today.Format(domain.DateLayout) + ".." + flight.DepartureDate.Format(domain.DateLayout),
		}
	}
	return nil
}

// CancelBooking removes the customer's booking on the flight.
func (l *Ledger) CancelBooking(customerID, flightID int64) (domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := l.pairBooking(customerID, flightID)
	if err != nil {
		return domain.Booking{}, err
	}
	l.removeBooking(b)

	l.logger.Debug("booking cancelled", "booking_id", b.ID, "customer_id", customerID, "flight_id", flightID)
	return *b, nil
}

func (l *Ledger) pairBooking(customerID, flightID int64) (*domain.Booking, error) {
	if _, ok := l.customers[customerID]; !ok {
		return nil, notFound(EntityCustomer, customerID)
	}
	if _, ok := l.flights[flightID]; !ok {
		return nil, notFound(EntityFlight, flightID)
	}
	id, ok := l.idx.forPair(customerID, flightID)
	if !ok {
		return nil, &Error{Kind: ErrNotFound, Entity: EntityBooking, Detail: "no booking for this customer and flight"}
	}
	return l.bookings[id], nil
}

func (l *Ledger) removeBooking(b *domain.Booking) {
	delete(l.bookings, b.ID)
	l.idx.unlink(b)
}

// RebookBooking moves a booking to newDate and adds the rebooking fee for the
// days left until departure to its cached price.
func (l *Ledger) RebookBooking(bookingID int64, newDate time.Time) (domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bookings[bookingID]
	if !ok {
		return domain.Booking{}, notFound(EntityBooking, bookingID)
	}
	return l.rebook(b, newDate)
}

// EditBooking rebooks the customer's booking on the flight.
func (l *Ledger) EditBooking(customerID, flightID int64, newDate time.Time) (domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := l.pairBooking(customerID, flightID)
	if err != nil {
		return domain.Booking{}, err
	}
	return l.rebook(b, newDate)
}

func (l *Ledger) rebook(b *domain.Booking, newDate time.Time) (domain.Booking, error) {
	flight := l.flights[b.FlightID]
	newDate = domain.DateOf(newDate)
	if err := l.checkBookable(flight, newDate); err != nil {
		return domain.Booking{}, err
	}

	fee := pricing.RebookFee(domain.DaysBetween(l.today, flight.DepartureDate))
	b.BookingDate = newDate
	b.Price += fee

	l.logger.Debug("booking rebooked", "booking_id", b.ID, "fee", fee, "price", b.Price)
	return *b, nil
}

// DeleteFlight removes the flight and every booking on it. The removed
// bookings are returned in ID order.
func (l *Ledger) DeleteFlight(flightID int64) ([]domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.flights[flightID]; !ok {
		return nil, notFound(EntityFlight, flightID)
	}
	removed := l.cascade(l.idx.flightBookings(flightID))
	delete(l.flights, flightID)
	l.flightsVersion++

	l.logger.Debug("flight deleted", "flight_id", flightID, "bookings_removed", len(removed))
	return removed, nil
}

// DeleteCustomer removes the customer and every booking they own, including
// their place in each flight's passenger list.
func (l *Ledger) DeleteCustomer(customerID int64) ([]domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.customers[customerID]; !ok {
		return nil, notFound(EntityCustomer, customerID)
	}
	removed := l.cascade(l.idx.customerBookings(customerID))
	delete(l.customers, customerID)

	l.logger.Debug("customer deleted", "customer_id", customerID, "bookings_removed", len(removed))
	return removed, nil
}

func (l *Ledger) cascade(ids []int64) []domain.Booking {
	removed := make([]domain.Booking, 0, len(ids))
	for _, id := range ids {
		b := l.bookings[id]
		l.removeBooking(b)
		removed = append(removed, *b)
	}
	return removed
}

// ActiveFlights returns flights departing strictly after today, by ID.
func (l *Ledger) ActiveFlights() []domain.Flight {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.activeFlights()
}

// ActiveFlightsVersion returns the active flights together with the flight
// version they were read at, both taken under the same lock.
func (l *Ledger) ActiveFlightsVersion() ([]domain.Flight, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.activeFlights(), l.flightsVersion
}

// FlightsVersion changes whenever a flight is added or removed, or the ledger
// is reloaded. Lists cached under an older version are stale.
func (l *Ledger) FlightsVersion() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.flightsVersion
}

func (l *Ledger) activeFlights() []domain.Flight {
	out := make([]domain.Flight, 0, len(l.flights))
	for _, id := range slices.Sorted(maps.Keys(l.flights)) {
		if f := l.flights[id]; f.DepartureDate.After(l.today) {
			out = append(out, *f)
		}
	}
	return out
}

// Flights returns every flight, departed ones included, by ID.
func (l *Ledger) Flights() []domain.Flight {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return values(l.flights)
}

func (l *Ledger) Customers() []domain.Customer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return values(l.customers)
}

func (l *Ledger) Bookings() []domain.Booking {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return values(l.bookings)
}

func (l *Ledger) Flight(id int64) (domain.Flight, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	f, ok := l.flights[id]
	if !ok {
		return domain.Flight{}, notFound(EntityFlight, id)
	}
	return *f, nil
}

func (l *Ledger) Customer(id int64) (domain.Customer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	c, ok := l.customers[id]
	if !ok {
		return domain.Customer{}, notFound(EntityCustomer, id)
	}
	return *c, nil
}

func (l *Ledger) Booking(id int64) (domain.Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.bookings[id]
	if !ok {
		return domain.Booking{}, notFound(EntityBooking, id)
	}
	return *b, nil
}

// BookingFor returns the booking linking the customer to the flight, if any.
func (l *Ledger) BookingFor(customerID, flightID int64) (domain.Booking, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	id, ok := l.idx.forPair(customerID, flightID)
	if !ok {
		return domain.Booking{}, false
	}
	return *l.bookings[id], true
}

// CustomerBookings returns the customer's bookings in the order they were made.
func (l *Ledger) CustomerBookings(customerID int64) ([]domain.Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.customers[customerID]; !ok {
		return nil, notFound(EntityCustomer, customerID)
	}
	return l.resolve(l.idx.customerBookings(customerID)), nil
}

// FlightBookings returns the bookings on a flight by booking ID.
func (l *Ledger) FlightBookings(flightID int64) ([]domain.Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.flights[flightID]; !ok {
		return nil, notFound(EntityFlight, flightID)
	}
	return l.resolve(l.idx.flightBookings(flightID)), nil
}

// Passengers returns the customers booked on a flight by customer ID.
func (l *Ledger) Passengers(flightID int64) ([]domain.Customer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.flights[flightID]; !ok {
		return nil, notFound(EntityFlight, flightID)
	}
	ids := l.idx.passengers(flightID)
	out := make([]domain.Customer, 0, len(ids))
	for _, id := range ids {
		out = append(out, *l.customers[id])
	}
	return out, nil
}

// Quote is the price a booking on the flight would be issued at today.
func (l *Ledger) Quote(flightID int64) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	f, ok := l.flights[flightID]
	if !ok {
		return 0, notFound(EntityFlight, flightID)
	}
	return pricing.BookingPrice(domain.DaysBetween(l.today, f.DepartureDate), f.Seats), nil
}

func (l *Ledger) resolve(ids []int64) []domain.Booking {
	out := make([]domain.Booking, 0, len(ids))
	for _, id := range ids {
		out = append(out, *l.bookings[id])
	}
	return out
}

func values[T any](m map[int64]*T) []T {
	out := make([]T, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		out = append(out, *m[id])
	}
	return out
}
