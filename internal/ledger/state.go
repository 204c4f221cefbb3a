package ledger

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/pricing"
)

// State is the persisted form of a ledger: canonical entities only, plus the
// booking ID high-water mark. Relation indexes are rebuilt on Load.
type State struct {
	Flights       []domain.Flight
	Customers     []domain.Customer
	Bookings      []domain.Booking
	LastBookingID int64
}

// Snapshot copies the current canonical state.
func (l *Ledger) Snapshot() State {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return State{
		Flights:       values(l.flights),
		Customers:     values(l.customers),
		Bookings:      values(l.bookings),
		LastBookingID: l.lastBookingID,
	}
}

// Load replaces the ledger contents with state. The state is rebuilt into a
// fresh ledger first, so a failing load leaves the current contents intact.
//
// Bookings that reference a missing customer or flight, or that repeat a
// customer/flight pair, are skipped. Bookings stored without a price are
// priced against the reference date.
func (l *Ledger) Load(state State) error {
	fresh := New(l.today, WithLogger(l.logger))

	for i := range state.Flights {
		f := state.Flights[i]
		if err := fresh.insertFlight(&f); err != nil {
			return fmt.Errorf("load flight %d: %w", f.ID, err)
		}
	}
	for i := range state.Customers {
		c := state.Customers[i]
		if err := fresh.insertCustomer(&c); err != nil {
			return fmt.Errorf("load customer %d: %w", c.ID, err)
		}
	}

	bookings := slices.Clone(state.Bookings)
	slices.SortFunc(bookings, func(a, b domain.Booking) int { return cmp.Compare(a.ID, b.ID) })
	for i := range bookings {
		b := bookings[i]
		if b.ID <= 0 {
			return fmt.Errorf("load booking: %w", ValidationError{Field: "id", Message: "must be positive"})
		}
		if _, dup := fresh.bookings[b.ID]; dup {
			return fmt.Errorf("load booking: %w", duplicateID(EntityBooking, b.ID))
		}
		fresh.lastBookingID = max(fresh.lastBookingID, b.ID)

		flight, ok := fresh.flights[b.FlightID]
		if !ok {
			l.logger.Warn("skipping booking for unknown flight", "booking_id", b.ID, "flight_id", b.FlightID)
			continue
		}
		if _, ok := fresh.customers[b.CustomerID]; !ok {
			l.logger.Warn("skipping booking for unknown customer", "booking_id", b.ID, "customer_id", b.CustomerID)
			continue
		}
		if existing, booked := fresh.idx.forPair(b.CustomerID, b.FlightID); booked {
			l.logger.Warn("skipping repeated booking", "booking_id", b.ID, "kept_booking_id", existing)
			continue
		}
		b.BookingDate = domain.DateOf(b.BookingDate)
		if b.Price == 0 {
			b.Price = pricing.BookingPrice(domain.DaysBetween(l.today, flight.DepartureDate), flight.Seats)
		}
		fresh.bookings[b.ID] = &b
		fresh.idx.link(&b)
	}
	fresh.lastBookingID = max(fresh.lastBookingID, state.LastBookingID)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.flights = fresh.flights
	l.customers = fresh.customers
	l.bookings = fresh.bookings
	l.idx = fresh.idx
	l.lastFlightID = fresh.lastFlightID
	l.lastCustomerID = fresh.lastCustomerID
	l.lastBookingID = fresh.lastBookingID
	l.flightsVersion++

	l.logger.Info("ledger loaded", "today", l.today.Format(domain.DateLayout), "flights", len(l.flights), "customers", len(l.customers), "bookings", len(l.bookings))
	return nil
}
