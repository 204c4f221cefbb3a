package ledger

import (
	"maps"
	"slices"

	"github.com/Domenick1991/flightledger/internal/domain"
)

// index keeps the customer->bookings and flight->passengers relations.
// Entities never track these themselves; the Ledger updates the index in
// the same critical section as the canonical booking map.
type index struct {
	byCustomer map[int64][]int64         // customer ID -> booking IDs, insertion order
	byFlight   map[int64]map[int64]int64 // flight ID -> customer ID -> booking ID
}

func newIndex() *index {
	return &index{
		byCustomer: make(map[int64][]int64),
		byFlight:   make(map[int64]map[int64]int64),
	}
}

func (x *index) link(b *domain.Booking) {
	x.byCustomer[b.CustomerID] = append(x.byCustomer[b.CustomerID], b.ID)
	passengers, ok := x.byFlight[b.FlightID]
	if !ok {
		passengers = make(map[int64]int64)
		x.byFlight[b.FlightID] = passengers
	}
	passengers[b.CustomerID] = b.ID
}

func (x *index) unlink(b *domain.Booking) {
	ids := slices.DeleteFunc(x.byCustomer[b.CustomerID], func(id int64) bool { return id == b.ID })
	if len(ids) == 0 {
		delete(x.byCustomer, b.CustomerID)
	} else {
		x.byCustomer[b.CustomerID] = ids
	}
	if passengers, ok := x.byFlight[b.FlightID]; ok {
		delete(passengers, b.CustomerID)
		if len(passengers) == 0 {
			delete(x.byFlight, b.FlightID)
		}
	}
}

func (x *index) forPair(customerID, flightID int64) (int64, bool) {
	id, ok := x.byFlight[flightID][customerID]
	return id, ok
}

func (x *index) customerBookings(customerID int64) []int64 {
	return slices.Clone(x.byCustomer[customerID])
}

// flightBookings returns the flight's booking IDs ordered by booking ID.
func (x *index) flightBookings(flightID int64) []int64 {
	return slices.Sorted(maps.Values(x.byFlight[flightID]))
}

// passengers returns the customer IDs booked on the flight, ascending.
func (x *index) passengers(flightID int64) []int64 {
	return slices.Sorted(maps.Keys(x.byFlight[flightID]))
}
