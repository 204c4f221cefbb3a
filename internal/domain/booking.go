package domain

import (
	"fmt"
	"time"
)

// Booking links one customer to one flight. Price is fixed when the booking
// is issued and only grows by rebooking fees afterwards.
type Booking struct {
	ID          int64     `json:"id"`
	CustomerID  int64     `json:"customer_id"`
	FlightID    int64     `json:"flight_id"`
	BookingDate time.Time `json:"booking_date"`
	Price       int64     `json:"price"`
}

func (b Booking) DetailsShort() string {
	return fmt.Sprintf("Booking #%d - customer #%d - flight #%d - booked %s - Price: %d",
		b.ID, b.CustomerID, b.FlightID, b.BookingDate.Format(DateLayout), b.Price)
}
