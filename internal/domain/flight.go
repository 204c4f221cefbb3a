package domain

import (
	"fmt"
	"strings"
	"time"
)

type Flight struct {
	ID            int64     `json:"id"`
	FlightNumber  string    `json:"flight_number"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureDate time.Time `json:"departure_date"`
	Seats         int       `json:"seats"`
	Price         int64     `json:"price"`
}

// DetailsShort renders a one-line summary of the flight.
func (f Flight) DetailsShort() string {
	return fmt.Sprintf("Flight #%d - %s - %s to %s on %s - Price: %d - Seats: %d",
		f.ID, f.FlightNumber, f.Origin, f.Destination, f.DepartureDate.Format("02/01/2006"), f.Price, f.Seats)
}

// DetailsLong renders the flight together with its passenger list.
func (f Flight) DetailsLong(passengers []Customer) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Flight #%d\n", f.ID)
	fmt.Fprintf(&sb, "Flight Number: %s\n", f.FlightNumber)
	fmt.Fprintf(&sb, "Origin: %s\n", f.Origin)
	fmt.Fprintf(&sb, "Destination: %s\n", f.Destination)
	fmt.Fprintf(&sb, "Departure Date: %s\n", f.DepartureDate.Format("02/01/2006"))
	fmt.Fprintf(&sb, "Number of Seats: %d\n", f.Seats)
	fmt.Fprintf(&sb, "Price: %d\n", f.Price)
	sb.WriteString("Passengers:\n")
	for _, p := range passengers {
		sb.WriteString(p.Name)
		sb.WriteString("\n")
	}
	return sb.String()
}
