package domain

import (
	"fmt"
	"strings"
)

type Customer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Balance int64  `json:"balance"`
}

func (c Customer) DetailsShort() string {
	return fmt.Sprintf("Customer #%d - %s - %s - %s", c.ID, c.Name, c.Phone, c.Email)
}

// DetailsLong renders the customer with one line per booking, in booking order.
func (c Customer) DetailsLong(bookings []Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Customer #%d\n", c.ID)
	fmt.Fprintf(&sb, "Name: %s\n", c.Name)
	fmt.Fprintf(&sb, "Phone: %s\n", c.Phone)
	fmt.Fprintf(&sb, "Email: %s\n", c.Email)
	fmt.Fprintf(&sb, "Balance: %d\n", c.Balance)
	sb.WriteString("Bookings:\n")
	for _, b := range bookings {
		sb.WriteString(b.DetailsShort())
		sb.WriteString("\n")
	}
	return sb.String()
}
