// Package pricing computes booking prices and rebooking fees from the number
// of days left before departure and the size of the aircraft.
package pricing

// BasePrice is the fare tier for a booking made daysLeft days before departure.
func BasePrice(daysLeft int) int64 {
	switch {
	case daysLeft >= 30:
		return 100
	case daysLeft >= 15:
		return 150
	case daysLeft >= 7:
		return 200
	case daysLeft >= 3:
		return 250
	default:
		return 300
	}
}

// CapacitySurcharge is added on top of the base fare depending on seat count.
func CapacitySurcharge(seats int) int64 {
	switch {
	case seats <= 50:
		return 50
	case seats <= 100:
		return 100
	default:
		return 150
	}
}

// BookingPrice is the price cached on a booking at creation time.
func BookingPrice(daysLeft, seats int) int64 {
	return BasePrice(daysLeft) + CapacitySurcharge(seats)
}

// RebookFee is charged on top of the cached price when a booking is moved.
func RebookFee(daysLeft int) int64 {
	switch {
	case daysLeft >= 30:
		return 50
	case daysLeft >= 15:
		return 100
	case daysLeft >= 7:
		return 150
	case daysLeft >= 3:
		return 200
	default:
		return 250
	}
}
