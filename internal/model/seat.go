package model

import (
	"strconv"
	"strings"
)

// SeatStatus is the availability state of a seat as reported by the
// inventory backend.  The value is authoritative only as of the snapshot
// that carried it; other users may take a seat at any time after that.
type SeatStatus string

const (
	// SeatAvailable means the seat can currently be selected.
	SeatAvailable SeatStatus = "AVAILABLE"
	// SeatHeld means another user has a temporary hold on the seat.
	SeatHeld SeatStatus = "HELD"
	// SeatBooked means the seat belongs to a confirmed booking.
	SeatBooked SeatStatus = "BOOKED"
)

// Seat describes one seat of a showtime as seen in an inventory snapshot.
// The identifier is the row label concatenated with the seat number
// ("A1", "B12") and is unique within a showtime.  PriceCents is fixed by
// the snapshot based on the seat category and is never recomputed from a
// later snapshot once a user has pinned it by selecting the seat.
//
// Fields:
//  ID         - row label + number, unique per showtime.
//  Row        - row label ("A", "B", ...).
//  Number     - seat number within the row.
//  Category   - pricing category (STANDARD, VIP, ACCESSIBLE).
//  PriceCents - price in cents for this seat in this snapshot.
//  Status     - availability as of the snapshot.
type Seat struct {
	ID         string     `json:"id"`
	Row        string     `json:"row"`
	Number     uint32     `json:"number"`
	Category   string     `json:"category"`
	PriceCents uint32     `json:"price_cents"`
	Status     SeatStatus `json:"status"`
}

// ParseSeatStatus normalizes the status strings used by the inventory
// backend and the push channel.  Anything unrecognized is treated as
// booked: guessing "available" for an unknown state could sell a taken
// seat, guessing "booked" only costs the user a retry.
func ParseSeatStatus(s string) SeatStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AVAILABLE", "FREE":
		return SeatAvailable
	case "HELD", "HOLD", "LOCKED":
		return SeatHeld
	default:
		return SeatBooked
	}
}

// SplitSeatLabel breaks "A12" into row "A" and number 12.  A label with
// no digits keeps number zero; the full label remains the identifier
// either way.
func SplitSeatLabel(label string) (string, uint32) {
	i := 0
	for i < len(label) && (label[i] < '0' || label[i] > '9') {
		i++
	}
	row := label[:i]
	n, err := strconv.ParseUint(label[i:], 10, 32)
	if err != nil {
		return row, 0
	}
	return row, uint32(n)
}
