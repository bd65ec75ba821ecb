package bookings

// Status is the booking lifecycle state. Any state may move to any other;
// the seat ledger only reacts when a transition crosses the CANCELLED
// boundary in either direction.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

func IsValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// EntersCancelled reports whether the transition releases seats.
func EntersCancelled(from, to Status) bool {
	return from != StatusCancelled && to == StatusCancelled
}

// LeavesCancelled reports whether the transition must re-reserve seats.
func LeavesCancelled(from, to Status) bool {
	return from == StatusCancelled && to != StatusCancelled
}
