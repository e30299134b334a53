package booking

import "errors"

// Domain errors for the booking package.
//
//	if errors.Is(err, booking.ErrNotFound) {
//	    // 404
//	}
var (
	// ErrNotFound is returned when a row with the requested id does not exist.
	ErrNotFound = errors.New("booking: not found")

	// ErrInvalid is returned when an entity fails validation. The wrapping
	// error names the offending field.
	ErrInvalid = errors.New("booking: invalid")

	// ErrUnknownField is returned when a patch names a column that is not
	// writable.
	ErrUnknownField = errors.New("booking: unknown field")

	// ErrBarberInactive is returned when booking with a barber who is not
	// taking appointments.
	ErrBarberInactive = errors.New("booking: barber inactive")

	// ErrSlotTaken is returned when the requested time overlaps another
	// scheduled appointment of the same barber.
	ErrSlotTaken = errors.New("booking: slot taken")

	// ErrInPast is returned when booking a start time that has passed.
	ErrInPast = errors.New("booking: start time in the past")

	// ErrNotCancellable is returned when cancelling or completing an
	// appointment that is no longer scheduled.
	ErrNotCancellable = errors.New("booking: appointment not scheduled")
)
