package store

import (
	"context"
	"errors"
	"zapis/pkg/model"
)

var (
	// ErrSlotTaken is returned by Append when another booking already owns
	// the slot key. The unique index on the slot key makes the
	// check-then-append race lose deterministically at the store layer.
	ErrSlotTaken = errors.New("slot is already booked")

	// ErrUnavailable is returned when the backing store cannot be reached.
	ErrUnavailable = errors.New("booking store is unavailable")
)

// BookingStore is the persistence contract consumed by the engine. The store
// is append-only: bookings are created once and never mutated.
type BookingStore interface {
	// ListBusySlotKeys returns the canonical keys of every booked slot.
	ListBusySlotKeys(ctx context.Context) ([]string, error)

	// Append persists a new booking. Fails with ErrSlotTaken if a booking
	// for the same slot key already exists.
	Append(ctx context.Context, booking *model.Booking) error

	// ListAll returns every persisted booking, for the reminder scheduler
	// and the export surface.
	ListAll(ctx context.Context) ([]*model.Booking, error)
}

// BookingPager serves the paginated export surface.
type BookingPager interface {
	// ListPage returns one page of bookings, newest first, plus the total
	// count.
	ListPage(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
}
