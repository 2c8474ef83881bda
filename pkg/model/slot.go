package model

import (
	"time"
)

// KeyLayout is the canonical textual form of a slot: day-month-year hour:minute.
// The key doubles as the user-facing label and the busy-set lookup key, so it
// must stay byte-stable for equal instants.
const KeyLayout = "02-01-2006 15:04"

// Slot is a bookable (day, time-of-day) pair from the fixed daily grid.
// Immutable once generated; equality is by canonical key.
type Slot struct {
	Start time.Time
}

func NewSlot(start time.Time) Slot {
	return Slot{Start: start.Truncate(time.Minute)}
}

func (s Slot) Key() string {
	return s.Start.Format(KeyLayout)
}

func (s Slot) Equal(other Slot) bool {
	return s.Key() == other.Key()
}

// ParseSlotKey parses a canonical slot key in the given operating timezone.
func ParseSlotKey(key string, loc *time.Location) (Slot, error) {
	t, err := time.ParseInLocation(KeyLayout, key, loc)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Start: t}, nil
}

// Keys returns the canonical keys of the given slots, preserving order.
func Keys(slots []Slot) []string {
	keys := make([]string, len(slots))
	for i, s := range slots {
		keys[i] = s.Key()
	}
	return keys
}
