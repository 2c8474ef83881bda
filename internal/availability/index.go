package availability

import (
	"context"
	"sync"
	"time"
	"zapis/internal/calendar"
	"zapis/internal/store"
	"zapis/pkg/model"
)

// Index holds the set of busy slot keys loaded from the booking store and
// answers availability queries against the candidate window.
//
// The set is replaced wholesale on Reload rather than maintained
// incrementally; a failed reload keeps the previous set so availability
// checks degrade to last-known-good instead of crashing. Staleness is
// acceptable for display, but every write-gating check must be preceded by an
// explicit Reload in the same transition.
type Index struct {
	store store.BookingStore
	cal   *calendar.Calendar

	mu   sync.RWMutex
	busy map[string]struct{}
}

func NewIndex(bookingStore store.BookingStore, cal *calendar.Calendar) *Index {
	return &Index{
		store: bookingStore,
		cal:   cal,
		busy:  make(map[string]struct{}),
	}
}

// Reload replaces the busy set with the store's current view. On failure the
// held set is retained and the error returned for the caller to report.
func (i *Index) Reload(ctx context.Context) error {
	keys, err := i.store.ListBusySlotKeys(ctx)
	if err != nil {
		return err
	}

	busy := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		busy[key] = struct{}{}
	}

	i.mu.Lock()
	i.busy = busy
	i.mu.Unlock()
	return nil
}

// IsAvailable reports whether the slot key is absent from the busy set.
func (i *Index) IsAvailable(key string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, taken := i.busy[key]
	return !taken
}

// AvailableSlots returns the candidate window minus busy slots, in
// chronological order.
func (i *Index) AvailableSlots(now time.Time) []model.Slot {
	candidates := i.cal.Generate(now)

	i.mu.RLock()
	defer i.mu.RUnlock()

	available := make([]model.Slot, 0, len(candidates))
	for _, s := range candidates {
		if _, taken := i.busy[s.Key()]; !taken {
			available = append(available, s)
		}
	}
	return available
}

// BusyCount returns the size of the held busy set.
func (i *Index) BusyCount() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.busy)
}
