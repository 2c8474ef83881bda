// Package reminder runs the background loop that reminds clients about
// their upcoming appointments.
package reminder

import (
	"context"
	"sync"
	"time"
	"zapis/internal/chat"
	"zapis/internal/store"
	"zapis/pkg/logger"
)

// Scheduler periodically reloads bookings and fires one reminder per booking
// once wall-clock time reaches the booking's fire time (slot start minus the
// configured lead).
//
// Fired markers are keyed by booking id, so two bookings that somehow share a
// slot key still each get their own reminder. Markers live only in process
// memory; a restart may re-send reminders that already went out, which is the
// accepted tradeoff for keeping the store append-only.
type Scheduler struct {
	store    store.BookingStore
	notifier chat.Notifier
	lead     time.Duration
	cycle    time.Duration
	log      *logger.Logger

	now func() time.Time

	mu    sync.Mutex
	fired map[string]struct{}
}

func NewScheduler(
	bookingStore store.BookingStore,
	notifier chat.Notifier,
	lead time.Duration,
	cycle time.Duration,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{
		store:    bookingStore,
		notifier: notifier,
		lead:     lead,
		cycle:    cycle,
		log:      log,
		now:      time.Now,
		fired:    make(map[string]struct{}),
	}
}

// Run blocks, executing one cycle per tick until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("Reminder scheduler started",
		"lead", s.lead.String(),
		"cycle", s.cycle.String())

	ticker := time.NewTicker(s.cycle)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunCycle(ctx)
		case <-ctx.Done():
			s.log.Info("Reminder scheduler stopped")
			return
		}
	}
}

// RunCycle performs one pass over the current bookings. A store-read failure
// skips the pass; the next tick is the retry. A notify failure for one
// booking does not stop the others, and its marker is still set so a broken
// delivery path cannot turn into a retry storm.
func (s *Scheduler) RunCycle(ctx context.Context) {
	bookings, err := s.store.ListAll(ctx)
	if err != nil {
		s.log.Error("Failed to load bookings for reminder cycle", "error", err)
		return
	}

	now := s.now()
	for _, booking := range bookings {
		fireAt := booking.SlotStart.Add(-s.lead)
		if now.Before(fireAt) {
			continue
		}
		if s.alreadyFired(booking.ID) {
			continue
		}

		if err := s.notifier.Remind(ctx, booking); err != nil {
			s.log.Error("Reminder delivery failed",
				"booking_id", booking.ID,
				"slot_key", booking.SlotKey,
				"error", err)
		} else {
			s.log.Info("Reminder sent",
				"booking_id", booking.ID,
				"slot_key", booking.SlotKey)
		}
		s.markFired(booking.ID)
	}
}

// FiredCount returns how many bookings have been reminded so far.
func (s *Scheduler) FiredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fired)
}

func (s *Scheduler) alreadyFired(bookingID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.fired[bookingID]
	return ok
}

func (s *Scheduler) markFired(bookingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fired[bookingID] = struct{}{}
}
