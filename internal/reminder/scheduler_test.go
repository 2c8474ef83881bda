package reminder

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
	"zapis/pkg/logger"
	"zapis/pkg/model"
)

type mockBookingStore struct {
	listAllFunc func(ctx context.Context) ([]*model.Booking, error)
}

func (m *mockBookingStore) ListBusySlotKeys(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (m *mockBookingStore) Append(ctx context.Context, booking *model.Booking) error {
	return nil
}

func (m *mockBookingStore) ListAll(ctx context.Context) ([]*model.Booking, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx)
	}
	return nil, nil
}

type mockNotifier struct {
	remindFunc func(ctx context.Context, booking *model.Booking) error
}

func (m *mockNotifier) Remind(ctx context.Context, booking *model.Booking) error {
	if m.remindFunc != nil {
		return m.remindFunc(ctx, booking)
	}
	return nil
}

func (m *mockNotifier) NotifyOperator(ctx context.Context, booking *model.Booking) error {
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
}

const lead = 11*time.Hour + 30*time.Minute

func TestRunCycle_FiresOnceWithinTolerance(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	booking := &model.Booking{
		ID:        "b-1",
		Name:      "Ann",
		Phone:     "79991234567",
		SlotKey:   "02-03-2026 19:29",
		SlotStart: now.Add(lead - time.Minute),
		ChatID:    "chat-1",
		UserID:    "user-1",
	}

	store := &mockBookingStore{
		listAllFunc: func(ctx context.Context) ([]*model.Booking, error) {
			return []*model.Booking{booking}, nil
		},
	}

	var reminded []string
	notifier := &mockNotifier{
		remindFunc: func(ctx context.Context, b *model.Booking) error {
			reminded = append(reminded, b.ID)
			return nil
		},
	}

	s := NewScheduler(store, notifier, lead, 30*time.Second, testLogger())
	s.now = func() time.Time { return now }

	s.RunCycle(context.Background())
	s.RunCycle(context.Background())

	if len(reminded) != 1 {
		t.Fatalf("remind fired %d times, want exactly 1", len(reminded))
	}
	if reminded[0] != "b-1" {
		t.Errorf("reminded booking = %s, want b-1", reminded[0])
	}
}

func TestRunCycle_NotYetDue(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	store := &mockBookingStore{
		listAllFunc: func(ctx context.Context) ([]*model.Booking, error) {
			return []*model.Booking{{
				ID:        "b-1",
				SlotStart: now.Add(lead + time.Hour),
			}}, nil
		},
	}

	fired := 0
	notifier := &mockNotifier{
		remindFunc: func(ctx context.Context, b *model.Booking) error {
			fired++
			return nil
		},
	}

	s := NewScheduler(store, notifier, lead, 30*time.Second, testLogger())
	s.now = func() time.Time { return now }

	s.RunCycle(context.Background())

	if fired != 0 {
		t.Errorf("remind fired %d times before fire time, want 0", fired)
	}
	if s.FiredCount() != 0 {
		t.Errorf("fired markers = %d, want 0", s.FiredCount())
	}
}

func TestRunCycle_SharedSlotKeyFiresPerBooking(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	start := now.Add(lead - time.Minute)
	store := &mockBookingStore{
		listAllFunc: func(ctx context.Context) ([]*model.Booking, error) {
			return []*model.Booking{
				{ID: "b-1", SlotKey: "02-03-2026 19:29", SlotStart: start, UserID: "user-1"},
				{ID: "b-2", SlotKey: "02-03-2026 19:29", SlotStart: start, UserID: "user-2"},
			}, nil
		},
	}

	var reminded []string
	notifier := &mockNotifier{
		remindFunc: func(ctx context.Context, b *model.Booking) error {
			reminded = append(reminded, b.UserID)
			return nil
		},
	}

	s := NewScheduler(store, notifier, lead, 30*time.Second, testLogger())
	s.now = func() time.Time { return now }

	s.RunCycle(context.Background())

	if len(reminded) != 2 {
		t.Fatalf("remind fired %d times for two bookings on one slot, want 2", len(reminded))
	}
}

func TestRunCycle_NotifyFailureMarksFired(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	store := &mockBookingStore{
		listAllFunc: func(ctx context.Context) ([]*model.Booking, error) {
			return []*model.Booking{{
				ID:        "b-1",
				SlotStart: now.Add(lead - time.Minute),
			}}, nil
		},
	}

	attempts := 0
	notifier := &mockNotifier{
		remindFunc: func(ctx context.Context, b *model.Booking) error {
			attempts++
			return errors.New("delivery failed")
		},
	}

	s := NewScheduler(store, notifier, lead, 30*time.Second, testLogger())
	s.now = func() time.Time { return now }

	s.RunCycle(context.Background())
	s.RunCycle(context.Background())

	if attempts != 1 {
		t.Errorf("failed reminder retried %d times, want no retry", attempts-1)
	}
}

func TestRunCycle_StoreFailureSkipsPass(t *testing.T) {
	store := &mockBookingStore{
		listAllFunc: func(ctx context.Context) ([]*model.Booking, error) {
			return nil, errors.New("store unreachable")
		},
	}

	s := NewScheduler(store, &mockNotifier{}, lead, 30*time.Second, testLogger())
	s.RunCycle(context.Background())

	if s.FiredCount() != 0 {
		t.Errorf("fired markers = %d after failed pass, want 0", s.FiredCount())
	}
}

func TestRunCycle_NotifyFailureDoesNotStopOthers(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	start := now.Add(lead - time.Minute)
	store := &mockBookingStore{
		listAllFunc: func(ctx context.Context) ([]*model.Booking, error) {
			return []*model.Booking{
				{ID: "b-1", SlotStart: start},
				{ID: "b-2", SlotStart: start},
			}, nil
		},
	}

	var reminded []string
	notifier := &mockNotifier{
		remindFunc: func(ctx context.Context, b *model.Booking) error {
			if b.ID == "b-1" {
				return errors.New("delivery failed")
			}
			reminded = append(reminded, b.ID)
			return nil
		},
	}

	s := NewScheduler(store, notifier, lead, 30*time.Second, testLogger())
	s.now = func() time.Time { return now }

	s.RunCycle(context.Background())

	if len(reminded) != 1 || reminded[0] != "b-2" {
		t.Errorf("second booking not reminded after first failed: %v", reminded)
	}
}
