package conversation

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"
	"zapis/internal/availability"
	"zapis/internal/calendar"
	"zapis/internal/chat"
	"zapis/internal/store"
	"zapis/pkg/logger"
	"zapis/pkg/model"
)

// In-memory store with the same duplicate-slot guard the real one has.
type fakeStore struct {
	mu       sync.Mutex
	bookings []*model.Booking
	listErr  error
}

func (f *fakeStore) ListBusySlotKeys(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	keys := make([]string, 0, len(f.bookings))
	for _, b := range f.bookings {
		keys = append(keys, b.SlotKey)
	}
	return keys, nil
}

func (f *fakeStore) Append(ctx context.Context, booking *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.SlotKey == booking.SlotKey {
			return store.ErrSlotTaken
		}
	}
	f.bookings = append(f.bookings, booking)
	return nil
}

func (f *fakeStore) ListAll(ctx context.Context) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.Booking(nil), f.bookings...), nil
}

type sentMessage struct {
	chatID  string
	text    string
	choices []string
}

type recordingChannel struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (r *recordingChannel) SendPrompt(ctx context.Context, chatID, text string, choices []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{chatID: chatID, text: text, choices: choices})
	return nil
}

func (r *recordingChannel) SendPlain(ctx context.Context, chatID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (r *recordingChannel) last(t *testing.T) sentMessage {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		t.Fatal("no messages sent")
	}
	return r.sent[len(r.sent)-1]
}

type mockNotifier struct {
	remindFunc         func(ctx context.Context, booking *model.Booking) error
	notifyOperatorFunc func(ctx context.Context, booking *model.Booking) error
}

func (m *mockNotifier) Remind(ctx context.Context, booking *model.Booking) error {
	if m.remindFunc != nil {
		return m.remindFunc(ctx, booking)
	}
	return nil
}

func (m *mockNotifier) NotifyOperator(ctx context.Context, booking *model.Booking) error {
	if m.notifyOperatorFunc != nil {
		return m.notifyOperatorFunc(ctx, booking)
	}
	return nil
}

type fixture struct {
	engine   *Engine
	store    *fakeStore
	channel  *recordingChannel
	index    *availability.Index
	notifier *mockNotifier
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cal, err := calendar.New([]string{"9:15", "12:00", "15:00"}, 7, time.Sunday, time.UTC)
	if err != nil {
		t.Fatalf("unexpected calendar error: %v", err)
	}

	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	fs := &fakeStore{}
	idx := availability.NewIndex(fs, cal)
	ch := &recordingChannel{}
	notifier := &mockNotifier{}

	engine := NewEngine(idx, fs, ch, notifier, NewBookingValidator(log), log)
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return now }

	return &fixture{
		engine:   engine,
		store:    fs,
		channel:  ch,
		index:    idx,
		notifier: notifier,
		now:      now,
	}
}

func (f *fixture) conversation() *Conversation {
	return newConversation("chat-1", "user-1", f.now)
}

func TestAdvance_InvalidPhoneStaysInState(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too short", "12345"},
		{"not numeric", "phone"},
		{"too long", "123456789012"},
		{"digits with separators", "7 999 123-45-67"},
		{"digits with parentheses", "7(999)123-45-67"},
		{"leading plus", "+79991234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			c := f.conversation()
			c.setState(StateAwaitingPhone)
			c.name = "Ann"

			if err := f.engine.Advance(context.Background(), c, tt.input); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if c.State() != StateAwaitingPhone {
				t.Errorf("state = %s, want %s", c.State(), StateAwaitingPhone)
			}
			if got := f.channel.last(t).text; got != msgInvalidPhone {
				t.Errorf("last message = %q, want validation prompt", got)
			}
		})
	}
}

func TestAdvance_FullBookingFlow(t *testing.T) {
	f := newFixture(t)
	c := f.conversation()
	ctx := context.Background()

	if err := f.engine.Advance(ctx, c, "Ann"); err != nil {
		t.Fatalf("name step failed: %v", err)
	}
	if c.State() != StateAwaitingPhone {
		t.Fatalf("after name: state = %s, want %s", c.State(), StateAwaitingPhone)
	}

	if err := f.engine.Advance(ctx, c, "79991234567"); err != nil {
		t.Fatalf("phone step failed: %v", err)
	}
	if c.State() != StateAwaitingSlot {
		t.Fatalf("after phone: state = %s, want %s", c.State(), StateAwaitingSlot)
	}
	offered := f.channel.last(t).choices
	if len(offered) == 0 {
		t.Fatal("no slot choices offered")
	}

	var operatorNotified bool
	f.notifier.notifyOperatorFunc = func(ctx context.Context, booking *model.Booking) error {
		operatorNotified = true
		return nil
	}

	if err := f.engine.Advance(ctx, c, offered[0]); err != nil {
		t.Fatalf("slot step failed: %v", err)
	}
	if c.State() != StateCompleted {
		t.Fatalf("after slot: state = %s, want %s", c.State(), StateCompleted)
	}
	if !operatorNotified {
		t.Error("operator was not notified")
	}

	if len(f.store.bookings) != 1 {
		t.Fatalf("store has %d bookings, want 1", len(f.store.bookings))
	}
	booking := f.store.bookings[0]
	if booking.Name != "Ann" || booking.Phone != "79991234567" || booking.SlotKey != offered[0] {
		t.Errorf("unexpected booking: %+v", booking)
	}

	// the written slot must show as busy after the next reload
	if err := f.index.Reload(ctx); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if f.index.IsAvailable(booking.SlotKey) {
		t.Errorf("slot %s still available after booking", booking.SlotKey)
	}
}

func TestAdvance_UnrecognizedSlotStaysInState(t *testing.T) {
	f := newFixture(t)
	c := f.conversation()
	c.setState(StateAwaitingSlot)
	c.name = "Ann"
	c.phone = "79991234567"

	if err := f.engine.Advance(context.Background(), c, "next tuesday maybe"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.State() != StateAwaitingSlot {
		t.Errorf("state = %s, want %s", c.State(), StateAwaitingSlot)
	}
	last := f.channel.last(t)
	if last.text != msgPickFromList {
		t.Errorf("last message = %q, want re-presentation prompt", last.text)
	}
	if len(last.choices) == 0 {
		t.Error("expected the current slot list to be re-presented")
	}
}

func TestAdvance_SlotRaceReprompts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.conversation()
	first.state = StateAwaitingSlot
	first.name = "Ann"
	first.phone = "79991234567"

	second := newConversation("chat-2", "user-2", f.now)
	second.state = StateAwaitingSlot
	second.name = "Bob"
	second.phone = "79990000000"

	cal, _ := calendar.New([]string{"9:15", "12:00", "15:00"}, 7, time.Sunday, time.UTC)
	target := cal.Generate(f.now)[0].Key()

	if err := f.engine.Advance(ctx, first, target); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	if first.State() != StateCompleted {
		t.Fatalf("first conversation: state = %s, want %s", first.State(), StateCompleted)
	}

	if err := f.engine.Advance(ctx, second, target); err != nil {
		t.Fatalf("second attempt errored: %v", err)
	}
	if second.State() != StateAwaitingSlot {
		t.Errorf("second conversation: state = %s, want %s", second.State(), StateAwaitingSlot)
	}

	if len(f.store.bookings) != 1 {
		t.Fatalf("store has %d bookings for one slot, want 1", len(f.store.bookings))
	}
	if f.store.bookings[0].ChatID != "chat-1" {
		t.Errorf("slot owner = %s, want chat-1", f.store.bookings[0].ChatID)
	}
}

// A store whose busy-set listing lags behind its contents, so the duplicate
// rejection happens at append time instead of at the pre-check.
type staleStore struct {
	fakeStore
}

func (s *staleStore) ListBusySlotKeys(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestAdvance_AppendRejectionReprompts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cal, _ := calendar.New([]string{"9:15", "12:00", "15:00"}, 7, time.Sunday, time.UTC)
	taken := cal.Generate(f.now)[0]

	stale := &staleStore{}
	stale.bookings = []*model.Booking{{SlotKey: taken.Key(), SlotStart: taken.Start}}
	f.engine.store = stale

	c := f.conversation()
	c.setState(StateAwaitingSlot)
	c.name = "Ann"
	c.phone = "79991234567"

	if err := f.engine.Advance(ctx, c, taken.Key()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.State() != StateAwaitingSlot {
		t.Errorf("state = %s, want %s", c.State(), StateAwaitingSlot)
	}
	if got := f.channel.last(t).text; got != msgSlotTaken {
		t.Errorf("last message = %q, want %q", got, msgSlotTaken)
	}
	if len(stale.bookings) != 1 {
		t.Errorf("store gained a booking for an already-taken slot")
	}
}

func TestAdvance_AllSlotsTakenClosesConversation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cal, _ := calendar.New([]string{"9:15", "12:00", "15:00"}, 7, time.Sunday, time.UTC)
	for _, s := range cal.Generate(f.now) {
		f.store.bookings = append(f.store.bookings, &model.Booking{
			SlotKey:   s.Key(),
			SlotStart: s.Start,
		})
	}

	c := f.conversation()
	c.setState(StateAwaitingPhone)
	c.name = "Ann"

	if err := f.engine.Advance(ctx, c, "79991234567"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.State() != StateClosed {
		t.Errorf("state = %s, want %s", c.State(), StateClosed)
	}
	if c.State() == StateCompleted {
		t.Error("exhausted availability must not count as a completed booking")
	}
	if got := f.channel.last(t).text; got != msgAllTaken {
		t.Errorf("last message = %q, want %q", got, msgAllTaken)
	}
}

var _ chat.Channel = (*recordingChannel)(nil)
var _ chat.Notifier = (*mockNotifier)(nil)
var _ store.BookingStore = (*fakeStore)(nil)
