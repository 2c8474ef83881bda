package conversation

import (
	"context"
	"errors"
	"time"
	"zapis/internal/availability"
	"zapis/internal/chat"
	"zapis/internal/store"
	"zapis/pkg/logger"
	"zapis/pkg/model"
	"zapis/pkg/sanitizer"

	"github.com/google/uuid"
)

// Engine applies one inbound message to a conversation and performs the
// resulting side effects: prompts back to the user, the final store append,
// the operator notification.
//
// An unexpected input never advances the state; the engine re-prompts and the
// conversation stays where it was.
type Engine struct {
	index     *availability.Index
	store     store.BookingStore
	channel   chat.Channel
	notifier  chat.Notifier
	validator *BookingValidator
	log       *logger.Logger

	now func() time.Time
}

func NewEngine(
	index *availability.Index,
	bookingStore store.BookingStore,
	channel chat.Channel,
	notifier chat.Notifier,
	bookingValidator *BookingValidator,
	log *logger.Logger,
) *Engine {
	return &Engine{
		index:     index,
		store:     bookingStore,
		channel:   channel,
		notifier:  notifier,
		validator: bookingValidator,
		log:       log,
		now:       time.Now,
	}
}

// Advance feeds one user message into the conversation. The returned error is
// a delivery failure on the outbound channel; domain problems (bad phone,
// taken slot) are handled inside as re-prompts.
func (e *Engine) Advance(ctx context.Context, c *Conversation, text string) error {
	text = sanitizer.TrimAndNormalize(text)
	c.touch(e.now())

	switch c.State() {
	case StateAwaitingName:
		return e.stepName(ctx, c, text)
	case StateAwaitingPhone:
		return e.stepPhone(ctx, c, text)
	case StateAwaitingSlot:
		return e.stepSlot(ctx, c, text)
	default:
		// terminal; the manager drops the conversation after this
		return nil
	}
}

func (e *Engine) stepName(ctx context.Context, c *Conversation, text string) error {
	if text == "" {
		return e.channel.SendPrompt(ctx, c.chatID, msgAskName, nil)
	}

	c.name = sanitizer.NormalizeName(text)
	c.setState(StateAwaitingPhone)
	return e.channel.SendPrompt(ctx, c.chatID, askPhone(c.name), nil)
}

func (e *Engine) stepPhone(ctx context.Context, c *Conversation, text string) error {
	// The number is taken as typed: exactly 11 digits, no separators, no
	// leading plus. Formatting variants are rejected, not rewritten.
	if !sanitizer.IsElevenDigits(text) {
		e.log.Debug("Rejected phone input", "chat_id", c.chatID)
		return e.channel.SendPrompt(ctx, c.chatID, msgInvalidPhone, nil)
	}

	c.phone = text
	c.setState(StateAwaitingSlot)
	return e.presentSlots(ctx, c, msgChooseSlot)
}

func (e *Engine) stepSlot(ctx context.Context, c *Conversation, text string) error {
	// Re-check against a fresh snapshot, not the list shown earlier. Two
	// chats can race for the same key; the store's unique index is the final
	// arbiter, this check just avoids most collisions up front.
	if err := e.index.Reload(ctx); err != nil {
		e.log.Error("Busy-set reload failed before slot check, using last known set",
			"chat_id", c.chatID, "error", err)
	}

	slots := e.index.AvailableSlots(e.now())
	if len(slots) == 0 {
		c.setState(StateClosed)
		return e.channel.SendPlain(ctx, c.chatID, msgAllTaken)
	}

	chosen, ok := findSlot(slots, text)
	if !ok {
		return e.channel.SendPrompt(ctx, c.chatID, msgPickFromList, model.Keys(slots))
	}

	return e.book(ctx, c, chosen)
}

func (e *Engine) book(ctx context.Context, c *Conversation, slot model.Slot) error {
	booking := &model.Booking{
		ID:        uuid.New().String(),
		Name:      c.name,
		Phone:     c.phone,
		SlotKey:   slot.Key(),
		SlotStart: slot.Start,
		ChatID:    c.chatID,
		UserID:    c.userID,
	}

	if err := e.validator.Validate(booking); err != nil {
		e.log.Error("Assembled booking failed validation",
			"chat_id", c.chatID, "error", err)
		return e.channel.SendPlain(ctx, c.chatID, msgStoreTrouble)
	}

	if err := e.store.Append(ctx, booking); err != nil {
		if errors.Is(err, store.ErrSlotTaken) {
			e.log.Info("Slot taken between check and append",
				"chat_id", c.chatID, "slot_key", booking.SlotKey)
			return e.loseRace(ctx, c)
		}
		e.log.Error("Booking append failed",
			"chat_id", c.chatID, "slot_key", booking.SlotKey, "error", err)
		return e.channel.SendPlain(ctx, c.chatID, msgStoreTrouble)
	}

	if err := e.notifier.NotifyOperator(ctx, booking); err != nil {
		// booking is already persisted, the user still gets a confirmation
		e.log.Error("Operator notification failed",
			"booking_id", booking.ID, "error", err)
	}

	c.setState(StateCompleted)
	e.log.Info("Booking completed",
		"booking_id", booking.ID,
		"chat_id", c.chatID,
		"slot_key", booking.SlotKey)
	return e.channel.SendPlain(ctx, c.chatID, bookingConfirmed(booking.SlotKey))
}

// loseRace refreshes the busy set after a duplicate-key rejection and
// re-presents what is still free.
func (e *Engine) loseRace(ctx context.Context, c *Conversation) error {
	if err := e.index.Reload(ctx); err != nil {
		e.log.Error("Busy-set reload failed after lost race",
			"chat_id", c.chatID, "error", err)
	}

	slots := e.index.AvailableSlots(e.now())
	if len(slots) == 0 {
		c.setState(StateClosed)
		return e.channel.SendPlain(ctx, c.chatID, msgAllTaken)
	}
	return e.channel.SendPrompt(ctx, c.chatID, msgSlotTaken, model.Keys(slots))
}

// presentSlots reloads the busy set and shows the free slots, ending the
// conversation if nothing is left.
func (e *Engine) presentSlots(ctx context.Context, c *Conversation, prompt string) error {
	if err := e.index.Reload(ctx); err != nil {
		e.log.Error("Busy-set reload failed before presenting slots, using last known set",
			"chat_id", c.chatID, "error", err)
	}

	slots := e.index.AvailableSlots(e.now())
	if len(slots) == 0 {
		c.setState(StateClosed)
		return e.channel.SendPlain(ctx, c.chatID, msgAllTaken)
	}
	return e.channel.SendPrompt(ctx, c.chatID, prompt, model.Keys(slots))
}

func findSlot(slots []model.Slot, key string) (model.Slot, bool) {
	for _, s := range slots {
		if s.Key() == key {
			return s, true
		}
	}
	return model.Slot{}, false
}
