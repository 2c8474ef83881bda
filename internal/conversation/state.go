// Package conversation drives the booking dialogue: a per-chat state machine
// that collects a name, a phone number and a slot choice, then persists the
// booking and notifies the operator.
package conversation

import (
	"sync"
	"time"
)

// State identifies the current step of a booking dialogue.
type State string

const (
	StateAwaitingName  State = "awaiting_name"
	StateAwaitingPhone State = "awaiting_phone"
	StateAwaitingSlot  State = "awaiting_slot"

	// StateCompleted means a booking was written. StateClosed means the
	// dialogue ended without one (no free slots left). The two are distinct
	// terminal states and must not be conflated.
	StateCompleted State = "completed"
	StateClosed    State = "closed"
)

// Conversation is the in-memory record of one chat's booking dialogue. It
// lives only as long as the process; a restart mid-flow loses progress, which
// is acceptable because nothing is reserved until the final write.
//
// mu guards state and lastActive, which the idle-eviction sweep reads while
// the dispatch goroutine advances the dialogue. name and phone are only ever
// touched by the dispatch goroutine.
type Conversation struct {
	chatID string
	userID string

	mu         sync.Mutex
	state      State
	lastActive time.Time

	name  string
	phone string
}

func newConversation(chatID, userID string, now time.Time) *Conversation {
	if userID == "" {
		userID = chatID
	}
	return &Conversation{
		chatID:     chatID,
		userID:     userID,
		state:      StateAwaitingName,
		lastActive: now,
	}
}

func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conversation) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Done reports whether the dialogue reached a terminal state, with or
// without a booking.
func (c *Conversation) Done() bool {
	s := c.State()
	return s == StateCompleted || s == StateClosed
}

func (c *Conversation) touch(now time.Time) {
	c.mu.Lock()
	c.lastActive = now
	c.mu.Unlock()
}

func (c *Conversation) idleSince(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastActive)
}
