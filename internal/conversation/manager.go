package conversation

import (
	"context"
	"strings"
	"sync"
	"time"
	"zapis/internal/availability"
	"zapis/internal/chat"
	"zapis/pkg/kafka"
	"zapis/pkg/logger"
	"zapis/pkg/sanitizer"
)

// Commands a user can send outside the dialogue flow.
const (
	cmdStart = "/start"
	cmdSlots = "/slots"
)

// Manager owns the conversation instances, one per chat. It routes each
// inbound message to its chat's conversation, creating and discarding
// instances as dialogues start and finish.
//
// Messages arrive from a single consumer loop, so transitions on one chat are
// applied strictly in arrival order and never concurrently.
type Manager struct {
	engine  *Engine
	channel chat.Channel
	index   *availability.Index
	log     *logger.Logger

	idleTTL time.Duration
	now     func() time.Time

	mu     sync.Mutex
	active map[string]*Conversation
	stopCh chan struct{}
}

func NewManager(
	engine *Engine,
	channel chat.Channel,
	index *availability.Index,
	idleTTL time.Duration,
	log *logger.Logger,
) *Manager {
	m := &Manager{
		engine:  engine,
		channel: channel,
		index:   index,
		log:     log,
		idleTTL: idleTTL,
		now:     time.Now,
		active:  make(map[string]*Conversation),
		stopCh:  make(chan struct{}),
	}

	go m.evictIdle()

	return m
}

// HandleMessage applies one inbound message: commands are handled directly,
// anything else feeds the chat's conversation.
func (m *Manager) HandleMessage(ctx context.Context, msg chat.InboundMessage) error {
	if msg.ChatID == "" {
		m.log.Warn("Dropping inbound message without chat id")
		return nil
	}

	text := sanitizer.TrimAndNormalize(msg.Text)

	switch strings.ToLower(text) {
	case cmdStart:
		return m.startConversation(ctx, msg)
	case cmdSlots:
		return m.showSlots(ctx, msg.ChatID)
	}

	m.mu.Lock()
	c, exists := m.active[msg.ChatID]
	m.mu.Unlock()

	if !exists {
		return m.channel.SendPlain(ctx, msg.ChatID, msgStartHint)
	}

	err := m.engine.Advance(ctx, c, text)

	if c.Done() {
		m.mu.Lock()
		delete(m.active, msg.ChatID)
		m.mu.Unlock()
	}
	return err
}

// MessageHandler adapts HandleMessage to the consumer loop.
func (m *Manager) MessageHandler() kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var inbound chat.InboundMessage
		if err := msg.DecodeValue(&inbound); err != nil {
			m.log.Error("Failed to decode inbound message",
				"event_id", msg.GetEventID(), "error", err)
			// malformed payload, retrying will not help
			return nil
		}
		return m.HandleMessage(ctx, inbound)
	}
}

// ActiveCount returns the number of in-flight conversations.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Stop terminates the idle-eviction goroutine.
func (m *Manager) Stop() {
	close(m.stopCh)
}

// startConversation begins a fresh dialogue, replacing any in-flight one for
// the chat.
func (m *Manager) startConversation(ctx context.Context, msg chat.InboundMessage) error {
	c := newConversation(msg.ChatID, msg.UserID, m.now())

	m.mu.Lock()
	m.active[msg.ChatID] = c
	m.mu.Unlock()

	return m.channel.SendPrompt(ctx, msg.ChatID, msgWelcome, nil)
}

// showSlots answers the availability query without touching any
// conversation. The list is informational, so last-known-good on a failed
// reload is fine here.
func (m *Manager) showSlots(ctx context.Context, chatID string) error {
	if err := m.index.Reload(ctx); err != nil {
		m.log.Error("Busy-set reload failed for availability query",
			"chat_id", chatID, "error", err)
	}

	slots := m.index.AvailableSlots(m.now())
	if len(slots) == 0 {
		return m.channel.SendPlain(ctx, chatID, msgNoSlots)
	}
	return m.channel.SendPlain(ctx, chatID, slotList(slots))
}

func (m *Manager) evictIdle() {
	ticker := time.NewTicker(m.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := m.now()
			m.mu.Lock()
			for chatID, c := range m.active {
				if c.idleSince(now) > m.idleTTL {
					delete(m.active, chatID)
					m.log.Info("Evicted idle conversation",
						"chat_id", chatID, "state", c.State())
				}
			}
			m.mu.Unlock()
		case <-m.stopCh:
			return
		}
	}
}
