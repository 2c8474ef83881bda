package chat

import (
	"context"
	"fmt"
	"time"
	"zapis/pkg/errors"
	"zapis/pkg/kafka"
	"zapis/pkg/logger"
	"zapis/pkg/model"
)

const publisherSource = "zapis-bot"

// Publisher implements Channel and Notifier on top of a Kafka producer.
// Messages are keyed by chat id so every reply to one chat lands on the
// same partition and the relay sees them in order.
type Publisher struct {
	producer       *kafka.Producer
	operatorChatID string
	log            *logger.Logger
}

func NewPublisher(producer *kafka.Producer, operatorChatID string, log *logger.Logger) *Publisher {
	return &Publisher{
		producer:       producer,
		operatorChatID: operatorChatID,
		log:            log,
	}
}

func (p *Publisher) SendPrompt(ctx context.Context, chatID, text string, choices []string) error {
	return p.publish(ctx, OutboundMessage{
		ChatID:  chatID,
		Text:    text,
		Choices: choices,
		Kind:    KindPrompt,
	})
}

func (p *Publisher) SendPlain(ctx context.Context, chatID, text string) error {
	return p.publish(ctx, OutboundMessage{
		ChatID: chatID,
		Text:   text,
		Kind:   KindMessage,
	})
}

func (p *Publisher) Remind(ctx context.Context, booking *model.Booking) error {
	return p.publish(ctx, OutboundMessage{
		ChatID: booking.ChatID,
		Text:   fmt.Sprintf("Reminder: you have an appointment on %s.", booking.SlotKey),
		Kind:   KindReminder,
	})
}

func (p *Publisher) NotifyOperator(ctx context.Context, booking *model.Booking) error {
	if p.operatorChatID == "" {
		p.log.Warn("Operator chat not configured, skipping booking notification",
			"booking_id", booking.ID)
		return nil
	}
	return p.publish(ctx, OutboundMessage{
		ChatID: p.operatorChatID,
		Text: fmt.Sprintf("New booking: %s, phone %s, slot %s.",
			booking.Name, booking.Phone, booking.SlotKey),
		Kind: KindOperator,
	})
}

func (p *Publisher) publish(ctx context.Context, out OutboundMessage) error {
	out.SentAt = time.Now().UTC()

	msg := kafka.NewMessage().
		WithKey(out.ChatID).
		WithValue(out).
		WithEventType("chat.outbound." + out.Kind).
		WithSource(publisherSource).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish outbound message",
			"chat_id", out.ChatID,
			"kind", out.Kind,
			"error", err)
		return errors.NotifyFailed(err)
	}
	return nil
}
