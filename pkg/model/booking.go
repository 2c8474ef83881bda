package model

import (
	"time"
)

// Booking is the persisted record of a claimed slot. Created exactly once when
// a user picks a free slot, appended to the store, never mutated afterward.
// The store is the single source of truth for which slots are busy and who to
// remind.
type Booking struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	Name      string    `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Phone     string    `json:"phone" bson:"phone" validate:"required,len=11,numeric"`
	SlotKey   string    `json:"slot_key" bson:"slot_key" validate:"required"`
	SlotStart time.Time `json:"slot_start" bson:"slot_start" validate:"required"`
	ChatID    string    `json:"chat_id" bson:"chat_id" validate:"required"`
	UserID    string    `json:"user_id" bson:"user_id" validate:"required"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

func (b *Booking) Slot() Slot {
	return Slot{Start: b.SlotStart}
}
