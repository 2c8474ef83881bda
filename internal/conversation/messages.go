package conversation

import (
	"fmt"
	"strings"
	"zapis/pkg/model"
)

const (
	msgWelcome = "Hello! Let's book an appointment. What is your name?"
	msgAskName = "Please tell me your name."

	msgInvalidPhone = "That doesn't look right. Please send your phone number as exactly 11 digits, for example 79991234567."

	msgChooseSlot   = "Choose a date and time:"
	msgPickFromList = "Please pick a date and time from the list:"
	msgSlotTaken    = "Sorry, that time was just taken. Please pick another one:"
	msgAllTaken     = "Unfortunately, all dates are taken. Please try again later."

	msgStoreTrouble = "Something went wrong while saving your booking. Please try again in a minute."

	msgStartHint = "Send /start to book an appointment, or /slots to see free dates."
	msgNoSlots   = "No free dates right now. Please check back later."
)

func askPhone(name string) string {
	return fmt.Sprintf("Nice to meet you, %s! Please send your phone number (11 digits).", name)
}

func bookingConfirmed(slotKey string) string {
	return fmt.Sprintf("Done! You are booked for %s. We will remind you before the appointment.", slotKey)
}

func slotList(slots []model.Slot) string {
	return "Free dates and times:\n" + strings.Join(model.Keys(slots), "\n")
}
