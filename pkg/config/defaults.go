package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "zapis"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRequestTimeout  = 30 * time.Second
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Slot grid: three fixed appointment times per day, a month ahead,
	// closed on Sundays, clinic local time.
	DefaultSlotTimes       = "9:15,12:00,15:00"
	DefaultHorizonDays     = 31
	DefaultBlackoutWeekday = "Sunday"
	DefaultTimezone        = "Asia/Yakutsk"

	DefaultReminderLead  = 11*time.Hour + 30*time.Minute
	DefaultReminderCycle = 30 * time.Second

	DefaultConversationIdleTTL = 1 * time.Hour

	DefaultChatInboundTopic  = "chat.inbound"
	DefaultChatOutboundTopic = "chat.outbound"
	DefaultChatConsumerGroup = "zapis-bot"

	DefaultPaginationLimit = 100
)
