package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout  = "REQUEST_TIMEOUT"
	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvSlotTimes       = "SLOT_TIMES"
	EnvHorizonDays     = "SLOT_HORIZON_DAYS"
	EnvBlackoutWeekday = "SLOT_BLACKOUT_WEEKDAY"
	EnvTimezone        = "SLOT_TIMEZONE"

	EnvReminderLead  = "REMINDER_LEAD"
	EnvReminderCycle = "REMINDER_CYCLE"

	EnvConversationIdleTTL = "CONVERSATION_IDLE_TTL"

	EnvOperatorChatID    = "OPERATOR_CHAT_ID"
	EnvChatInboundTopic  = "CHAT_INBOUND_TOPIC"
	EnvChatOutboundTopic = "CHAT_OUTBOUND_TOPIC"
	EnvChatConsumerGroup = "CHAT_CONSUMER_GROUP"
	EnvChatDLQTopic      = "CHAT_DLQ_TOPIC"
)
