package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
	"zapis/pkg/client"
	"zapis/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RequestTimeout  time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Slot grid
	SlotTimes       []string
	HorizonDays     int
	BlackoutWeekday time.Weekday
	Timezone        string
	Location        *time.Location

	ReminderLead  time.Duration
	ReminderCycle time.Duration

	ConversationIdleTTL time.Duration

	OperatorChatID    string
	ChatInboundTopic  string
	ChatOutboundTopic string
	ChatConsumerGroup string
	ChatDLQTopic      string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RequestTimeout:  getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		SlotTimes:   splitAndTrim(getEnvStr(EnvSlotTimes, DefaultSlotTimes)),
		HorizonDays: getEnvNum(EnvHorizonDays, DefaultHorizonDays),
		Timezone:    getEnvStr(EnvTimezone, DefaultTimezone),

		ReminderLead:  getEnvDuration(EnvReminderLead, DefaultReminderLead),
		ReminderCycle: getEnvDuration(EnvReminderCycle, DefaultReminderCycle),

		ConversationIdleTTL: getEnvDuration(EnvConversationIdleTTL, DefaultConversationIdleTTL),

		OperatorChatID:    getEnvStr(EnvOperatorChatID, ""),
		ChatInboundTopic:  getEnvStr(EnvChatInboundTopic, DefaultChatInboundTopic),
		ChatOutboundTopic: getEnvStr(EnvChatOutboundTopic, DefaultChatOutboundTopic),
		ChatConsumerGroup: getEnvStr(EnvChatConsumerGroup, DefaultChatConsumerGroup),
		ChatDLQTopic:      getEnvStr(EnvChatDLQTopic, ""),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, logger.INFO),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	weekday, err := parseWeekday(getEnvStr(EnvBlackoutWeekday, DefaultBlackoutWeekday))
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.BlackoutWeekday = weekday

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		cfg.Log.Fatal("Failed to load operating timezone", "timezone", cfg.Timezone, "error", err)
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

var timeOfDayRegex = regexp.MustCompile(`^([0-9]|[01][0-9]|2[0-3]):[0-5][0-9]$`)

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if len(cfg.SlotTimes) == 0 {
		errors = append(errors, "SlotTimes cannot be empty")
	}
	for _, t := range cfg.SlotTimes {
		if !timeOfDayRegex.MatchString(t) {
			errors = append(errors, fmt.Sprintf("SlotTimes entries must be in H:MM or HH:MM format, got: %s", t))
		}
	}
	if cfg.HorizonDays < 0 {
		errors = append(errors, fmt.Sprintf("HorizonDays cannot be negative, got: %d", cfg.HorizonDays))
	}

	if cfg.ReminderLead <= 0 {
		errors = append(errors, fmt.Sprintf("ReminderLead must be positive, got: %s", cfg.ReminderLead))
	}
	if cfg.ReminderCycle <= 0 {
		errors = append(errors, fmt.Sprintf("ReminderCycle must be positive, got: %s", cfg.ReminderCycle))
	}
	if cfg.ConversationIdleTTL <= 0 {
		errors = append(errors, fmt.Sprintf("ConversationIdleTTL must be positive, got: %s", cfg.ConversationIdleTTL))
	}

	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.ChatInboundTopic == "" {
		errors = append(errors, "ChatInboundTopic cannot be empty")
	}
	if cfg.ChatOutboundTopic == "" {
		errors = append(errors, "ChatOutboundTopic cannot be empty")
	}
	if cfg.ChatConsumerGroup == "" {
		errors = append(errors, "ChatConsumerGroup cannot be empty")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"slot_times", strings.Join(cfg.SlotTimes, ","),
		"horizon_days", cfg.HorizonDays,
		"blackout_weekday", cfg.BlackoutWeekday.String(),
		"timezone", cfg.Timezone,
		"reminder_lead", cfg.ReminderLead,
		"reminder_cycle", cfg.ReminderCycle,
		"conversation_idle_ttl", cfg.ConversationIdleTTL,
		"operator_chat_set", cfg.OperatorChatID != "",
		"chat_inbound_topic", cfg.ChatInboundTopic,
		"chat_outbound_topic", cfg.ChatOutboundTopic,
		"chat_consumer_group", cfg.ChatConsumerGroup,
		"request_timeout", cfg.RequestTimeout,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func parseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("BlackoutWeekday must be a weekday name (e.g. Sunday), got: %s", name)
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
