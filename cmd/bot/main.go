package main

import (
	"context"
	"zapis/internal/api"
	"zapis/internal/availability"
	"zapis/internal/calendar"
	"zapis/internal/chat"
	"zapis/internal/conversation"
	"zapis/internal/reminder"
	"zapis/internal/store"
	"zapis/pkg/app"
	"zapis/pkg/config"
	"zapis/pkg/kafka"
	kafka_config "zapis/pkg/kafka/config"
	kafka_middleware "zapis/pkg/kafka/middleware"
)

const ServiceName = "bot"

func main() {
	cfg := config.Load(ServiceName)
	cfg.LogConfiguration()

	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting booking bot")

	bookingStore := store.NewMongoBookingStore(cfg)
	if err := bookingStore.EnsureIndexes(context.Background()); err != nil {
		cfg.Log.Fatal("Failed to ensure store indexes", "error", err)
	}

	cal, err := calendar.New(cfg.SlotTimes, cfg.HorizonDays, cfg.BlackoutWeekday, cfg.Location)
	if err != nil {
		cfg.Log.Fatal("Invalid slot grid configuration", "error", err)
	}

	index := availability.NewIndex(bookingStore, cal)
	if err := index.Reload(context.Background()); err != nil {
		cfg.Log.Error("Initial busy-set load failed, starting with an empty set", "error", err)
	}

	kafkaCfg := kafka_config.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.ChatOutboundTopic, cfg.ChatDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create outbound producer", "error", err)
	}
	defer producer.Close()
	producer.Use(kafka_middleware.LoggingProducerMiddleware())

	publisher := chat.NewPublisher(producer, cfg.OperatorChatID, cfg.Log)

	engine := conversation.NewEngine(
		index,
		bookingStore,
		publisher,
		publisher,
		conversation.NewBookingValidator(cfg.Log),
		cfg.Log,
	)
	manager := conversation.NewManager(engine, publisher, index, cfg.ConversationIdleTTL, cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.ChatInboundTopic,
		cfg.ChatConsumerGroup,
		cfg.ChatDLQTopic,
		manager.MessageHandler(),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create inbound consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware())

	scheduler := reminder.NewScheduler(
		bookingStore,
		publisher,
		cfg.ReminderLead,
		cfg.ReminderCycle,
		cfg.Log,
	)

	appHandler := api.NewHandler(
		api.NewAvailabilityHandler(index, cfg.Log),
		api.NewBookingHandler(bookingStore, cfg.Log),
	)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, appHandler, consumer, manager, scheduler)
	serverApp.Run()
}
