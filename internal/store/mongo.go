package store

import (
	"context"
	"fmt"
	"time"
	"zapis/pkg/config"
	"zapis/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type MongoBookingStore struct {
	cfg        *config.Config
	collection *mongo.Collection
}

// NewMongoBookingStore returns a BookingStore backed by a MongoDB collection.
// Call EnsureIndexes once at startup before serving traffic.
func NewMongoBookingStore(cfg *config.Config) *MongoBookingStore {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &MongoBookingStore{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// EnsureIndexes creates the unique index on the slot key. The index is the
// atomic "append if slot still free" guard: concurrent appends for the same
// slot resolve to exactly one owner without a process-wide lock.
func (s *MongoBookingStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slot_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create slot_key index: %w", err)
	}
	return nil
}

func (s *MongoBookingStore) ListBusySlotKeys(ctx context.Context) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	values, err := s.collection.Distinct(ctx, "slot_key", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	keys := make([]string, 0, len(values))
	for _, v := range values {
		if key, ok := v.(string); ok && key != "" {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *MongoBookingStore) Append(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := s.withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	_, err := s.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrSlotTaken, booking.SlotKey)
		}
		return fmt.Errorf("failed to append booking: %w", err)
	}
	return nil
}

func (s *MongoBookingStore) ListAll(ctx context.Context) ([]*model.Booking, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "slot_start", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return bookings, nil
}

// ListPage returns a page of bookings plus the total count, newest slot
// first; used by the HTTP export surface.
func (s *MongoBookingStore) ListPage(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	total, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "slot_start", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return bookings, total, nil
}

// withTimeout caps the operation at the configured timeout unless the caller
// already imposed a tighter deadline.
func (s *MongoBookingStore) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}
