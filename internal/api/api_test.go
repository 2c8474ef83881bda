package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"zapis/internal/availability"
	"zapis/internal/calendar"
	"zapis/internal/store"
	"zapis/pkg/logger"
	"zapis/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// Mock store for testing
type mockBookingStore struct {
	listBusyFunc func(ctx context.Context) ([]string, error)
}

func (m *mockBookingStore) ListBusySlotKeys(ctx context.Context) ([]string, error) {
	if m.listBusyFunc != nil {
		return m.listBusyFunc(ctx)
	}
	return nil, nil
}

func (m *mockBookingStore) Append(ctx context.Context, booking *model.Booking) error {
	return nil
}

func (m *mockBookingStore) ListAll(ctx context.Context) ([]*model.Booking, error) {
	return nil, nil
}

type mockPager struct {
	listPageFunc func(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
}

func (m *mockPager) ListPage(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	if m.listPageFunc != nil {
		return m.listPageFunc(ctx, limit, offset)
	}
	return []*model.Booking{}, 0, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
}

func TestGetAvailability_ListsFreeSlots(t *testing.T) {
	cal, err := calendar.New([]string{"9:15", "12:00", "15:00"}, 7, time.Sunday, time.UTC)
	if err != nil {
		t.Fatalf("unexpected calendar error: %v", err)
	}

	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	idx := availability.NewIndex(&mockBookingStore{
		listBusyFunc: func(ctx context.Context) ([]string, error) {
			return []string{"02-03-2026 09:15"}, nil
		},
	}, cal)

	h := NewAvailabilityHandler(idx, testLogger())
	h.now = func() time.Time { return now }

	router := httprouter.New()
	h.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/availability", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Data AvailabilityResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Data.Count != len(body.Data.Slots) {
		t.Errorf("count = %d but %d slots listed", body.Data.Count, len(body.Data.Slots))
	}
	for _, key := range body.Data.Slots {
		if key == "02-03-2026 09:15" {
			t.Errorf("busy slot %s listed as available", key)
		}
	}
	if len(body.Data.Slots) == 0 {
		t.Error("expected free slots in the window")
	}
}

func TestGetAll_PassesNormalizedPagination(t *testing.T) {
	var receivedLimit int
	var receivedOffset int64

	pager := &mockPager{
		listPageFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
			receivedLimit = limit
			receivedOffset = offset
			return []*model.Booking{}, 0, nil
		},
	}

	h := NewBookingHandler(pager, testLogger())
	router := httprouter.New()
	h.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/bookings?limit=10&offset=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if receivedLimit != 10 {
		t.Errorf("limit = %d, want 10", receivedLimit)
	}
	if receivedOffset != 5 {
		t.Errorf("offset = %d, want 5", receivedOffset)
	}
}

func TestGetAll_StoreOutageReportsServiceUnavailable(t *testing.T) {
	pager := &mockPager{
		listPageFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
			return nil, 0, fmt.Errorf("count bookings: %w", store.ErrUnavailable)
		},
	}

	h := NewBookingHandler(pager, testLogger())
	router := httprouter.New()
	h.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Error != "Booking store is temporarily unavailable" {
		t.Errorf("error message = %q, want store outage message", body.Error)
	}
}

func TestGetAll_InvalidLimitRejected(t *testing.T) {
	called := false
	pager := &mockPager{
		listPageFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
			called = true
			return nil, 0, nil
		},
	}

	h := NewBookingHandler(pager, testLogger())
	router := httprouter.New()
	h.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/bookings?limit=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if called {
		t.Error("store was queried despite invalid parameters")
	}
}
