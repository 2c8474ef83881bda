package api

import (
	"github.com/julienschmidt/httprouter"
)

// Handler groups the application routes behind a single registration point.
// Health probes are registered separately so they bypass the middleware
// stack.
type Handler struct {
	availability *AvailabilityHandler
	bookings     *BookingHandler
}

func NewHandler(availability *AvailabilityHandler, bookings *BookingHandler) *Handler {
	return &Handler{
		availability: availability,
		bookings:     bookings,
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	h.availability.RegisterRoutes(router)
	h.bookings.RegisterRoutes(router)
}
