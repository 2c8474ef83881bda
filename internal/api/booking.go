package api

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"zapis/internal/store"
	apperrors "zapis/pkg/errors"
	httputil "zapis/pkg/http"
	"zapis/pkg/logger"
)

// BookingHandler exposes the read-only export of persisted bookings.
// Bookings are only ever created through the dialogue, so there is no write
// surface here.
type BookingHandler struct {
	pager store.BookingPager
	log   *logger.Logger
}

func NewBookingHandler(pager store.BookingPager, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		pager: pager,
		log:   log,
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	bookings, total, err := h.pager.ListPage(r.Context(), limit, offset)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			err = apperrors.StoreUnavailable(err)
		}
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/bookings", h.GetAll)
}
