package api

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"zapis/internal/availability"
	httputil "zapis/pkg/http"
	"zapis/pkg/logger"
	"zapis/pkg/model"
)

type AvailabilityResponse struct {
	Slots []string `json:"slots"`
	Count int      `json:"count"`
}

// AvailabilityHandler answers the same availability query the dialogue uses,
// over HTTP. The listing is informational, so a failed busy-set reload falls
// back to the last known set instead of failing the request.
type AvailabilityHandler struct {
	index *availability.Index
	log   *logger.Logger

	now func() time.Time
}

func NewAvailabilityHandler(index *availability.Index, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		index: index,
		log:   log,
		now:   time.Now,
	}
}

func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.index.Reload(r.Context()); err != nil {
		h.log.Error("Busy-set reload failed for availability request, using last known set",
			"error", err,
			"path", r.URL.Path,
		)
	}

	keys := model.Keys(h.index.AvailableSlots(h.now()))
	if err := httputil.WriteSuccess(w, AvailabilityResponse{
		Slots: keys,
		Count: len(keys),
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/availability", h.GetAvailability)
}
