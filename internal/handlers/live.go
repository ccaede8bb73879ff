package handlers

import (
	"log/slog"
	"net/http"

	"github.com/stkyrillos/parish-api/internal/livestream"
)

// LiveHandler serves GET /api/v1/youtube-live for the homepage poller.
type LiveHandler struct {
	svc    *livestream.Service
	logger *slog.Logger
}

func NewLiveHandler(svc *livestream.Service, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{svc: svc, logger: logger}
}

func (h *LiveHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	st, err := h.svc.Status(r.Context())
	if err != nil {
		h.logger.Error("livestream status check failed", "err", err)
		// The poller treats any failure as "not live" rather than erroring
		// the page.
		writeJSON(w, http.StatusInternalServerError, livestream.Status{
			Message: "failed to check live status",
		})
		return
	}
	writeJSON(w, http.StatusOK, st)
}
