package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/stkyrillos/parish-api/internal/events"
)

// ScheduleHandler serves the weekly service schedule. Reads are public;
// writes require an admin token.
type ScheduleHandler struct {
	repo   events.Repository
	secret string
	logger *slog.Logger
}

func NewScheduleHandler(repo events.Repository, secret string, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{repo: repo, secret: secret, logger: logger}
}

func (h *ScheduleHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if _, err := BearerClaims(r, h.secret); err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "admin token required")
		return false
	}
	return true
}

// Collection handles GET and POST on /api/v1/schedule.
func (h *ScheduleHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := h.repo.List(r.Context())
		if err != nil {
			h.logger.Error("schedule list failed", "err", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to fetch schedule")
			return
		}
		writeJSON(w, http.StatusOK, list)

	case http.MethodPost:
		if !h.requireAdmin(w, r) {
			return
		}
		e, ok := decodeEvent(w, r)
		if !ok {
			return
		}
		created, err := h.repo.Create(r.Context(), e)
		if err != nil {
			h.writeRepoError(w, err, "failed to create event")
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// Item handles PUT and DELETE on /api/v1/schedule/{id}.
func (h *ScheduleHandler) Item(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/schedule/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if !h.requireAdmin(w, r) {
		return
	}

	switch r.Method {
	case http.MethodPut:
		e, ok := decodeEvent(w, r)
		if !ok {
			return
		}
		updated, err := h.repo.Update(r.Context(), id, e)
		if err != nil {
			h.writeRepoError(w, err, "failed to update event")
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := h.repo.Delete(r.Context(), id); err != nil {
			h.writeRepoError(w, err, "failed to delete event")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func decodeEvent(w http.ResponseWriter, r *http.Request) (events.Event, bool) {
	var req struct {
		DayOfWeek       *int   `json:"dayOfWeek"`
		Time            string `json:"time"`
		SortOrder       *int   `json:"sortOrder"`
		DurationMinutes int    `json:"durationMinutes"`
		Title           string `json:"title"`
		Description     string `json:"description"`
		Location        string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body")
		return events.Event{}, false
	}
	if req.DayOfWeek == nil || req.SortOrder == nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "dayOfWeek (0-6) and sortOrder are required")
		return events.Event{}, false
	}
	return events.Event{
		DayOfWeek:       *req.DayOfWeek,
		Time:            req.Time,
		SortOrder:       *req.SortOrder,
		DurationMinutes: req.DurationMinutes,
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
	}, true
}

func (h *ScheduleHandler) writeRepoError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, events.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "schedule event not found")
		return
	}
	var ve *events.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", ve.Error())
		return
	}
	h.logger.Error("schedule write failed", "err", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
}
