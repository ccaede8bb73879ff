package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/stkyrillos/parish-api/internal/booking"
	"github.com/stkyrillos/parish-api/internal/model"
)

// ConfessionHandler serves the public scheduler endpoints.
type ConfessionHandler struct {
	engine *booking.Engine
}

func NewConfessionHandler(engine *booking.Engine) *ConfessionHandler {
	return &ConfessionHandler{engine: engine}
}

// Availability handles GET /api/v1/confession/availability?startDate=&weeks=.
func (h *ConfessionHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	weeks := 0
	if raw := r.URL.Query().Get("weeks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, booking.CodeValidation, "weeks must be an integer")
			return
		}
		weeks = n
	}

	avail, err := h.engine.GetAvailability(r.Context(), r.URL.Query().Get("startDate"), weeks)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, avail)
}

// Book handles POST /api/v1/confession/book.
func (h *ConfessionHandler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Date      string `json:"date"`
		Time      string `json:"time"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, booking.CodeValidation, "invalid json body")
		return
	}

	conf, err := h.engine.CreateBooking(r.Context(), model.BookingRequest{
		Date:      req.Date,
		Time:      req.Time,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, conf)
}

// Lookup handles GET /api/v1/confession/booking?confirmation=CODE.
func (h *ConfessionHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	b, err := h.engine.Lookup(r.Context(), r.URL.Query().Get("confirmation"))
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":                 b.ID,
		"date":               b.Date,
		"time":               b.Time,
		"firstName":          b.FirstName,
		"lastName":           b.LastName,
		"confirmationNumber": b.ConfirmationNumber,
	})
}

// Cancel handles POST /api/v1/confession/cancel with {"id": "..."}.
func (h *ConfessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, booking.CodeValidation, "invalid json body")
		return
	}

	b, err := h.engine.CancelBooking(r.Context(), req.ID)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"slotId":  b.SlotID,
	})
}
