// Package handlers is the HTTP edge: request decoding, auth checks, and the
// mapping from engine error codes to status codes. No business rules live
// here.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stkyrillos/parish-api/internal/booking"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

// writeBookingError maps the engine's error taxonomy onto HTTP statuses:
// conflicts are 409, internal faults 500, everything else is the client's
// form (400).
func writeBookingError(w http.ResponseWriter, err error) {
	var be *booking.Error
	if !errors.As(err, &be) {
		writeError(w, http.StatusInternalServerError, booking.CodeInternal, "internal error")
		return
	}
	status := http.StatusBadRequest
	switch be.Code {
	case booking.CodeSlotUnavailable:
		status = http.StatusConflict
	case booking.CodeNotFound:
		status = http.StatusNotFound
	case booking.CodeInternal:
		status = http.StatusInternalServerError
	}
	writeError(w, status, be.Code, be.Message)
}
