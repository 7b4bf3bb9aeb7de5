package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"billing/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps service errors onto HTTP statuses. Validation and
// duplicate-account failures are client errors; unknown accounts are 404;
// everything else is reported with fallback and a 500.
func writeDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "Customer not found")
	case errors.Is(err, core.ErrDuplicateAccount),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidQuantity),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyContact),
		errors.Is(err, core.ErrEmptyAccountID),
		errors.Is(err, core.ErrEmptyItem):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// writeDecodeError maps request-body decoding failures. Domain sentinels
// raised by custom unmarshalers keep their message; syntax and type errors
// from the JSON decoder are reported generically. Either way it is the
// caller's input that is wrong, so the status is always 400.
func writeDecodeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadRequest, "Invalid request body")
	}
}

func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1 // remove character
		}
		return r
	}, s)
	return result
}

// quantity accepts both a JSON number and a quoted digit string, the
// way browser form submissions arrive.
type quantity int64

func (q *quantity) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "null" {
		return core.ErrInvalidQuantity
	}
	n, err := core.ParseQuantity(raw)
	if err != nil {
		return err
	}
	*q = quantity(n)
	return nil
}
