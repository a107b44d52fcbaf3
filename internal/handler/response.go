package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// CONSISTENT ERROR FORMAT:
// Every error response from the API has the same shape:
//   {"error": "not_found_remote", "message": "Username not found"}
//
// "error" is the apperror kind (machine-readable), "message" is the banner
// text the page would show.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/profile-lookup/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status must be written before the body; once Encode writes,
// later header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps an error kind to its HTTP status.
//
//	invalid input               → 400
//	not found (cached, remote)  → 404
//	rate limited                → 429
//	transport or server error   → 502
//	anything else               → 500
func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindInvalidInput:
		return http.StatusBadRequest
	case apperror.KindNotFoundCached, apperror.KindNotFoundRemote:
		return http.StatusNotFound
	case apperror.KindRateLimited:
		return http.StatusTooManyRequests
	case apperror.KindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps an error to the appropriate HTTP status code and sends it.
//
// The service layer never knows about HTTP status codes; this is the one
// place the taxonomy is translated.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := statusFor(appErr.Kind)
		message := appErr.BannerText()
		if status == http.StatusInternalServerError {
			// Internal messages may mention file paths or SQL.
			message = "An internal error occurred"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   appErr.Kind.String(),
			Message: message,
			Field:   appErr.Field,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   apperror.KindInternal.String(),
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a JSON request body into dst, rejecting unknown fields
// and bodies over 4 KiB.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 4<<10)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "request body must be a JSON object like {\"handle\":\"octocat\"}")
	}
	return nil
}
