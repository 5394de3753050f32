// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here, together with
// the one place that decides which HTTP status an error deserves.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Gun2717/StudentManagement/internal/types"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a student, a list, …).
// Error responses always look like:
//
//	{ "status": "error", "error": "student not found: SV001", "timestamp": 1760600000000 }
//
// Timestamp is Unix milliseconds.
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status    string `json:"status"` // "ok" or "error"
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Status string constants. Use these instead of raw string literals so
// a typo is caught by the compiler rather than silently sending "eroor".
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// internalMessage replaces the detail of infrastructure errors, which
// stays in the server log.
const internalMessage = "internal server error"

// now is swapped in tests.
var now = time.Now

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// OK is the success envelope for endpoints with nothing else to return.
func OK() Response {
	return Response{Status: StatusOK, Timestamp: now().UnixMilli()}
}

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status:    StatusError,
		Error:     err.Error(),
		Timestamp: now().UnixMilli(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError converts a slice of validator.FieldError values into
// a single human-readable Response. It is used for request payloads
// that are not domain records (login forms and the like); domain records
// are checked by the validation package and arrive here as
// *types.DomainError.
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required", "notblank":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "email", "studentemail":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a valid email address", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status:    StatusError,
		Error:     strings.Join(errMessages, ", "),
		Timestamp: now().UnixMilli(),
	}
}

// StatusFor maps an error to its HTTP status:
//
//	validation, duplicate key → 400
//	not found                 → 404
//	bad credentials           → 401
//	locked account            → 403
//	anything else             → 500
func StatusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case types.IsValidation(err), types.IsAlreadyExists(err), errors.As(err, &verrs):
		return http.StatusBadRequest
	case types.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrAccountLocked):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err with the status StatusFor picks. Domain errors are
// sent verbatim; anything that maps to 500 is logged with its detail
// and sent as a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	var verrs validator.ValidationErrors
	switch {
	case status == http.StatusInternalServerError:
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", RequestID(r.Context())),
			slog.String("error", err.Error()),
		)
		WriteJSON(w, status, GeneralError(errors.New(internalMessage)))
	case errors.As(err, &verrs):
		WriteJSON(w, status, ValidationError(verrs))
	default:
		WriteJSON(w, status, GeneralError(err))
	}
}
