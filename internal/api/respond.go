package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Veraticus/spice-ledger/internal/common"
)

// Error kinds reported in the "error" field of error responses.
const (
	ErrorKindValidation = "validation"
	ErrorKindUniqueness = "uniqueness"
	ErrorKindNotFound   = "not_found"
	ErrorKindBadRequest = "bad_request"
	ErrorKindInternal   = "internal"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and error body. Unexpected faults
// are logged and reported with an opaque message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *common.ValidationError
		uerr *common.UniquenessError
		nerr *common.NotFoundError
	)

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   ErrorKindValidation,
			Message: verr.Message,
			Field:   verr.Field,
		})
	case errors.As(err, &uerr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   ErrorKindUniqueness,
			Message: uerr.Error(),
			Field:   "name",
		})
	case errors.As(err, &nerr):
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   ErrorKindNotFound,
			Message: nerr.Error(),
		})
	case errors.Is(err, common.ErrDuplicateEntry):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorKindUniqueness, Message: err.Error()})
	case errors.Is(err, common.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: ErrorKindNotFound, Message: err.Error()})
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   ErrorKindInternal,
			Message: "internal server error",
		})
	}
}

func writeBadRequest(w http.ResponseWriter, field, format string, args ...any) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   ErrorKindBadRequest,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			writeBadRequest(w, "", "request body is required")
			return false
		}
		writeBadRequest(w, "", "invalid JSON body: %v", err)
		return false
	}
	return true
}
