package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aretw0/receipt/pkg/core"
)

// Error codes carried in the "code" field of every error body.
const (
	CodeInvalidEntry     = "invalid_entry"
	CodeUnsupported      = "unsupported_operation"
	CodeStoreUnavailable = "store_unavailable"
	CodeStoreCorrupt     = "store_corrupt"
	CodeInternal         = "internal"
)

// ErrorBody is the JSON shape of a failed request.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classify maps a domain error to its HTTP status and code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrInvalidEntry):
		return http.StatusBadRequest, CodeInvalidEntry
	case errors.Is(err, core.ErrUnsupportedOperation), errors.Is(err, core.ErrReadOnly):
		return http.StatusMethodNotAllowed, CodeUnsupported
	case errors.Is(err, core.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, CodeStoreUnavailable
	case errors.Is(err, core.ErrStoreCorrupt):
		return http.StatusInternalServerError, CodeStoreCorrupt
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status == http.StatusMethodNotAllowed && w.Header().Get("Allow") == "" {
		w.Header().Set("Allow", "GET")
	}
	writeJSON(w, status, ErrorBody{Error: err.Error(), Code: code})
}
