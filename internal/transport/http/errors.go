package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cimillas/events-api/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codePayloadTooLarge    = "payload_too_large"
	codeValidationFailed   = "validation_failed"
	codeInvalidID          = "invalid_id"
	codeStoreUnavailable   = "store_unavailable"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

// Fixed messages returned for a failed operation, whatever the cause.
const (
	msgCreateFailed = "creation failed"
	msgFetchFailed  = "fetch failed"
	msgUpdateFailed = "update failed"
	msgDeleteFailed = "deletion failed"
)

// StatusMode selects how operation failures map to HTTP statuses.
type StatusMode int

const (
	// StatusFlat answers every operation failure with 500. The error code in
	// the body still tells the kinds apart.
	StatusFlat StatusMode = iota
	// StatusTyped answers validation and malformed ids with 400 and an
	// unreachable store with 503.
	StatusTyped
)

func ParseStatusMode(s string) (StatusMode, error) {
	switch s {
	case "", "flat":
		return StatusFlat, nil
	case "typed":
		return StatusTyped, nil
	default:
		return StatusFlat, fmt.Errorf("unknown error status mode %q", s)
	}
}

func (m StatusMode) String() string {
	if m == StatusTyped {
		return "typed"
	}
	return "flat"
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classify maps an operation error to its code and the status for mode.
func classify(err error, mode StatusMode) (int, string) {
	var (
		code   = codeInternalError
		status = http.StatusInternalServerError
	)
	switch {
	case errors.Is(err, domain.ErrValidation):
		code, status = codeValidationFailed, http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidID):
		code, status = codeInvalidID, http.StatusBadRequest
	case errors.Is(err, domain.ErrStoreUnavailable):
		code, status = codeStoreUnavailable, http.StatusServiceUnavailable
	}
	if mode == StatusFlat {
		status = http.StatusInternalServerError
	}
	return status, code
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
