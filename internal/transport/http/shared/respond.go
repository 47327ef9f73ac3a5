// Package shared centralizes JSON encoding, request decoding, and domain
// error translation for all HTTP handlers. Keeping the mapping in one place
// guarantees a consistent error envelope across modules.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "campuspass/pkg/domain-errors"
)

// ErrorResponse is the JSON error envelope returned by every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeBadRequest:       http.StatusBadRequest,
	dErrors.CodeUnauthorized:     http.StatusUnauthorized,
	dErrors.CodeForbidden:        http.StatusForbidden,
	dErrors.CodeNotFound:         http.StatusNotFound,
	dErrors.CodeConflict:         http.StatusConflict,
	dErrors.CodeCapacityExceeded: http.StatusConflict,
	dErrors.CodeRateLimited:      http.StatusTooManyRequests,
	dErrors.CodeEncodingFailed:   http.StatusInternalServerError,
	dErrors.CodeInternal:         http.StatusInternalServerError,
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the standard envelope. Uncoded
// errors collapse into a generic internal error so nothing leaks.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	WriteJSON(w, status, ErrorResponse{
		Error:   string(code),
		Message: dErrors.MessageOf(err),
	})
}

// DecodeJSON decodes a bounded JSON body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
