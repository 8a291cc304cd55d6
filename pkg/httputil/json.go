// Package httputil provides JSON request/response helpers for the HTTP API.
//
// Handlers use [WriteJSON] and [WriteError] so every response carries the
// same envelope, and [ReadJSON] to decode request bodies with a size cap
// and strict field checking.
package httputil

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/matzehuels/tenon/pkg/errors"
)

// MaxBodySize caps request bodies at 1 MiB. Manifests are small; anything
// larger is a client error.
const MaxBodySize = 1 << 20

// ErrorResponse is the JSON envelope for error responses.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the machine-readable code and human-readable message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as a structured JSON error response, mapping the
// error code to an HTTP status.
func WriteError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}

	WriteJSON(w, StatusForCode(code), ErrorResponse{
		Error: ErrorBody{
			Code:    string(code),
			Message: errors.UserMessage(err),
		},
	})
}

// StatusForCode maps an error code to an HTTP status code.
func StatusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound,
		errors.ErrCodeDiagramNotFound,
		errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidManifest,
		errors.ErrCodeInvalidVariable,
		errors.ErrCodeInvalidConstraint,
		errors.ErrCodeInvalidStrength,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidPath,
		errors.ErrCodeUnknownKind:
		return http.StatusBadRequest
	case errors.ErrCodeNonConvergence:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ReadJSON decodes a JSON request body into v. Unknown fields and bodies
// over MaxBodySize are rejected.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	// Reject trailing garbage after the first JSON value.
	if dec.More() {
		return errors.New(errors.ErrCodeInvalidInput, "request body must contain a single JSON object")
	}
	_, _ = io.Copy(io.Discard, r.Body)
	return nil
}
