// Package error encodes API error responses.
package error

import (
	"encoding/json"
	"net/http"
)

type Error struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	ErrorID string            `json:"error_id,omitempty"`
	Status  int               `json:"-"`
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func encode(w http.ResponseWriter, status int, body *Error) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

// EncodeError writes a JSON error response with the status implied by the code.
func EncodeError(w http.ResponseWriter, code ErrorCode, message, errorID string) error {
	return encode(w, code.StatusCode(), &Error{
		Code:    code,
		Message: message,
		ErrorID: errorID,
	})
}

// EncodeFieldErrors writes a validation error response keyed by field name.
func EncodeFieldErrors(w http.ResponseWriter, code ErrorCode, fields map[string]string, errorID string) error {
	return encode(w, code.StatusCode(), &Error{
		Code:    code,
		Message: "validation failed",
		Fields:  fields,
		ErrorID: errorID,
	})
}

func EncodeInternalError(w http.ResponseWriter, errorID string) error {
	return EncodeError(w, InternalServerError, "internal server error", errorID)
}
