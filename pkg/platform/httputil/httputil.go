// Package httputil holds the JSON envelope helpers shared by handlers.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "afi/pkg/domain-errors"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
	Details     any    `json:"details,omitempty"`
}

// DetailedError lets an error contribute structured details to the envelope.
type DetailedError interface {
	ErrorDetails() any
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into the error envelope. Internal errors never
// leak their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	resp := ErrorResponse{}
	if de, ok := dErrors.As(err); ok {
		code = de.Code
		if code != dErrors.CodeInternal {
			resp.Description = de.Message
		}
	}
	resp.Error = string(code)
	if code != dErrors.CodeInternal {
		if d, ok := detailsOf(err); ok {
			resp.Details = d
		}
	}
	WriteJSON(w, dErrors.CodeToStatus(code), resp)
}

func detailsOf(err error) (any, bool) {
	for err != nil {
		if d, ok := err.(DetailedError); ok {
			return d.ErrorDetails(), true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
