// Package response owns the two JSON envelopes every endpoint speaks:
// successes as {"data": ...} and failures as {"error": {...}} with a stable
// machine-readable code and the request id for log correlation.
package response

import (
	"encoding/json"
	"net/http"
)

type Envelope struct {
	Data any `json:"data,omitempty"`
}

type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// The status line is already out; an encode failure here can only be
	// logged by the access-log middleware via the short body it observes.
	_ = json.NewEncoder(w).Encode(v)
}

// JSON writes v as-is, without an envelope.
func JSON(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, v)
}

// Data writes payload inside the success envelope.
func Data(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, Envelope{Data: payload})
}

// NoContent answers 204 with an empty body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Fail writes the error envelope. code is stable per error kind; meta
// carries optional field-level detail.
func Fail(w http.ResponseWriter, status int, code, message string, meta map[string]string, requestID string) {
	writeJSON(w, status, ErrorBody{
		Error: ErrorPayload{
			Code:      code,
			Message:   message,
			Meta:      meta,
			RequestID: requestID,
		},
	})
}
