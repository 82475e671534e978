// Package httpx provides HTTP response utilities for the legacy JSON
// envelope: {"success": bool, "message": string, ...}.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response body shape shared by all mutating endpoints.
type Envelope map[string]any

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Success sends a 200 envelope with the given message.
func Success(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, Envelope{"success": true, "message": message})
}

// SuccessData sends a 200 envelope carrying extra payload fields.
func SuccessData(w http.ResponseWriter, message string, extra Envelope) {
	body := Envelope{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	JSON(w, http.StatusOK, body)
}

// Fail sends a failure envelope with the given status.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{"success": false, "message": message})
}

// DecodeJSON decodes the request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
