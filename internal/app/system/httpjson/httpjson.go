// internal/app/system/httpjson/httpjson.go
package httpjson

import (
	"encoding/json"
	"net/http"
)

// Write encodes v as the JSON response body with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body with a stable machine-readable code and a
// human-readable message.
func Error(w http.ResponseWriter, status int, code, message string) {
	Write(w, status, map[string]string{"code": code, "message": message})
}

// Decode reads the request body into v, returning false after writing a
// 400 response when the body is not valid JSON.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return false
	}
	return true
}
