package handlers

import (
	"encoding/json"
	"net/http"
)

// userIDHeader carries the authenticated identity established by the auth
// collaborator. An absent header means guest mode.
const userIDHeader = "X-User-ID"

// jsonError writes a JSON error response with the given status code.
func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// jsonResponse writes a JSON success response.
func jsonResponse(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

// userID extracts the authenticated user id, empty for guests.
func userID(r *http.Request) string {
	return r.Header.Get(userIDHeader)
}
