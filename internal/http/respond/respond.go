package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// JSON writes an arbitrary payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}

// Message writes a {"message": ...} acknowledgement.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}

// Error writes a failure with a short human-readable reason. Internal
// error text never goes through here; callers pass a sanitized message.
func Error(w http.ResponseWriter, status int, message string) {
	Message(w, status, message)
}
