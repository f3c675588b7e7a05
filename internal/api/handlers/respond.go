package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// writeJSON emits a success payload. Callers merge extra fields into the
// standard {ok:true} envelope.
func writeJSON(w http.ResponseWriter, status int, payload map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("ERROR [handlers.writeJSON] encode: %v", err)
	}
}

// writeError emits the error envelope {ok:false, error:"snake_case", ...}.
func writeError(w http.ResponseWriter, status int, code string, extra map[string]interface{}) {
	payload := map[string]interface{}{"ok": false, "error": code}
	for k, v := range extra {
		payload[k] = v
	}
	writeJSON(w, status, payload)
}

// serverError logs the cause and hides it from the client.
func serverError(w http.ResponseWriter, where string, err error) {
	log.Printf("ERROR [%s] %v", where, err)
	writeError(w, http.StatusInternalServerError, "server_error", nil)
}
