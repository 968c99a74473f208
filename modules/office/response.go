package office

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}
