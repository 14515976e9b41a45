package features

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

type ExtractRequest struct {
	URL string `json:"url"`
}

// ExtractHandler serves POST /extract.
func ExtractHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExtractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		rawURL := strings.TrimSpace(req.URL)
		if rawURL == "" {
			http.Error(w, "url required", http.StatusBadRequest)
			return
		}

		report := e.Inspect(r.Context(), rawURL)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			log.Printf("[HTTP] encode response for %s: %v", rawURL, err)
			return
		}

		log.Println("✔ Features extracted for:", rawURL)
	}
}

// HealthHandler serves GET /health.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func IndexHandler(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, "index.html")
}
