package verdict

import (
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"
	"strings"

	"phishing-detector/features"
)

type ResultRequest struct {
	URL string `json:"url"`
}

// ResultHandler serves POST /result: extract, classify, convert. A nil
// classifier answers 503 for every request.
func ResultHandler(e *features.Engine, c Classifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			http.Error(w, "Model not loaded. Please check server logs.", http.StatusServiceUnavailable)
			return
		}

		rawURL, err := requestURL(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		vector := e.Extract(r.Context(), rawURL)

		prediction, err := c.Predict(r.Context(), vector)
		if err != nil {
			log.Printf("[CLASSIFIER] prediction for %s failed: %v", rawURL, err)
			if errors.Is(err, ErrNoClassifier) {
				http.Error(w, "Model not loaded. Please check server logs.", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, "classifier unavailable", http.StatusBadGateway)
			return
		}

		result := Convert(rawURL, prediction, e.Patterns())
		result.Features = vector.Slice()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)

		log.Printf("✔ Verdict for %s: %s", rawURL, result.Label)
	}
}

// requestURL accepts a JSON body {"url": ...} or the form field "name" used
// by the web page.
func requestURL(r *http.Request) (string, error) {
	var rawURL string

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req ResultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", errors.New("invalid JSON body")
		}
		rawURL = req.URL
	} else {
		rawURL = r.FormValue("name")
	}

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", errors.New("url required")
	}
	return rawURL, nil
}
