package verdict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"phishing-detector/features"
)

// ErrNoClassifier is returned when no model endpoint is configured.
var ErrNoClassifier = errors.New("model not loaded")

// Classifier maps a feature vector to a prediction (1 safe, anything else unsafe).
type Classifier interface {
	Predict(ctx context.Context, v features.Vector) (int, error)
}

// HTTPClassifier calls a model server that accepts
// {"features": [[...30 ints]]} and answers {"prediction": n}.
type HTTPClassifier struct {
	URL        string
	HTTPClient *http.Client
}

type predictRequest struct {
	Features [][]int `json:"features"`
}

type predictResponse struct {
	Prediction  *int   `json:"prediction"`
	Predictions []int  `json:"predictions,omitempty"`
	Error       string `json:"error,omitempty"`
}

// NewHTTPClassifier creates a client for the model server at url.
func NewHTTPClassifier(url string, timeout time.Duration) *HTTPClassifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClassifier{
		URL:        url,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// ClassifierFromEnv reads CLASSIFIER_URL and CLASSIFIER_TIMEOUT. It returns
// nil when no classifier is configured.
func ClassifierFromEnv() Classifier {
	url := os.Getenv("CLASSIFIER_URL")
	if url == "" {
		log.Println("[CLASSIFIER] CLASSIFIER_URL not set, /result will report the model as not loaded")
		return nil
	}

	timeout := 10 * time.Second
	if v := os.Getenv("CLASSIFIER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			timeout = d
		} else {
			log.Printf("[CLASSIFIER] ignoring CLASSIFIER_TIMEOUT=%q", v)
		}
	}
	return NewHTTPClassifier(url, timeout)
}

// Predict sends one vector and returns the model's label.
func (c *HTTPClassifier) Predict(ctx context.Context, v features.Vector) (int, error) {
	if c == nil || c.URL == "" {
		return 0, ErrNoClassifier
	}

	jsonData, err := json.Marshal(predictRequest{Features: [][]int{v.Slice()}})
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("classifier error (status %d): %s", resp.StatusCode, string(body))
	}

	var response predictResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return 0, fmt.Errorf("unmarshal response: %w", err)
	}
	if response.Error != "" {
		return 0, fmt.Errorf("classifier error: %s", response.Error)
	}

	switch {
	case response.Prediction != nil:
		return *response.Prediction, nil
	case len(response.Predictions) > 0:
		return response.Predictions[0], nil
	default:
		return 0, fmt.Errorf("empty response from classifier")
	}
}
