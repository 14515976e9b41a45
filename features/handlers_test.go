package features

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractHandler(t *testing.T) {
	h := ExtractHandler(NewEngineWith(testEngineConfig(), nil, fakeFetchers()))

	t.Run("ok", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(`{"url":" https://example.com "}`))
		rec := httptest.NewRecorder()
		h(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		var report Report
		if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if report.URL != "https://example.com" {
			t.Errorf("url = %q", report.URL)
		}
		if len(report.Features) != VectorLen || len(report.Named) != VectorLen {
			t.Errorf("features=%d named=%d", len(report.Features), len(report.Named))
		}
		if report.Artifacts.DNS != "ok" {
			t.Errorf("artifacts = %+v", report.Artifacts)
		}
	})

	for name, body := range map[string]string{
		"missing url": `{}`,
		"blank url":   `{"url":"   "}`,
		"bad json":    `{"url":`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("got %d %v", rec.Code, body)
	}
}
