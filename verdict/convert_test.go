package verdict

import (
	"testing"

	"phishing-detector/features"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		prediction int
		label      string
		message    string
		proceed    bool
		confidence float64
	}{
		{"safe", "https://example.com", 1, LabelSafe, "Proceed to Website", true, 0.95},
		{"phishing", "https://example.com", -1, LabelUnsafe, "Do Not Proceed", false, 0.10},
		{"unknown label", "https://example.com", 0, LabelUnsafe, "Do Not Proceed", false, 0.10},
		{"shortened beats safe", "https://bit.ly/abc", 1, LabelUnsafe, "Shortened links are not recommended", false, 0.10},
		{"shortened and phishing", "http://tinyurl.com/x", -1, LabelUnsafe, "Shortened links are not recommended", false, 0.10},
		{"host containing a shortener", "https://www.microsoft.com/", 1, LabelUnsafe, "Shortened links are not recommended", false, 0.10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Convert(tt.url, tt.prediction, features.DefaultPatterns())
			if v.URL != tt.url || v.Prediction != tt.prediction {
				t.Errorf("url/prediction not carried: %+v", v)
			}
			if v.Label != tt.label || v.Message != tt.message || v.Proceed != tt.proceed || v.Confidence != tt.confidence {
				t.Errorf("got %+v", v)
			}
		})
	}
}

func TestConvertNilPatterns(t *testing.T) {
	if v := Convert("https://bit.ly/abc", 1, nil); v.Label != LabelUnsafe {
		t.Fatalf("nil patterns should fall back to defaults, got %+v", v)
	}
}
