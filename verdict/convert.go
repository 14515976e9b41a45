package verdict

import "phishing-detector/features"

// Verdict is the user-facing outcome for one URL.
type Verdict struct {
	URL        string  `json:"url"`
	Label      string  `json:"label"` // "Safe" or "Unsafe"
	Message    string  `json:"message"`
	Proceed    bool    `json:"proceed"`
	Confidence float64 `json:"confidence"`
	Prediction int     `json:"prediction"`
	Features   []int   `json:"features,omitempty"`
}

const (
	LabelSafe   = "Safe"
	LabelUnsafe = "Unsafe"
)

// PredictionSafe is the classifier output for a legitimate site.
const PredictionSafe = 1

// Convert turns a classifier prediction into a verdict. Shortened links are
// always unsafe, whatever the model says.
func Convert(rawURL string, prediction int, patterns *features.Patterns) Verdict {
	v := Verdict{URL: rawURL, Prediction: prediction}

	switch {
	case features.IsShortened(rawURL, patterns):
		v.Label = LabelUnsafe
		v.Message = "Shortened links are not recommended"
		v.Confidence = 0.10
	case prediction == PredictionSafe:
		v.Label = LabelSafe
		v.Message = "Proceed to Website"
		v.Proceed = true
		v.Confidence = 0.95
	default:
		v.Label = LabelUnsafe
		v.Message = "Do Not Proceed"
		v.Confidence = 0.10
	}
	return v
}
