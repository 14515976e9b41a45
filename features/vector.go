package features

import "fmt"

// VectorLen is the number of features the classifier was trained on.
const VectorLen = 30

// Score values produced by every rule.
const (
	Suspicious = -1
	Neutral    = 0
	Legitimate = 1
)

// Vector is the ordered feature vector. Position i holds rule i+1; the order
// is a contract with the classifier.
type Vector [VectorLen]int

// Names labels each vector position, in order.
var Names = [VectorLen]string{
	"having_ip_address",
	"url_length",
	"shortening_service",
	"having_at_symbol",
	"double_slash_redirecting",
	"prefix_suffix",
	"having_sub_domain",
	"ssl_final_state",
	"domain_registration_length",
	"favicon",
	"port",
	"https_token",
	"request_url",
	"url_of_anchor",
	"links_in_tags",
	"sfh",
	"submitting_to_email",
	"abnormal_url",
	"redirect",
	"on_mouseover",
	"right_click",
	"popup_window",
	"iframe",
	"age_of_domain",
	"dns_record",
	"web_traffic",
	"page_rank",
	"google_index",
	"links_pointing_to_page",
	"statistical_report",
}

// Assemble fixes rule scores into a Vector. A wrong count is a programming
// error and panics.
func Assemble(scores []int) Vector {
	if len(scores) != VectorLen {
		panic(fmt.Sprintf("features: assembler got %d scores, want %d", len(scores), VectorLen))
	}
	var v Vector
	copy(v[:], scores)
	return v
}

// Slice returns the scores as a fresh slice.
func (v Vector) Slice() []int {
	out := make([]int, VectorLen)
	copy(out, v[:])
	return out
}

// Named maps each position name to its score.
func (v Vector) Named() map[string]int {
	m := make(map[string]int, VectorLen)
	for i, name := range Names {
		m[name] = v[i]
	}
	return m
}

// Valid reports whether every score is in {-1, 0, 1}.
func (v Vector) Valid() bool {
	for _, s := range v {
		if s < Suspicious || s > Legitimate {
			return false
		}
	}
	return true
}
