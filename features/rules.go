package features

import (
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Artifacts is everything one extraction gathered. Rules receive it by value
// and never modify it.
type Artifacts struct {
	URL      ParsedURL
	Page     Result[HTTPArtifact]
	Doc      *Document
	Whois    Result[WhoisRecord]
	DNS      Result[DNSRecord]
	Indexed  Result[bool]
	Patterns *Patterns
	Now      time.Time
}

// Rule computes one feature score.
type Rule func(a Artifacts) int

// Rules lists the heuristics in vector order.
var Rules = [VectorLen]Rule{
	UsingIP,
	LongURL,
	ShortURL,
	AtSymbol,
	DoubleSlashRedirect,
	PrefixSuffix,
	SubDomains,
	HTTPS,
	DomainRegLen,
	Favicon,
	NonStdPort,
	HTTPSInDomain,
	RequestURL,
	AnchorURL,
	LinksInTags,
	ServerFormHandler,
	SubmitToEmail,
	AbnormalURL,
	WebsiteForwarding,
	StatusBarCust,
	DisableRightClick,
	PopupWindow,
	IFrame,
	AgeOfDomain,
	DNSRecording,
	WebsiteTraffic,
	PageRank,
	GoogleIndex,
	LinksPointingToPage,
	StatsReport,
}

// Evaluate runs every rule against a and assembles the vector.
func Evaluate(a Artifacts) Vector {
	if a.Patterns == nil {
		a.Patterns = DefaultPatterns()
	}
	if a.Doc == nil {
		a.Doc = ParseDocument(a.Page)
	}
	if a.Now.IsZero() {
		a.Now = time.Now()
	}
	scores := make([]int, 0, VectorLen)
	for _, rule := range Rules {
		scores = append(scores, rule(a))
	}
	return Assemble(scores)
}

func flag(suspicious bool) int {
	if suspicious {
		return Suspicious
	}
	return Legitimate
}

// UsingIP: an IP literal host.
func UsingIP(a Artifacts) int { return flag(a.URL.IsIPLiteral()) }

// LongURL: shorter than 54 characters is fine, up to 75 is borderline.
func LongURL(a Artifacts) int {
	n := utf8.RuneCountInString(a.URL.Raw)
	switch {
	case n < 54:
		return Legitimate
	case n <= 75:
		return Neutral
	default:
		return Suspicious
	}
}

// ShortURL: host belongs to a URL shortening service.
func ShortURL(a Artifacts) int {
	return flag(a.Patterns.IsShortenerHost(a.URL.lexicalHost()))
}

// AtSymbol: "@" anywhere in the URL.
func AtSymbol(a Artifacts) int { return flag(strings.Contains(a.URL.Raw, "@")) }

// DoubleSlashRedirect: a "//" after the scheme separator.
func DoubleSlashRedirect(a Artifacts) int {
	i := strings.LastIndex(a.URL.Raw, "//")
	if i < 0 {
		return Legitimate
	}
	return flag(utf8.RuneCountInString(a.URL.Raw[:i]) > 6)
}

// PrefixSuffix: a dash in the host.
func PrefixSuffix(a Artifacts) int { return flag(strings.Contains(a.URL.Host, "-")) }

// SubDomains: one dot is a bare domain, two is a single subdomain.
func SubDomains(a Artifacts) int {
	switch strings.Count(a.URL.Host, ".") {
	case 1:
		return Legitimate
	case 2:
		return Neutral
	default:
		return Suspicious
	}
}

// HTTPS: scheme must be https.
func HTTPS(a Artifacts) int { return flag(a.URL.Scheme != "https") }

// DomainRegLen: registration period of at least a year.
func DomainRegLen(a Artifacts) int {
	rec, ok := a.Whois.Get()
	if !ok {
		return Suspicious
	}
	created, ok1 := rec.CreatedAt()
	expires, ok2 := rec.ExpiresAt()
	if !ok1 || !ok2 {
		return Suspicious
	}
	return flag(monthsBetween(created, expires) < 12)
}

// Favicon: an icon link in <head> served from the page's own host.
func Favicon(a Artifacts) int {
	if !a.Doc.HasHead() {
		return Suspicious
	}
	result := Suspicious
	a.Doc.Find("head link[rel]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		if !strings.Contains(strings.ToLower(rel), "icon") {
			return true
		}
		href, _ := s.Attr("href")
		if href == "" {
			return true
		}
		if h := refHost(href); h == "" || strings.Contains(h, a.URL.Host) {
			result = Legitimate
			return false
		}
		return true
	})
	return result
}

// NonStdPort: an explicit port other than 80 or 443.
func NonStdPort(a Artifacts) int {
	if a.URL.Invalid {
		return Suspicious
	}
	if !a.URL.HasPort() {
		return Legitimate
	}
	port, ok := a.URL.PortNumber()
	if !ok {
		return Suspicious
	}
	return flag(port != 80 && port != 443)
}

// HTTPSInDomain: the literal "https" inside the host name.
func HTTPSInDomain(a Artifacts) int { return flag(strings.Contains(a.URL.Host, "https")) }

// RequestURL: share of embedded objects loaded from other hosts.
func RequestURL(a Artifacts) int {
	if !a.Doc.Available() {
		return Suspicious
	}
	total, external := 0, 0
	a.Doc.Find("img[src], audio[src], embed[src], iframe[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if h := refHost(src); h != "" && !strings.Contains(h, a.URL.Host) {
			external++
		}
		total++
	})
	if total == 0 {
		return Legitimate
	}
	pct := percent(external, total)
	switch {
	case pct < 22:
		return Legitimate
	case pct < 61:
		return Neutral
	default:
		return Suspicious
	}
}

// AnchorURL: share of anchors that are empty fragments, void scripts or off-site.
func AnchorURL(a Artifacts) int {
	if !a.Doc.Available() {
		return Suspicious
	}
	total, unsafe := 0, 0
	a.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.HasPrefix(href, "#") || strings.Contains(strings.ToLower(href), "javascript:void(0)") {
			unsafe++
		} else if h := refHost(href); h != "" && !strings.Contains(h, a.URL.Host) {
			unsafe++
		}
		total++
	})
	if total == 0 {
		return Legitimate
	}
	pct := percent(unsafe, total)
	switch {
	case pct < 31:
		return Legitimate
	case pct < 67:
		return Neutral
	default:
		return Suspicious
	}
}

// LinksInTags: share of <link>/<script> resources served from the page's host.
func LinksInTags(a Artifacts) int {
	if !a.Doc.Available() {
		return Suspicious
	}
	total, local := 0, 0
	count := func(ref string) {
		if h := refHost(ref); h != "" && strings.Contains(h, a.URL.Host) {
			local++
		}
		total++
	}
	a.Doc.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		count(href)
	})
	a.Doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		count(src)
	})
	if total == 0 {
		return Legitimate
	}
	pct := percent(local, total)
	switch {
	case pct < 17:
		return Suspicious
	case pct < 81:
		return Neutral
	default:
		return Legitimate
	}
}

// ServerFormHandler: where forms submit. The first telling form decides.
func ServerFormHandler(a Artifacts) int {
	if !a.Doc.Available() {
		return Legitimate
	}
	result := Legitimate
	a.Doc.Find("form[action]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		action, _ := s.Attr("action")
		if action == "" || action == "about:blank" {
			result = Suspicious
			return false
		}
		if h := refHost(action); h != "" && !strings.Contains(h, a.URL.Host) {
			result = Neutral
			return false
		}
		return true
	})
	return result
}

var (
	mouseOverRe  = regexp.MustCompile(`(?i)onmouseover`)
	rightClickRe = regexp.MustCompile(`event.button ?== ?2`)
)

// successfulPage returns the fetched page only when the server answered
// without an error status. Source-text rules ignore error pages.
func successfulPage(a Artifacts) (HTTPArtifact, bool) {
	page, ok := a.Page.Get()
	if !ok || page.Status >= http.StatusBadRequest {
		return HTTPArtifact{}, false
	}
	return page, true
}

func bodyMatches(a Artifacts, match func(string) bool) bool {
	page, ok := successfulPage(a)
	return ok && match(page.Body)
}

// SubmitToEmail: mailto: links in the page source.
func SubmitToEmail(a Artifacts) int {
	return flag(bodyMatches(a, func(b string) bool { return strings.Contains(b, "mailto:") }))
}

// AbnormalURL: the host should appear in its own WHOIS record.
func AbnormalURL(a Artifacts) int {
	rec, ok := a.Whois.Get()
	if !ok {
		return Suspicious
	}
	return flag(!strings.Contains(strings.ToLower(rec.Raw), a.URL.Host))
}

// WebsiteForwarding: number of redirects before the final page.
func WebsiteForwarding(a Artifacts) int {
	page, ok := successfulPage(a)
	if !ok {
		return Suspicious
	}
	switch {
	case page.Redirects <= 1:
		return Legitimate
	case page.Redirects <= 4:
		return Neutral
	default:
		return Suspicious
	}
}

// StatusBarCust: onmouseover handlers in the page source.
func StatusBarCust(a Artifacts) int { return flag(bodyMatches(a, mouseOverRe.MatchString)) }

// DisableRightClick: right mouse button checks in scripts.
func DisableRightClick(a Artifacts) int { return flag(bodyMatches(a, rightClickRe.MatchString)) }

// PopupWindow: alert( calls in the page source.
func PopupWindow(a Artifacts) int {
	return flag(bodyMatches(a, func(b string) bool { return strings.Contains(b, "alert(") }))
}

// IFrame: any iframe or frame element.
func IFrame(a Artifacts) int {
	return flag(a.Doc.Available() && a.Doc.Find("iframe, frame").Length() > 0)
}

// AgeOfDomain: registered at least six months before extraction.
func AgeOfDomain(a Artifacts) int {
	rec, ok := a.Whois.Get()
	if !ok {
		return Suspicious
	}
	created, ok := rec.CreatedAt()
	if !ok {
		return Suspicious
	}
	return flag(monthsBetween(created, a.Now) < 6)
}

// DNSRecording: a WHOIS record exists for the domain.
func DNSRecording(a Artifacts) int { return flag(!a.Whois.OK()) }

// WebsiteTraffic is a constant placeholder: the traffic-rank provider the
// classifier was trained against no longer exists.
func WebsiteTraffic(Artifacts) int { return Neutral }

// PageRank is a constant placeholder: public page rank is no longer published.
func PageRank(Artifacts) int { return Suspicious }

// GoogleIndex: the URL is present in the search index.
func GoogleIndex(a Artifacts) int {
	found, ok := a.Indexed.Get()
	return flag(!ok || !found)
}

// LinksPointingToPage: anchor count on the page as a proxy for link popularity.
func LinksPointingToPage(a Artifacts) int {
	if !a.Doc.Available() {
		return Suspicious
	}
	switch n := a.Doc.Find("a").Length(); {
	case n == 0:
		return Legitimate
	case n <= 2:
		return Neutral
	default:
		return Suspicious
	}
}

// StatsReport: host or resolved address on the malicious blocklist. A failed
// resolution counts as clean.
func StatsReport(a Artifacts) int {
	rec, ok := a.DNS.Get()
	if !ok {
		return Legitimate
	}
	if a.Patterns.IsMaliciousHost(a.URL.Host) {
		return Suspicious
	}
	for _, addr := range rec.Addrs {
		if a.Patterns.IsMaliciousIP(addr) {
			return Suspicious
		}
	}
	return Legitimate
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

func percent(part, total int) float64 {
	return float64(part) / float64(total) * 100
}
