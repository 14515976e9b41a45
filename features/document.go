package features

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var headTagRe = regexp.MustCompile(`(?i)<head[\s>/]`)

// Document is the parsed, read-only HTML of a fetched page. An unavailable
// page yields an empty document that matches nothing.
type Document struct {
	doc       *goquery.Document
	available bool
	hasHead   bool
}

// ParseDocument builds a Document from the page fetch outcome.
func ParseDocument(page Result[HTTPArtifact]) *Document {
	art, ok := page.Get()
	if !ok {
		return emptyDocument()
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(art.Body))
	if err != nil {
		return emptyDocument()
	}
	return &Document{
		doc:       doc,
		available: true,
		hasHead:   headTagRe.MatchString(art.Body),
	}
}

func emptyDocument() *Document {
	return &Document{doc: goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})}
}

// Available reports whether the document came from a fetched page.
func (d *Document) Available() bool { return d != nil && d.available }

// HasHead reports whether the page markup declares a <head> element. The
// HTML5 parser synthesizes one for every page, so the source is checked.
func (d *Document) HasHead() bool { return d.Available() && d.hasHead }

// Find returns the elements matching a CSS selector.
func (d *Document) Find(selector string) *goquery.Selection {
	if d == nil || d.doc == nil {
		return emptyDocument().doc.Find(selector)
	}
	return d.doc.Find(selector)
}
