package features

import "testing"

func TestParseDocument(t *testing.T) {
	t.Run("unavailable page", func(t *testing.T) {
		d := ParseDocument(Unavailable[HTTPArtifact]("timeout"))
		if d.Available() || d.HasHead() {
			t.Fatalf("expected empty document")
		}
		if n := d.Find("a").Length(); n != 0 {
			t.Fatalf("empty document matched %d anchors", n)
		}
	})

	t.Run("with head", func(t *testing.T) {
		d := ParseDocument(Available(HTTPArtifact{Status: 200, Body: `<HTML><HEAD><title>x</title></HEAD><body><a href="/">a</a></body></HTML>`}))
		if !d.Available() || !d.HasHead() {
			t.Fatalf("Available=%v HasHead=%v, want both true", d.Available(), d.HasHead())
		}
		if n := d.Find("a[href]").Length(); n != 1 {
			t.Fatalf("found %d anchors, want 1", n)
		}
	})

	t.Run("without head tag", func(t *testing.T) {
		d := ParseDocument(Available(HTTPArtifact{Status: 200, Body: `<body><header>site</header></body>`}))
		if !d.Available() {
			t.Fatalf("expected available document")
		}
		if d.HasHead() {
			t.Fatalf("HasHead() = true for markup without <head>")
		}
		if d.Find("head").Length() != 1 {
			t.Fatalf("parser should still synthesize a head element")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		d := ParseDocument(Available(HTTPArtifact{Status: 204}))
		if !d.Available() {
			t.Fatalf("an empty response is still a fetched page")
		}
	})

	t.Run("nil document", func(t *testing.T) {
		var d *Document
		if d.Available() || d.HasHead() || d.Find("a").Length() != 0 {
			t.Fatalf("nil document should behave as empty")
		}
	})
}
