// Package leadfmt enforces the editorial lede convention: the first paragraph
// of an article body must be entirely wrapped in bold inline markup.
package leadfmt

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ValidateLead reports whether the first paragraph of the HTML fragment is
// entirely inside a <strong> or <b> span. Bodies with no textual lead are
// vacuously valid.
func ValidateLead(body string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return false
	}

	p := doc.Find("body p").First()
	if p.Length() == 0 {
		return strings.TrimSpace(doc.Find("body").Text()) == ""
	}

	text := strings.TrimSpace(p.Text())
	if text == "" {
		return true
	}

	wrap := p.ChildrenFiltered("strong, b").First()
	if wrap.Length() == 0 {
		return false
	}
	return strings.TrimSpace(wrap.Text()) == text
}

// AutoFixLead rewrites the first paragraph so it satisfies ValidateLead.
// Already-valid bodies are returned unchanged, which makes the function
// idempotent. Paragraphs after the first are never touched.
func AutoFixLead(body string) string {
	if ValidateLead(body) {
		return body
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body
	}

	p := doc.Find("body p").First()
	if p.Length() == 0 {
		// Plain text with no paragraph markup: promote it to a bold lead.
		return "<p><strong>" + strings.TrimSpace(body) + "</strong></p>"
	}

	inner, err := p.Html()
	if err != nil {
		return body
	}
	p.SetHtml("<strong>" + inner + "</strong>")

	out, err := doc.Find("body").Html()
	if err != nil {
		return body
	}
	return out
}
