package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link is one anchor harvested from an HTML fragment or a structured link
// list. An empty Label means the anchor had no text content.
type Link struct {
	URL   string
	Label string
}

// StripHTML flattens a fragment to plain text with single spaces.
// Empty or unparsable input yields "" (text unknown).
func StripHTML(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return collapseSpace(doc.Text())
}

// ExtractLinks pulls anchors out of a fragment, ignoring all other markup.
// Anchors without an href are dropped; exact (url, label) duplicates are
// suppressed, first occurrence order preserved.
func ExtractLinks(html string) []Link {
	if strings.TrimSpace(html) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := map[Link]struct{}{}
	var out []Link
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return
		}
		link := Link{URL: href, Label: collapseSpace(a.Text())}
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		out = append(out, link)
	})
	return out
}
