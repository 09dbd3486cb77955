package normalize

import (
	"strings"

	"GrantScanner/internal/domain"
)

// SplitDocumentsVsLinks partitions links into formal documents and generic
// links. A link counts as a document when its URL ends in a document
// extension or the combined label+url text mentions one of the instrument
// keywords. The heuristic is one-way: anything that matches nothing stays
// a generic link. Both outputs are de-duplicated by URL, first wins.
func SplitDocumentsVsLinks(links []Link, keywords []string) ([]domain.Document, []Link) {
	var docs []domain.Document
	var other []Link
	docSeen := map[string]struct{}{}
	otherSeen := map[string]struct{}{}

	for _, l := range links {
		url := strings.TrimSpace(l.URL)
		if url == "" {
			continue
		}
		label := strings.TrimSpace(l.Label)
		haystack := strings.ToLower(label + " " + url)

		docLike := strings.HasSuffix(strings.ToLower(url), ".pdf")
		for _, kw := range keywords {
			if docLike {
				break
			}
			docLike = strings.Contains(haystack, strings.ToLower(kw))
		}

		if docLike {
			if _, ok := docSeen[url]; ok {
				continue
			}
			docSeen[url] = struct{}{}
			docs = append(docs, domain.Document{Title: optStr(label), URL: url})
			continue
		}
		if _, ok := otherSeen[url]; ok {
			continue
		}
		otherSeen[url] = struct{}{}
		other = append(other, Link{URL: url, Label: label})
	}
	return docs, other
}
