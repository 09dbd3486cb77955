package normalize

import (
	"encoding/json"
	"fmt"

	"GrantScanner/internal/domain"
)

// euHTMLFields are the metadata blobs worth mining for anchors.
var euHTMLFields = []string{"descriptionByte", "destinationDetails", "topicConditions", "supportInfo"}

// mapEU converts one search hit from the EU funding & tenders portal into
// the canonical schema. Most metadata fields arrive as single-element
// string lists; the actions field is a stringified JSON array.
func (n *Normalizer) mapEU(rec Raw) (domain.Opportunity, error) {
	meta := rawMap(rec, "metadata")

	title := firstNonEmpty(first(meta["title"]), asString(rec["summary"]), first(rec["title"]))
	descHTML := firstNonEmpty(first(meta["descriptionByte"]), first(meta["destinationDetails"]))
	descText := StripHTML(descHTML)
	summary := asString(rec["summary"])
	if summary == "" && descText != "" {
		summary = truncateRunes(descText, summaryBound)
	}

	opening := ""
	var rawDeadlines []string
	explicit := domain.StatusUnknown

	if actionsRaw := first(meta["actions"]); actionsRaw != "" {
		var actions []map[string]any
		if err := json.Unmarshal([]byte(actionsRaw), &actions); err == nil && len(actions) > 0 {
			a0 := actions[0]
			opening = ParseDateMaybe(asString(a0["plannedOpeningDate"]))
			if dates, ok := a0["deadlineDates"].([]any); ok {
				for _, d := range dates {
					if pd := ParseDateMaybe(asString(d)); pd != "" {
						rawDeadlines = append(rawDeadlines, pd)
					}
				}
			}
			if st, ok := a0["status"].(map[string]any); ok {
				explicit = euStatus(asString(st["abbreviation"]))
			}
		}
	}
	if opening == "" {
		opening = ParseDateMaybe(first(meta["startDate"]))
	}
	if len(rawDeadlines) == 0 {
		if dl := ParseDateMaybe(first(meta["deadlineDate"])); dl != "" {
			rawDeadlines = append(rawDeadlines, dl)
		}
	}
	if explicit == domain.StatusUnknown {
		explicit = euStatus(first(meta["status"]))
	}

	var deadlines []domain.Deadline
	for _, d := range rawDeadlines {
		deadlines = append(deadlines, domain.Deadline{Type: "single", Date: d})
	}
	deadlineDate := ComputeDeadlineDate(deadlines)

	status := explicit
	if status == domain.StatusUnknown {
		status = ComputeStatus(opening, deadlineDate)
	}
	status = overrideStaleStatus(status, deadlineDate)

	// Root urls plus every anchor buried in the HTML metadata blobs.
	var links []Link
	for _, u := range rawStrings(rec, "url") {
		links = append(links, Link{URL: u})
	}
	for _, field := range euHTMLFields {
		if blobs, ok := meta[field].([]any); ok {
			for _, blob := range blobs {
				links = append(links, ExtractLinks(asString(blob))...)
			}
		}
	}
	documents, links := SplitDocumentsVsLinks(links, n.tables.DocumentKeywords)

	landing := first(meta["esST_URL"])
	if landing == "" && len(links) > 0 {
		landing = links[0].URL
	}
	if landing == "" {
		landing = first(rec["url"])
	}

	uid := firstNonEmpty(first(meta["identifier"]), asString(rec["reference"]))
	if uid == "" {
		if uid = fallbackUID(title); uid == "" {
			return domain.Opportunity{}, fmt.Errorf("eu record carries neither identifier nor title")
		}
	}

	programme := truncateRunes(first(meta["callTitle"]), programmeBound)

	seen := map[string]struct{}{}
	topicCodes := []string{}
	topicCodes = appendUnique(topicCodes, seen, first(meta["callIdentifier"]))
	topicCodes = appendUnique(topicCodes, seen, metaStrings(meta, "keywords")...)
	topicCodes = appendUnique(topicCodes, seen, metaStrings(meta, "tags")...)

	sponsor := "European Commission"
	return domain.Opportunity{
		ID:         "EU:" + uid,
		Source:     "EU",
		SourceUID:  uid,
		Title:      languageMap(map[string]string{"en": title}),
		Summary:    languageMap(map[string]string{"en": summary}),
		Programme:  optStr(programme),
		Sponsor:    &sponsor,
		TopicCodes: topicCodes,
		Tags:       assignTags(n.tables.TagRules, title, summary),
		Deadlines:  deadlines,
		Status:     status,
		Links:      map[string]string{"landing": landing, "apply": landing},
		OpensAt:    optStr(opening),
		ClosesAt:   optStr(deadlineDate),
		Documents:  documents,
	}, nil
}

func metaStrings(meta Raw, key string) []string {
	if meta == nil {
		return nil
	}
	var out []string
	if l, ok := meta[key].([]any); ok {
		for _, v := range l {
			if s := asString(v); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
