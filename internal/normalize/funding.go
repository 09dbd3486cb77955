package normalize

import (
	"fmt"
	"strings"

	"GrantScanner/internal/domain"
)

const programmeBound = 200

// FunderSource maps the funder field (or an explicit hint) to the source
// code and display sponsor of the Swedish research-funding family.
func FunderSource(name string) (source, sponsor string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vr", "vetenskapsrådet", "vetenskapsradet":
		return "VR", "Vetenskapsrådet"
	case "formas":
		return "FORMAS", "Formas"
	case "forte":
		return "FORTE", "Forte"
	case "":
		return "", ""
	}
	return strings.ToUpper(collapseSpace(name)), strings.TrimSpace(name)
}

// mapFunding converts one "utlysning" record from the shared VR/Formas/
// Forte API family. funderHint carries the routed source when the record
// itself lacks a funder field.
func (n *Normalizer) mapFunding(rec Raw, funderHint string) (domain.Opportunity, error) {
	funder := rawString(rec, "Finansiar", "Finansiär")
	if funder == "" {
		funder = funderHint
	}
	source, sponsor := FunderSource(funder)
	if source == "" {
		return domain.Opportunity{}, fmt.Errorf("funding record carries no funder")
	}

	titleSv := rawString(rec, "Utlysningsnamn", "Titel", "Namn")
	titleEn := rawString(rec, "UtlysningsnamnEngelska", "TitelEngelska")
	descSvHTML := rawString(rec, "Beskrivning")
	descEnHTML := rawString(rec, "BeskrivningEngelska")

	summarySv := truncateRunes(StripHTML(descSvHTML), summaryBound)
	summaryEn := truncateRunes(StripHTML(descEnHTML), summaryBound)
	// one language empty: fall back to the other
	if summarySv == "" {
		summarySv = summaryEn
	}
	if summaryEn == "" {
		summaryEn = summarySv
	}

	opening := ParseDateMaybe(rawString(rec, "Oppningsdatum", "Öppningsdatum", "Startdatum"))
	closing := ParseDateMaybe(rawString(rec, "Stangningsdatum", "Stängningsdatum", "Ansokningsdatum", "Ansökningsdatum", "Slutdatum"))
	var deadlines []domain.Deadline
	if closing != "" {
		deadlines = append(deadlines, domain.Deadline{Type: "single", Date: closing})
	}
	if decision := ParseDateMaybe(rawString(rec, "Beslutsdatum")); decision != "" {
		deadlines = append(deadlines, domain.Deadline{Type: "decision", Date: decision})
	}
	// the representative deadline tracks the submission cutoff only
	var submissions []domain.Deadline
	for _, d := range deadlines {
		if d.Type == "single" {
			submissions = append(submissions, d)
		}
	}
	deadlineDate := ComputeDeadlineDate(submissions)

	status := funderStatus(source, asString(rec["Status"]))
	if status == domain.StatusUnknown {
		status = ComputeStatus(opening, deadlineDate)
	}
	status = overrideStaleStatus(status, deadlineDate)

	links := ExtractLinks(descSvHTML)
	links = append(links, ExtractLinks(descEnHTML)...)
	documents, links := SplitDocumentsVsLinks(links, n.tables.DocumentKeywords)

	landing := rawString(rec, "Lank", "Länk", "Webbsida", "URL")
	if landing == "" && len(links) > 0 {
		landing = links[0].URL
	}

	uid := rawString(rec, "UtlysningsID", "Diarienummer", "Dnr")
	if uid == "" {
		if uid = fallbackUID(firstNonEmpty(titleSv, titleEn)); uid == "" {
			return domain.Opportunity{}, fmt.Errorf("funding record carries neither identifier nor title")
		}
	}

	seen := map[string]struct{}{}
	topicCodes := appendUnique([]string{}, seen, rawStrings(rec, "Amnesomraden")...)
	topicCodes = appendUnique(topicCodes, seen, rawStrings(rec, "Ämnesområden")...)

	programme := truncateRunes(rawString(rec, "Program", "Utlysningsprogram"), programmeBound)

	return domain.Opportunity{
		ID:         source + ":" + uid,
		Source:     source,
		SourceUID:  uid,
		Title:      languageMap(map[string]string{"sv": titleSv, "en": titleEn}),
		Summary:    languageMap(map[string]string{"sv": summarySv, "en": summaryEn}),
		Programme:  optStr(programme),
		Sponsor:    &sponsor,
		TopicCodes: topicCodes,
		Tags:       assignTags(n.tables.TagRules, titleSv, titleEn, summarySv, summaryEn),
		Deadlines:  deadlines,
		Status:     status,
		Links:      map[string]string{"landing": landing},
		OpensAt:    optStr(opening),
		ClosesAt:   optStr(deadlineDate),
		Notes:      optStr(rawString(rec, "Kontakt")),
		Documents:  documents,
	}, nil
}
