package normalize

import (
	"fmt"
	"strings"

	"GrantScanner/internal/domain"
)

const summaryBound = 400

// mapVinnova converts one record from the Vinnova open-data API
// ("ansokningsomgangar") into the canonical schema.
func (n *Normalizer) mapVinnova(rec Raw) (domain.Opportunity, error) {
	titleSv := rawString(rec, "Titel")
	titleEn := rawString(rec, "TitelEngelska")
	descHTML := rawString(rec, "BeskrivningEngelska", "Beskrivning")
	descText := StripHTML(descHTML)

	// Web texts carry the curated per-language summaries; the stripped
	// description is the fallback for both languages.
	var summarySv, summaryEn string
	for _, v := range rawList(rec, "WebTextLista") {
		w, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if summaryEn == "" {
			summaryEn = asString(w["TextEn"])
		}
		if summarySv == "" {
			summarySv = asString(w["TextSv"])
		}
	}
	if summarySv == "" && descText != "" {
		summarySv = truncateRunes(descText, summaryBound)
	}
	if summaryEn == "" && descText != "" {
		summaryEn = truncateRunes(descText, summaryBound)
	}

	opening := ParseDateMaybe(rawString(rec, "Oppningsdatum", "Öppningsdatum"))
	closing := ParseDateMaybe(rawString(rec, "Stangningsdatum", "Stängningsdatum"))
	var deadlines []domain.Deadline
	if closing != "" {
		deadlines = append(deadlines, domain.Deadline{Type: "single", Date: closing})
	}

	// Structured documents come as-is; doc-like entries from the link list
	// are folded in ahead of them.
	var documents []domain.Document
	for _, v := range rawList(rec, "DokumentLista") {
		d, ok := v.(map[string]any)
		if !ok {
			continue
		}
		doc := domain.Document{
			Title:       optStr(asString(d["Titel"])),
			Description: optStr(asString(d["Beskrivning"])),
			URL:         asString(d["fileURL"]),
			Lang:        optStr(asString(d["Lang"])),
			Filename:    optStr(asString(d["FileName"])),
			ExternalID:  optStr(asString(d["DokumentID"])),
		}
		if b, ok := d["Primary"].(bool); ok {
			doc.Primary = &b
		}
		documents = append(documents, doc)
	}

	var links []Link
	for _, v := range rawList(rec, "LankLista") {
		l, ok := v.(map[string]any)
		if !ok {
			continue
		}
		links = append(links, Link{URL: asString(l["URL"]), Label: asString(l["Beskrivning"])})
	}
	docLike, links := SplitDocumentsVsLinks(links, n.tables.DocumentKeywords)
	documents = append(docLike, documents...)

	var applyURL string
	for _, l := range links {
		if strings.Contains(strings.ToLower(l.Label), "ansök") {
			applyURL = l.URL
			break
		}
	}

	landing := ""
	if len(links) > 0 {
		landing = links[0].URL
	}
	if landing == "" {
		landing = rawString(rec, "Webbsida")
	}
	if landing == "" {
		landing = applyURL
	}
	if applyURL == "" {
		applyURL = landing
	}

	var contactLines []string
	for _, v := range rawList(rec, "KontaktLista") {
		c, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if line := contactLine(asString(c["Namn"]), asString(c["Epost"]), asString(c["Telefon"]), asString(c["Roll"])); line != "" {
			contactLines = append(contactLines, line)
		}
	}
	notes := strings.Join(contactLines, "; ")

	uid := rawString(rec, "Diarienummer", "DiarienummerUtlysning")
	if uid == "" {
		if uid = fallbackUID(firstNonEmpty(titleEn, titleSv)); uid == "" {
			return domain.Opportunity{}, fmt.Errorf("vinnova record carries neither identifier nor title")
		}
	}

	deadlineDate := ComputeDeadlineDate(deadlines)
	status := overrideStaleStatus(ComputeStatus(opening, deadlineDate), deadlineDate)

	sponsor := "Vinnova"
	return domain.Opportunity{
		ID:         "VINNOVA:" + uid,
		Source:     "VINNOVA",
		SourceUID:  uid,
		Title:      languageMap(map[string]string{"sv": titleSv, "en": titleEn}),
		Summary:    languageMap(map[string]string{"sv": summarySv, "en": summaryEn}),
		Sponsor:    &sponsor,
		TopicCodes: []string{},
		Tags:       assignTags(n.tables.TagRules, titleSv, titleEn, summarySv, summaryEn),
		Deadlines:  deadlines,
		Status:     status,
		Links:      map[string]string{"landing": landing, "apply": applyURL},
		OpensAt:    optStr(opening),
		ClosesAt:   optStr(deadlineDate),
		Notes:      optStr(notes),
		Documents:  documents,
	}, nil
}

// languageMap builds a title/summary map with every declared language key
// present; missing translations become explicit nulls.
func languageMap(values map[string]string) map[string]*string {
	out := make(map[string]*string, len(domain.Languages))
	for _, lang := range domain.Languages {
		out[lang] = optStr(values[lang])
	}
	return out
}

func contactLine(name, email, phone, role string) string {
	parts := make([]string, 0, 4)
	if name != "" {
		parts = append(parts, name)
	}
	if email != "" {
		parts = append(parts, "<"+email+">")
	}
	if phone != "" {
		parts = append(parts, phone)
	}
	if role != "" {
		parts = append(parts, "("+role+")")
	}
	return strings.Join(parts, " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
