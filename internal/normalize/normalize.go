// Package normalize turns raw provider records into canonical funding
// opportunities. Every function is a pure transformation over its inputs
// plus the current date; nothing here performs I/O or keeps state across
// records, so callers may normalize records concurrently without
// coordination.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"GrantScanner/internal/domain"
)

// Provider families the dispatcher can route to.
const (
	SourceVinnova = "VINNOVA"
	SourceEU      = "EU"
	SourceVR      = "VR"
	SourceFormas  = "FORMAS"
	SourceForte   = "FORTE"
)

// vinnovaShapeKeys are the record keys distinctive of the Vinnova API.
var vinnovaShapeKeys = []string{"Diarienummer", "Titel", "Beskrivning", "LankLista", "DokumentLista"}

// Normalizer maps raw upstream records onto the canonical schema using the
// configured heuristic tables.
type Normalizer struct {
	tables Tables
}

// New builds a Normalizer; zero-valued tables fall back to the defaults.
func New(tables Tables) *Normalizer {
	if len(tables.DocumentKeywords) == 0 && len(tables.TagRules) == 0 {
		tables = DefaultTables()
	}
	return &Normalizer{tables: tables}
}

// Normalize converts one raw record. An already-canonical record passes
// through unchanged; a recognized source hint routes directly; otherwise
// the record shape selects the mapper, most distinctive shape first, with
// an ordered try-each fallback as the last resort. The raw record is never
// mutated.
func (n *Normalizer) Normalize(raw Raw, sourceHint string) (domain.Opportunity, error) {
	if isCanonical(raw) {
		return decodeCanonical(raw)
	}

	switch strings.ToUpper(strings.TrimSpace(sourceHint)) {
	case SourceVinnova:
		return n.mapVinnova(raw)
	case SourceEU:
		return n.mapEU(raw)
	case SourceVR:
		return n.mapFunding(raw, SourceVR)
	case SourceFormas:
		return n.mapFunding(raw, SourceFormas)
	case SourceForte:
		return n.mapFunding(raw, SourceForte)
	}

	if hasAnyKey(raw, "Finansiar", "Finansiär") {
		return n.mapFunding(raw, "")
	}
	if hasAnyKey(raw, vinnovaShapeKeys...) {
		return n.mapVinnova(raw)
	}
	if rawMap(raw, "metadata") != nil {
		return n.mapEU(raw)
	}

	var lastErr error
	for _, mapper := range []func(Raw) (domain.Opportunity, error){
		n.mapEU,
		n.mapVinnova,
		func(r Raw) (domain.Opportunity, error) { return n.mapFunding(r, "") },
	} {
		op, err := mapper(raw)
		if err == nil {
			return op, nil
		}
		lastErr = err
	}
	return domain.Opportunity{}, lastErr
}

// isCanonical detects records that already match the canonical schema:
// non-empty id and source_uid plus a map-typed links field.
func isCanonical(raw Raw) bool {
	if asString(raw["id"]) == "" || asString(raw["source_uid"]) == "" {
		return false
	}
	_, ok := raw["links"].(map[string]any)
	return ok
}

// decodeCanonical round-trips through JSON so repeated normalization of
// canonical payloads is the identity.
func decodeCanonical(raw Raw) (domain.Opportunity, error) {
	payload, err := json.Marshal(raw)
	if err != nil {
		return domain.Opportunity{}, fmt.Errorf("encode canonical record: %w", err)
	}
	var op domain.Opportunity
	if err := json.Unmarshal(payload, &op); err != nil {
		return domain.Opportunity{}, fmt.Errorf("decode canonical record: %w", err)
	}
	return op, nil
}
