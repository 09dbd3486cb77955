package normalize

import (
	"strings"
	"time"

	"GrantScanner/internal/domain"
)

// ComputeStatus infers lifecycle status from dates alone. A future opening
// wins over any deadline comparison; a deadline that is today still counts
// as open.
func ComputeStatus(openingDate, deadlineDate string) domain.Status {
	if openingDate == "" && deadlineDate == "" {
		return domain.StatusUnknown
	}
	today := todayUTC()
	od, odOK := parseCanonical(openingDate)
	dd, ddOK := parseCanonical(deadlineDate)

	switch {
	case odOK && today.Before(od):
		return domain.StatusPlanned
	case ddOK && !today.After(dd):
		return domain.StatusOpen
	case ddOK && today.After(dd):
		return domain.StatusClosed
	}
	return domain.StatusUnknown
}

// overrideStaleStatus forces closed when the computed deadline already
// passed: upstream indices are allowed to be stale, date truth wins.
func overrideStaleStatus(status domain.Status, deadlineDate string) domain.Status {
	if dd, ok := parseCanonical(deadlineDate); ok && todayUTC().After(dd) {
		return domain.StatusClosed
	}
	return status
}

func parseCanonical(date string) (time.Time, bool) {
	if date == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(canonicalDate, date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// statusFromText maps the provider status vocabularies (Swedish and
// English) onto the canonical set.
func statusFromText(s string) domain.Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kommande", "planerad", "forthcoming", "upcoming", "planned":
		return domain.StatusPlanned
	case "öppen", "oppen", "open":
		return domain.StatusOpen
	case "stängd", "stangd", "avslutad", "closed":
		return domain.StatusClosed
	}
	return domain.StatusUnknown
}

// euStatus resolves the EU portal's status markers: either the action
// abbreviation or the portal's numeric status identifiers.
func euStatus(s string) domain.Status {
	switch strings.TrimSpace(s) {
	case "31094501":
		return domain.StatusPlanned
	case "31094502":
		return domain.StatusOpen
	case "31094503":
		return domain.StatusClosed
	}
	return statusFromText(s)
}

// funderStatusCodes holds the numeric status tables per Swedish funder.
// The codes genuinely disagree between agencies, so the tables stay
// separate instead of being unified.
var funderStatusCodes = map[string]map[string]domain.Status{
	"VR": {
		"1": domain.StatusPlanned,
		"2": domain.StatusOpen,
		"3": domain.StatusClosed,
	},
	"FORMAS": {
		"0": domain.StatusPlanned,
		"1": domain.StatusOpen,
		"2": domain.StatusClosed,
	},
	"FORTE": {
		"1": domain.StatusOpen,
		"2": domain.StatusClosed,
		"3": domain.StatusPlanned,
	},
}

// funderStatus resolves an explicit status code or text for one funder,
// falling back to the shared text vocabulary.
func funderStatus(funder, code string) domain.Status {
	if code == "" {
		return domain.StatusUnknown
	}
	if table, ok := funderStatusCodes[funder]; ok {
		if st, ok := table[code]; ok {
			return st
		}
	}
	return statusFromText(code)
}
