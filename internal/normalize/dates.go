package normalize

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"GrantScanner/internal/domain"
)

const canonicalDate = "2006-01-02"

// timeNow is swapped in tests that pin "today".
var timeNow = time.Now

var (
	tzSuffix  = regexp.MustCompile(`(\d{2}:\d{2}(?::\d{2})?)([+-]\d{2})(\d{2})$`)
	isoPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	isoInside = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
)

// dateFormats is tried in priority order; first success wins. Providers mix
// ISO datetimes, "19 January 2025" prose, compact YYYYMMDD, and slash or
// dash delimited day-first forms.
var dateFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2 January 2006",
	"2 Jan 2006",
	"20060102",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
}

// ParseDateMaybe reduces a heterogeneous date representation to YYYY-MM-DD.
// Malformed input degrades to "" (date unknown), never an error.
func ParseDateMaybe(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// +0000 -> +00:00, only after a time component so day-first dates
	// like 01-12-2025 are left alone
	s = tzSuffix.ReplaceAllString(s, "$1$2:$3")
	if isoPrefix.MatchString(s) {
		return s[:10]
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(canonicalDate)
		}
	}
	if m := isoInside.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// ComputeDeadlineDate picks the representative deadline: the earliest
// upcoming date, or the latest past one when the call has fully lapsed.
// Returns "" when no entry parses.
func ComputeDeadlineDate(deadlines []domain.Deadline) string {
	today := todayUTC()
	var parsed []time.Time
	for _, d := range deadlines {
		if d.Date == "" {
			continue
		}
		if t, err := time.Parse(canonicalDate, d.Date); err == nil {
			parsed = append(parsed, t)
		}
	}
	if len(parsed) == 0 {
		return ""
	}

	var future []time.Time
	for _, t := range parsed {
		if !t.Before(today) {
			future = append(future, t)
		}
	}
	if len(future) > 0 {
		sort.Slice(future, func(i, j int) bool { return future[i].Before(future[j]) })
		return future[0].Format(canonicalDate)
	}

	latest := parsed[0]
	for _, t := range parsed[1:] {
		if t.After(latest) {
			latest = t
		}
	}
	return latest.Format(canonicalDate)
}

func todayUTC() time.Time {
	now := timeNow().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
