package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
)

// Raw is one provider-native record as decoded from JSON. Shape varies per
// provider and even between records of the same provider.
type Raw = map[string]any

var spaceRuns = regexp.MustCompile(`\s+`)

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRuns.ReplaceAllString(s, " "))
}

// rawString returns the first non-empty string among the given keys.
// Accented alternate spellings of a field are passed in priority order.
func rawString(r Raw, keys ...string) string {
	for _, key := range keys {
		if s := asString(r[key]); s != "" {
			return s
		}
	}
	return ""
}

func rawMap(r Raw, key string) Raw {
	if m, ok := r[key].(map[string]any); ok {
		return m
	}
	return nil
}

func rawList(r Raw, key string) []any {
	if l, ok := r[key].([]any); ok {
		return l
	}
	return nil
}

// rawStrings returns the string members of a list-valued field.
func rawStrings(r Raw, key string) []string {
	var out []string
	for _, v := range rawList(r, key) {
		if s := asString(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// first unwraps the list-of-strings convention used by the EU search API,
// where most metadata fields are single-element arrays.
func first(v any) string {
	if l, ok := v.([]any); ok && len(l) > 0 {
		return asString(l[0])
	}
	return ""
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func hasAnyKey(r Raw, keys ...string) bool {
	for _, key := range keys {
		if _, ok := r[key]; ok {
			return true
		}
	}
	return false
}

// fallbackUID derives a stable identifier from normalized title text for
// records whose provider supplies no explicit id. Empty titles yield "".
func fallbackUID(title string) string {
	norm := collapseSpace(strings.ToLower(title))
	if norm == "" {
		return ""
	}
	sum := sha1.Sum([]byte(norm))
	return "t-" + hex.EncodeToString(sum[:])[:12]
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// truncateRunes bounds a string without rejecting over-long upstream values.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// appendUnique keeps first-occurrence order while suppressing duplicates.
func appendUnique(dst []string, seen map[string]struct{}, values ...string) []string {
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		dst = append(dst, v)
	}
	return dst
}
