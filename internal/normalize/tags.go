package normalize

import "strings"

// TagRule binds one tag to the keywords that trigger it. Rules are ordered;
// tag order in the output follows rule order.
type TagRule struct {
	Tag      string
	Keywords []string
}

// Tables holds the heuristic keyword data the mappers consult. The tables
// are configuration, not code: deployments extend them without touching
// mapping logic.
type Tables struct {
	DocumentKeywords []string
	TagRules         []TagRule
}

// DefaultTables returns the built-in heuristics.
func DefaultTables() Tables {
	return Tables{
		DocumentKeywords: []string{
			"call", "work programme", "work program", "guide", "guidance",
			"template", "terms", "conditions", "instructions",
		},
		TagRules: []TagRule{
			{Tag: "electric aviation", Keywords: []string{"electric aviation", "elflyg", "electric flight", "luftfart", "aviation"}},
			{Tag: "sme", Keywords: []string{"sme", "small and medium", "små och medelstora", "smf"}},
			{Tag: "sustainability", Keywords: []string{"sustainab", "hållbar", "climate", "klimat"}},
			{Tag: "research infrastructure", Keywords: []string{"research infrastructure", "forskningsinfrastruktur"}},
			{Tag: "international", Keywords: []string{"international", "internationell", "horizon europe"}},
		},
	}
}

// assignTags scans the combined texts case-insensitively against the rule
// set. Duplicate tags are suppressed.
func assignTags(rules []TagRule, texts ...string) []string {
	haystack := strings.ToLower(strings.Join(texts, " "))
	tags := []string{}
	seen := map[string]struct{}{}
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(haystack, strings.ToLower(kw)) {
				tags = appendUnique(tags, seen, rule.Tag)
				break
			}
		}
	}
	return tags
}
