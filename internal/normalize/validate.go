package normalize

import (
	"fmt"
	"regexp"

	"GrantScanner/internal/domain"
)

// Validator structurally checks produced canonical records before they are
// handed to persistence. A failure here signals a mapper defect, not
// upstream data noise, so it surfaces as a hard, path-qualified error.
// Construct one at process start and inject it where the check happens.
type Validator struct {
	datePattern *regexp.Regexp
	statuses    map[domain.Status]struct{}
}

// NewValidator builds the validator value.
func NewValidator() *Validator {
	return &Validator{
		datePattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		statuses: map[domain.Status]struct{}{
			domain.StatusOpen:    {},
			domain.StatusPlanned: {},
			domain.StatusClosed:  {},
			domain.StatusUnknown: {},
		},
	}
}

// Validate reports the first schema violation found, qualified by field
// path, or nil when the record is structurally sound.
func (v *Validator) Validate(op domain.Opportunity) error {
	if op.ID == "" {
		return fmt.Errorf("opportunity.id: must not be empty")
	}
	if op.Source == "" {
		return fmt.Errorf("opportunity.source: must not be empty")
	}
	if op.SourceUID == "" {
		return fmt.Errorf("opportunity.source_uid: must not be empty")
	}
	for _, lang := range domain.Languages {
		if _, ok := op.Title[lang]; !ok {
			return fmt.Errorf("opportunity.title.%s: language key missing", lang)
		}
		if _, ok := op.Summary[lang]; !ok {
			return fmt.Errorf("opportunity.summary.%s: language key missing", lang)
		}
	}
	if op.Programme != nil && len([]rune(*op.Programme)) > programmeBound {
		return fmt.Errorf("opportunity.programme: exceeds %d characters", programmeBound)
	}
	for i, d := range op.Deadlines {
		if d.Type == "" {
			return fmt.Errorf("opportunity.deadlines[%d].type: must not be empty", i)
		}
		if !v.datePattern.MatchString(d.Date) {
			return fmt.Errorf("opportunity.deadlines[%d].date: %q is not YYYY-MM-DD", i, d.Date)
		}
	}
	if _, ok := v.statuses[op.Status]; !ok {
		return fmt.Errorf("opportunity.status: %q is not a known status", op.Status)
	}
	if op.Links == nil {
		return fmt.Errorf("opportunity.links: must be present")
	}
	if _, ok := op.Links["landing"]; !ok {
		return fmt.Errorf("opportunity.links.landing: required key missing")
	}
	return nil
}
