package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"GrantScanner/internal/domain"
)

func TestComputeStatus(t *testing.T) {
	withToday(t, "2025-06-15")

	cases := []struct {
		name     string
		opening  string
		deadline string
		want     domain.Status
	}{
		{"no dates", "", "", domain.StatusUnknown},
		{"future opening wins over deadline", "2025-07-01", "2025-08-01", domain.StatusPlanned},
		{"future deadline", "2025-01-01", "2025-08-01", domain.StatusOpen},
		{"deadline today is open", "", "2025-06-15", domain.StatusOpen},
		{"past deadline", "2025-01-01", "2025-02-01", domain.StatusClosed},
		{"past opening only", "2025-01-01", "", domain.StatusUnknown},
		{"unparsable dates", "nope", "nope", domain.StatusUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeStatus(tc.opening, tc.deadline))
		})
	}
}

func TestOverrideStaleStatus(t *testing.T) {
	withToday(t, "2025-06-15")

	assert.Equal(t, domain.StatusClosed, overrideStaleStatus(domain.StatusOpen, "2025-01-01"))
	assert.Equal(t, domain.StatusOpen, overrideStaleStatus(domain.StatusOpen, "2025-12-01"))
	assert.Equal(t, domain.StatusPlanned, overrideStaleStatus(domain.StatusPlanned, ""))
}

func TestStatusFromText(t *testing.T) {
	assert.Equal(t, domain.StatusPlanned, statusFromText("Forthcoming"))
	assert.Equal(t, domain.StatusPlanned, statusFromText("kommande"))
	assert.Equal(t, domain.StatusOpen, statusFromText("Öppen"))
	assert.Equal(t, domain.StatusOpen, statusFromText("open"))
	assert.Equal(t, domain.StatusClosed, statusFromText("avslutad"))
	assert.Equal(t, domain.StatusUnknown, statusFromText("whatever"))
}

func TestEUStatus(t *testing.T) {
	assert.Equal(t, domain.StatusPlanned, euStatus("31094501"))
	assert.Equal(t, domain.StatusOpen, euStatus("31094502"))
	assert.Equal(t, domain.StatusClosed, euStatus("31094503"))
	assert.Equal(t, domain.StatusOpen, euStatus("Open"))
	assert.Equal(t, domain.StatusUnknown, euStatus("12345"))
}

func TestFunderStatusTablesDiverge(t *testing.T) {
	// the same numeric code means different things per funder
	assert.Equal(t, domain.StatusClosed, funderStatus("VR", "3"))
	assert.Equal(t, domain.StatusPlanned, funderStatus("FORTE", "3"))
	assert.Equal(t, domain.StatusPlanned, funderStatus("FORMAS", "0"))
	assert.Equal(t, domain.StatusOpen, funderStatus("FORMAS", "1"))

	// text fallback and unknowns
	assert.Equal(t, domain.StatusPlanned, funderStatus("VR", "kommande"))
	assert.Equal(t, domain.StatusUnknown, funderStatus("VR", ""))
	assert.Equal(t, domain.StatusUnknown, funderStatus("UNKNOWN", "9"))
}
