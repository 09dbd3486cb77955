package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GrantScanner/internal/domain"
)

func TestMapEUFromActions(t *testing.T) {
	withToday(t, "2025-06-15")
	n := New(Tables{})

	actions := `[{
		"plannedOpeningDate": "2025-05-01T00:00:00",
		"deadlineDates": ["2025-09-18T17:00:00", "2026-01-20T17:00:00"],
		"status": {"abbreviation": "31094502"}
	}]`

	op, err := n.Normalize(Raw{
		"reference": "HORIZON-CL5-2025-D5-01-01",
		"summary":   "Demonstration of electric aviation",
		"url":       []any{"https://ec.europa.eu/info/funding-tenders/opportunity"},
		"metadata": map[string]any{
			"identifier":     []any{"HORIZON-CL5-2025-D5-01-01"},
			"title":          []any{"Electric regional aviation"},
			"callTitle":      []any{"Clean and competitive solutions for all transport modes"},
			"callIdentifier": []any{"HORIZON-CL5-2025-D5-01"},
			"keywords":       []any{"aviation", "batteries"},
			"tags":           []any{"aviation"},
			"actions":        []any{actions},
			"esST_URL":       []any{"https://ec.europa.eu/topic/HORIZON-CL5-2025-D5-01-01"},
			"descriptionByte": []any{
				`<p>Expected outcome. See the <a href="https://ec.europa.eu/wp.pdf">Work Programme</a> and <a href="https://ec.europa.eu/faq">FAQ</a>.</p>`,
			},
		},
	}, "EU")
	require.NoError(t, err)

	assert.Equal(t, "EU:HORIZON-CL5-2025-D5-01-01", op.ID)
	assert.Equal(t, "EU", op.Source)
	assert.Equal(t, "Electric regional aviation", *op.Title["en"])
	assert.Nil(t, op.Title["sv"])

	require.Len(t, op.Deadlines, 2)
	assert.Equal(t, "2025-09-18", op.Deadlines[0].Date)
	assert.Equal(t, "2026-01-20", op.Deadlines[1].Date)
	// earliest upcoming cutoff is the representative deadline
	assert.Equal(t, "2025-09-18", *op.ClosesAt)
	assert.Equal(t, "2025-05-01", *op.OpensAt)
	assert.Equal(t, domain.StatusOpen, op.Status)

	assert.Equal(t, "https://ec.europa.eu/topic/HORIZON-CL5-2025-D5-01-01", op.Links["landing"])

	require.Len(t, op.Documents, 1)
	assert.Equal(t, "https://ec.europa.eu/wp.pdf", op.Documents[0].URL)

	assert.Equal(t, []string{"HORIZON-CL5-2025-D5-01", "aviation", "batteries"}, op.TopicCodes)
	require.NotNil(t, op.Programme)
	assert.Equal(t, "Clean and competitive solutions for all transport modes", *op.Programme)
	assert.Equal(t, "European Commission", *op.Sponsor)
}

func TestMapEUStaleOpenBecomesClosed(t *testing.T) {
	withToday(t, "2025-06-15")
	n := New(Tables{})

	op, err := n.Normalize(Raw{
		"metadata": map[string]any{
			"identifier":   []any{"HORIZON-OLD-01"},
			"title":        []any{"Expired call"},
			"status":       []any{"31094502"},
			"deadlineDate": []any{"2024-03-01T17:00:00"},
		},
	}, "EU")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, op.Status)
	assert.Equal(t, "2024-03-01", *op.ClosesAt)
}

func TestMapEUFlatFallbacks(t *testing.T) {
	withToday(t, "2025-06-15")
	n := New(Tables{})

	op, err := n.Normalize(Raw{
		"reference": "REF-77",
		"url":       []any{"https://ec.europa.eu/ref-77"},
		"metadata": map[string]any{
			"startDate":    []any{"2025-07-01T00:00:00"},
			"deadlineDate": []any{"2025-10-01T17:00:00"},
			"status":       []any{"31094501"},
		},
	}, "EU")
	require.NoError(t, err)

	assert.Equal(t, "EU:REF-77", op.ID)
	assert.Equal(t, domain.StatusPlanned, op.Status)
	assert.Equal(t, "2025-07-01", *op.OpensAt)
	assert.Equal(t, "https://ec.europa.eu/ref-77", op.Links["landing"])
	assert.Nil(t, op.Title["en"])
}

func TestMapEUUIDFallbackFromTitle(t *testing.T) {
	n := New(Tables{})

	op, err := n.Normalize(Raw{
		"metadata": map[string]any{"title": []any{"Only a title"}},
	}, "EU")
	require.NoError(t, err)
	assert.Regexp(t, `^EU:t-[0-9a-f]{12}$`, op.ID)
}

func TestMapEUNoIdentifierNoTitle(t *testing.T) {
	n := New(Tables{})
	_, err := n.Normalize(Raw{"metadata": map[string]any{}}, "EU")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither identifier nor title")
}
