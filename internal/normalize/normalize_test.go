package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GrantScanner/internal/domain"
)

func canonicalRaw() Raw {
	return Raw{
		"id":         "VINNOVA:2024-01234",
		"source":     "VINNOVA",
		"source_uid": "2024-01234",
		"title":      map[string]any{"sv": "Stöd", "en": nil},
		"summary":    map[string]any{"sv": nil, "en": nil},
		"status":     "open",
		"links":      map[string]any{"landing": "https://vinnova.se/e/1"},
		"deadlines":  []any{map[string]any{"type": "single", "date": "2099-01-01"}},
	}
}

func TestNormalizeCanonicalPassThrough(t *testing.T) {
	n := New(Tables{})

	op, err := n.Normalize(canonicalRaw(), "")
	require.NoError(t, err)

	assert.Equal(t, "VINNOVA:2024-01234", op.ID)
	assert.Equal(t, "2024-01234", op.SourceUID)
	assert.Equal(t, domain.StatusOpen, op.Status)
	assert.Equal(t, "Stöd", *op.Title["sv"])
	assert.Nil(t, op.Title["en"])
	assert.Equal(t, map[string]string{"landing": "https://vinnova.se/e/1"}, op.Links)
	require.Len(t, op.Deadlines, 1)
	assert.Equal(t, "2099-01-01", op.Deadlines[0].Date)
}

func TestNormalizeCanonicalIgnoresHint(t *testing.T) {
	n := New(Tables{})

	// a canonical record routed with a wrong hint still passes through
	op, err := n.Normalize(canonicalRaw(), "EU")
	require.NoError(t, err)
	assert.Equal(t, "VINNOVA:2024-01234", op.ID)
	assert.Equal(t, "VINNOVA", op.Source)
}

func TestNormalizeHintCaseInsensitive(t *testing.T) {
	n := New(Tables{})

	for _, hint := range []string{"vinnova", "Vinnova", " VINNOVA "} {
		op, err := n.Normalize(Raw{"Diarienummer": "2024-1", "Titel": "T"}, hint)
		require.NoError(t, err, hint)
		assert.Equal(t, "VINNOVA", op.Source, hint)
	}
}

func TestNormalizeShapeDetection(t *testing.T) {
	n := New(Tables{})

	t.Run("funder field wins over vinnova-looking keys", func(t *testing.T) {
		op, err := n.Normalize(Raw{
			"Finansiar":    "VR",
			"Titel":        "Projektbidrag",
			"UtlysningsID": "VR-1",
		}, "")
		require.NoError(t, err)
		assert.Equal(t, "VR", op.Source)
	})

	t.Run("vinnova keys", func(t *testing.T) {
		op, err := n.Normalize(Raw{"Diarienummer": "2024-2", "Titel": "T"}, "")
		require.NoError(t, err)
		assert.Equal(t, "VINNOVA", op.Source)
	})

	t.Run("metadata map routes to eu", func(t *testing.T) {
		op, err := n.Normalize(Raw{
			"metadata": map[string]any{"identifier": []any{"HORIZON-1"}},
		}, "")
		require.NoError(t, err)
		assert.Equal(t, "EU", op.Source)
	})
}

func TestNormalizeFallbackOrder(t *testing.T) {
	n := New(Tables{})

	// no hint, no distinctive shape: the eu mapper runs first and its uid
	// fallback on the summary title succeeds
	op, err := n.Normalize(Raw{"summary": "Mystery call"}, "")
	require.NoError(t, err)
	assert.Equal(t, "EU", op.Source)
}

func TestNormalizeUnmappableRecord(t *testing.T) {
	n := New(Tables{})

	_, err := n.Normalize(Raw{"noise": "only"}, "")
	require.Error(t, err)
	// the last mapper tried is the funding one
	assert.Contains(t, err.Error(), "no funder")
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	n := New(Tables{})

	raw := Raw{
		"Diarienummer": "2024-3",
		"Titel":        "Orörd",
		"LankLista": []any{
			map[string]any{"URL": "https://vinnova.se/a", "Beskrivning": "Läs mer"},
		},
	}
	_, err := n.Normalize(raw, "VINNOVA")
	require.NoError(t, err)

	assert.Equal(t, "Orörd", raw["Titel"])
	assert.Len(t, raw, 3)
	assert.Len(t, raw["LankLista"], 1)
}
