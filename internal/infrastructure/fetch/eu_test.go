package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GrantScanner/internal/config"
	"GrantScanner/internal/source"
)

func TestEUFetchPagesUntilEmpty(t *testing.T) {
	var pages []float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "SEDIA", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "***", r.URL.Query().Get("text"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		page := body["pageNumber"].(float64)
		pages = append(pages, page)
		assert.EqualValues(t, 2, body["pageSize"])

		w.Header().Set("Content-Type", "application/json")
		if page >= 3 {
			fmt.Fprint(w, `{"results":[]}`)
			return
		}
		fmt.Fprintf(w, `{"results":[{"reference":"R-%d-1"},{"reference":"R-%d-2"}]}`, int(page), int(page))
	}))
	defer srv.Close()

	src := NewEUSource(config.EUConfig{
		BaseURL: srv.URL, APIKey: "SEDIA", Text: "***", PageSize: 2, MaxPages: 10,
	}, srv.Client())

	records, err := src.Fetch(context.Background(), source.Request{})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, pages)
	require.Len(t, records, 4)
	assert.Equal(t, "R-1-1", records[0]["reference"])
	assert.Equal(t, "R-2-2", records[3]["reference"])
}

func TestEUFetchStopsAtPageCap(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		fmt.Fprint(w, `{"results":[{"reference":"R"}]}`)
	}))
	defer srv.Close()

	src := NewEUSource(config.EUConfig{BaseURL: srv.URL, MaxPages: 2, PageSize: 1}, srv.Client())
	records, err := src.Fetch(context.Background(), source.Request{})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, records, 2)
}

func TestEUFetchResultListWrapper(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls > 1 {
			fmt.Fprint(w, `{}`)
			return
		}
		fmt.Fprint(w, `{"resultList":{"result":[{"reference":"W-1"}]}}`)
	}))
	defer srv.Close()

	src := NewEUSource(config.EUConfig{BaseURL: srv.URL, MaxPages: 5, PageSize: 10}, srv.Client())
	records, err := src.Fetch(context.Background(), source.Request{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "W-1", records[0]["reference"])
}

func TestEUFetchErrorIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src := NewEUSource(config.EUConfig{BaseURL: srv.URL}, srv.Client())
	_, err := src.Fetch(context.Background(), source.Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 1")
	assert.Contains(t, err.Error(), "quota exceeded")
}
