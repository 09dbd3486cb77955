package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"GrantScanner/internal/config"
	"GrantScanner/internal/normalize"
	"GrantScanner/internal/source"
)

// euQuery filters for open grant calls under the current framework
// programme period.
var euQuery = map[string]any{
	"bool": map[string]any{
		"must": []any{
			map[string]any{"terms": map[string]any{"type": []string{"1", "2"}}},
			map[string]any{"terms": map[string]any{"status": []string{"31094502"}}},
			map[string]any{"term": map[string]any{"programmePeriod": "2021 - 2027"}},
			map[string]any{"terms": map[string]any{"frameworkProgramme": []string{"43108390"}}},
		},
	},
}

// EUSource fetches call topics from the EU funding & tenders search API.
type EUSource struct {
	cfg    config.EUConfig
	client *http.Client
}

var _ source.Source = (*EUSource)(nil)

// NewEUSource wires an HTTP client; a nil client gets a default.
func NewEUSource(cfg config.EUConfig, client *http.Client) *EUSource {
	if client == nil {
		client = &http.Client{Timeout: 40 * time.Second}
	}
	return &EUSource{cfg: cfg, client: client}
}

// Name identifies the source and doubles as the dispatcher hint.
func (e *EUSource) Name() string {
	return normalize.SourceEU
}

// Fetch pages through the search API until a page comes back empty or the
// configured page cap is reached.
func (e *EUSource) Fetch(ctx context.Context, _ source.Request) ([]normalize.Raw, error) {
	pageSize := e.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	maxPages := e.cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 10
	}

	var records []normalize.Raw
	for page := 1; page <= maxPages; page++ {
		items, err := e.fetchPage(ctx, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(items) == 0 {
			break
		}
		records = append(records, items...)
	}
	return records, nil
}

func (e *EUSource) fetchPage(ctx context.Context, page, pageSize int) ([]normalize.Raw, error) {
	body, err := json.Marshal(map[string]any{
		"query":      euQuery,
		"sort":       []any{map[string]any{"field": "sortStatus", "order": "ASC"}},
		"pageNumber": page,
		"pageSize":   pageSize,
		"languages":  []string{"en"},
		"fields":     []string{"*"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s?apiKey=%s&text=%s",
		e.cfg.BaseURL, url.QueryEscape(e.cfg.APIKey), url.QueryEscape(e.cfg.Text))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("search api %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// hits live either at the top level or inside resultList
	if items := unwrapRecords(data["results"]); len(items) > 0 {
		return items, nil
	}
	if rl, ok := data["resultList"].(map[string]any); ok {
		if items := unwrapRecords(rl["results"]); len(items) > 0 {
			return items, nil
		}
		return unwrapRecords(rl["result"]), nil
	}
	return nil, nil
}
