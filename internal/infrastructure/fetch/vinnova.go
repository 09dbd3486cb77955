// Package fetch holds the per-provider HTTP fetchers. They own network
// I/O, paging, and auth; everything they return is a raw record for the
// normalization engine, which makes no assumption about completeness or
// ordering.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"GrantScanner/internal/config"
	"GrantScanner/internal/normalize"
	"GrantScanner/internal/source"
)

var isoDay = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// VinnovaSource fetches application rounds from the Vinnova open-data API,
// incrementally by date.
type VinnovaSource struct {
	cfg    config.VinnovaConfig
	client *http.Client
}

var _ source.Source = (*VinnovaSource)(nil)

// NewVinnovaSource wires an HTTP client; a nil client gets a default.
func NewVinnovaSource(cfg config.VinnovaConfig, client *http.Client) *VinnovaSource {
	if client == nil {
		client = &http.Client{Timeout: 40 * time.Second}
	}
	return &VinnovaSource{cfg: cfg, client: client}
}

// Name identifies the source and doubles as the dispatcher hint.
func (v *VinnovaSource) Name() string {
	return normalize.SourceVinnova
}

// Fetch pulls all rounds changed since the configured date. The endpoint
// usually returns a bare list but sometimes wraps it in a results object.
func (v *VinnovaSource) Fetch(ctx context.Context, req source.Request) ([]normalize.Raw, error) {
	since := req.Since
	if since == "" {
		since = v.cfg.Since
	}
	if !isoDay.MatchString(since) {
		since = "2024-01-01"
	}

	url := strings.TrimSuffix(v.cfg.BaseURL, "/") + "/" + since
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "GrantScanner/1.0")

	resp, err := v.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request rounds: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vinnova returned %s", resp.Status)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode rounds: %w", err)
	}
	return unwrapRecords(payload, "results", "Result", "data"), nil
}

// unwrapRecords accepts either a bare list of records or an object wrapping
// the list under one of the given keys.
func unwrapRecords(payload any, wrapperKeys ...string) []normalize.Raw {
	items, ok := payload.([]any)
	if !ok {
		obj, isObj := payload.(map[string]any)
		if !isObj {
			return nil
		}
		for _, key := range wrapperKeys {
			if l, found := obj[key].([]any); found {
				items = l
				break
			}
		}
	}

	records := make([]normalize.Raw, 0, len(items))
	for _, item := range items {
		if rec, ok := item.(map[string]any); ok {
			records = append(records, rec)
		}
	}
	return records
}
