package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"GrantScanner/internal/config"
	"GrantScanner/internal/normalize"
	"GrantScanner/internal/source"
)

// FundingSource fetches "utlysningar" from one agency of the shared
// VR/Formas/Forte API family. Each agency authorizes with its own API key,
// read from the configured environment variable.
type FundingSource struct {
	cfg    config.FunderConfig
	client *http.Client
	logger *slog.Logger
}

var _ source.Source = (*FundingSource)(nil)

// NewFundingSource wires one funder; a nil client gets a default.
func NewFundingSource(cfg config.FunderConfig, client *http.Client, log *slog.Logger) *FundingSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &FundingSource{cfg: cfg, client: client, logger: log}
}

// Name identifies the funder and doubles as the dispatcher hint.
func (f *FundingSource) Name() string {
	src, _ := normalize.FunderSource(f.cfg.Name)
	return src
}

// Fetch pulls the full call list. A missing API key is an operational
// condition, not an error: it logs and yields zero records.
func (f *FundingSource) Fetch(ctx context.Context, _ source.Request) ([]normalize.Raw, error) {
	apiKey := os.Getenv(f.cfg.APIKeyEnv)
	if apiKey == "" {
		if f.logger != nil {
			f.logger.Warn("missing api key, skipping funder", "funder", f.cfg.Name, "env", f.cfg.APIKeyEnv)
		}
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", apiKey)
	req.Header.Set("User-Agent", "GrantScanner/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request calls: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", f.cfg.Name, resp.Status)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode calls: %w", err)
	}
	return unwrapRecords(payload, "results", "Result", "data"), nil
}
