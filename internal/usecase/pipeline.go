package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"GrantScanner/internal/domain"
	"GrantScanner/internal/normalize"
	"GrantScanner/internal/ports"
	"GrantScanner/internal/source"
)

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Sources    *source.Registry
	Normalizer *normalize.Normalizer
	Validator  *normalize.Validator
	Repository ports.OpportunityRepository
	Notifier   ports.Notifier
	Since      string
	Logger     *slog.Logger
}

// Pipeline implements the opportunity-ingestion workflow: fetch raw records
// per source, normalize with the source name as dispatcher hint, validate,
// upsert, and digest the open calls of the run.
type Pipeline struct {
	sources    *source.Registry
	normalizer *normalize.Normalizer
	validator  *normalize.Validator
	repository ports.OpportunityRepository
	notifier   ports.Notifier
	since      string
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		sources:    deps.Sources,
		normalizer: deps.Normalizer,
		validator:  deps.Validator,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		since:      deps.Since,
		logger:     deps.Logger,
	}
}

// Run executes one ingestion sweep across all registered sources. A record
// that fails to normalize or validate is logged and skipped; the batch
// never aborts on a single bad record.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.sources == nil || p.normalizer == nil {
		return nil
	}

	var openCalls []domain.Opportunity
	for _, src := range p.sources.All() {
		raws, err := src.Fetch(ctx, source.Request{Since: p.since})
		if err != nil {
			p.warn("fetch failed", "source", src.Name(), "error", err)
			continue
		}
		p.debug("fetched records", "source", src.Name(), "count", len(raws))

		for i, raw := range raws {
			op, err := p.normalizer.Normalize(raw, src.Name())
			if err != nil {
				p.warn("normalize failed", "source", src.Name(), "record", i, "error", err)
				continue
			}
			if p.validator != nil {
				if err := p.validator.Validate(op); err != nil {
					p.warn("invalid canonical record", "source", src.Name(), "id", op.ID, "error", err)
					continue
				}
			}
			if p.repository != nil {
				if err := p.repository.Upsert(ctx, op); err != nil {
					p.warn("upsert failed", "id", op.ID, "error", err)
					continue
				}
			}
			if op.Status == domain.StatusOpen {
				openCalls = append(openCalls, op)
			}
		}
	}

	if p.notifier == nil || len(openCalls) == 0 {
		return nil
	}
	if err := p.notifier.PublishDigest(ctx, buildDigest(openCalls)); err != nil {
		return fmt.Errorf("publish digest: %w", err)
	}
	return nil
}

// buildDigest renders the open calls of one run as a Markdown list.
func buildDigest(calls []domain.Opportunity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%d open funding calls*\n\n", len(calls))
	for _, op := range calls {
		fmt.Fprintf(&b, "- %s", displayTitle(op))
		if op.ClosesAt != nil {
			fmt.Fprintf(&b, " (closes %s)", *op.ClosesAt)
		}
		if landing := op.Links["landing"]; landing != "" {
			fmt.Fprintf(&b, "\n  %s", landing)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func displayTitle(op domain.Opportunity) string {
	for _, lang := range domain.Languages {
		if t := op.Title[lang]; t != nil && *t != "" {
			return *t
		}
	}
	return op.ID
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
