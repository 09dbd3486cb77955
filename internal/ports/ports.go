package ports

import (
	"context"
	"time"

	"GrantScanner/internal/domain"
)

// OpportunityRepository persists canonical records; upserts are keyed by
// source_uid so repeated ingestion runs converge.
type OpportunityRepository interface {
	Upsert(ctx context.Context, op domain.Opportunity) error
}

// Notifier delivers run digests (newly open calls) to an outbound channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when ingestion runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
