package worker

import "context"

// Job is a unit of work submitted to the pool. Jobs must be safe to run
// repeatedly: the sync jobs rely on ingestion dedup for idempotency.
type Job func(ctx context.Context) error
