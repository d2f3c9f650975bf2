package core

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Context keys for scrape options
type contextKey string

const runIDKey contextKey = "runID"

// withRunID attaches the scrape run ID to the context.
func withRunID(ctx context.Context, runID int64) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// runIDFrom returns the scrape run ID of the context, or 0 outside a scrape.
func runIDFrom(ctx context.Context) int64 {
	val := ctx.Value(runIDKey)
	if val == nil {
		return 0
	}
	runID, ok := val.(int64)
	if !ok {
		return 0
	}
	return runID
}

// loggerFor returns a logger tagged with the scrape run and PR.
func loggerFor(ctx context.Context, pr int) *log.Entry {
	entry := log.WithField("pr", pr)
	if runID := runIDFrom(ctx); runID > 0 {
		entry = entry.WithField("run_id", runID)
	}
	return entry
}
