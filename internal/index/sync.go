package index

import (
	"context"
	"log/slog"
	"time"
)

// Rebuilder re-derives the search index and link graph from note rows.
type Rebuilder interface {
	RebuildSearchIndex(ctx context.Context) (int, error)
	RebuildLinks(ctx context.Context) (int, error)
}

// SyncStats reports what Sync rebuilt.
type SyncStats struct {
	Indexed int
	Links   int
}

// Sync brings the derived data up to date with the notes table:
//   - the FTS index is dropped and repopulated
//   - the link graph is re-derived from every note's content
func Sync(ctx context.Context, db Rebuilder, logger *slog.Logger) (SyncStats, error) {
	start := time.Now()
	var st SyncStats

	n, err := db.RebuildSearchIndex(ctx)
	if err != nil {
		logger.Warn("sync: search index rebuild failed", slog.String("error", err.Error()))
		return st, err
	}
	st.Indexed = n

	links, err := db.RebuildLinks(ctx)
	if err != nil {
		logger.Warn("sync: link rebuild failed", slog.String("error", err.Error()))
		return st, err
	}
	st.Links = links

	logger.Info("sync: done",
		slog.Int("notes", st.Indexed),
		slog.Int("links", st.Links),
		slog.Duration("took", time.Since(start)))
	return st, nil
}
