// Package source provides read-only access to document stores. The
// engine never writes back through any of these backends.
package source

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/integrity-cli/internal/model"
)

// Source is a paginated, read-only document store.
type Source interface {
	// FetchRecords returns up to limit records for the collection,
	// starting at offset, in a stable order.
	FetchRecords(ctx context.Context, collection string, limit, offset int) ([]model.DocumentRecord, error)
	Close() error
}

// FetchAll drains a collection page by page, pacing page fetches with
// the given limiter so large collections don't saturate the backing
// store. A nil limiter fetches unthrottled.
func FetchAll(ctx context.Context, src Source, collection string, pageSize int, limiter *rate.Limiter) ([]model.DocumentRecord, error) {
	if pageSize < 1 {
		pageSize = 500
	}

	records := make([]model.DocumentRecord, 0, pageSize)
	for offset := 0; ; offset += pageSize {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "source: rate limit wait")
			}
		}
		page, err := src.FetchRecords(ctx, collection, pageSize, offset)
		if err != nil {
			return nil, eris.Wrapf(err, "source: fetch page at offset %d", offset)
		}
		records = append(records, page...)
		if len(page) < pageSize {
			return records, nil
		}
	}
}
