package main

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/integrity-cli/internal/model"
	"github.com/sells-group/integrity-cli/internal/source"
)

// openSource constructs the configured document source backend. The
// --input flag, when set, overrides the configured backend with a JSONL
// file.
func openSource(ctx context.Context, inputFile string) (source.Source, error) {
	if inputFile != "" {
		return source.NewJSONL(inputFile)
	}
	switch cfg.Source.Driver {
	case "sqlite":
		return source.NewSQLite(cfg.Source.Path)
	case "postgres":
		return source.NewPostgres(ctx, cfg.Source.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown source driver %q", cfg.Source.Driver)
	}
}

// fetchCollection drains the collection through the configured
// pagination and rate limits.
func fetchCollection(ctx context.Context, src source.Source, collection string) ([]model.DocumentRecord, error) {
	var limiter *rate.Limiter
	if cfg.Fetch.PagesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Fetch.PagesPerSecond), 1)
	}
	records, err := source.FetchAll(ctx, src, collection, cfg.Fetch.PageSize, limiter)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.DocumentRecord{}
	}
	return records, nil
}
