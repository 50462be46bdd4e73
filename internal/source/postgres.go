package source

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/integrity-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the source needs. pgxmock
// satisfies it in tests.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresSource reads documents from Postgres via pgx.
type PostgresSource struct {
	pool Pool
}

// NewPostgres connects a PostgresSource to the given database.
func NewPostgres(ctx context.Context, connString string) (*PostgresSource, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresSource{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests.
func NewPostgresFromPool(pool Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}

// FetchRecords returns one page of documents for the collection,
// ordered by id for stable pagination.
func (s *PostgresSource) FetchRecords(ctx context.Context, collection string, limit, offset int) ([]model.DocumentRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, content, metadata, timestamp, category, source, priority, tags
		FROM documents
		WHERE collection = $1
		ORDER BY id
		LIMIT $2 OFFSET $3`,
		collection, limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query documents")
	}
	defer rows.Close()

	var records []model.DocumentRecord
	for rows.Next() {
		var (
			rec          model.DocumentRecord
			metadata     []byte
			ts, cat, src *string
			priority     *int
			tags         []string
		)
		if err := rows.Scan(&rec.ID, &rec.Content, &metadata, &ts, &cat, &src, &priority, &tags); err != nil {
			return nil, eris.Wrap(err, "postgres: scan document")
		}
		if ts != nil {
			rec.Timestamp = *ts
		}
		if cat != nil {
			rec.Category = *cat
		}
		if src != nil {
			rec.Source = *src
		}
		if priority != nil {
			rec.Priority = *priority
		}
		rec.Tags = tags
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
				return nil, eris.Wrapf(err, "postgres: decode metadata for %s", rec.ID)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate documents")
	}
	return records, nil
}
