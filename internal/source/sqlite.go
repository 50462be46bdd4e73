package source

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/integrity-cli/internal/model"
)

// SQLiteSource reads documents from a SQLite database using
// modernc.org/sqlite.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path.
func NewSQLite(dsn string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteSource{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT NOT NULL,
	collection TEXT NOT NULL,
	content    TEXT NOT NULL DEFAULT '',
	metadata   TEXT,
	timestamp  TEXT,
	category   TEXT,
	source     TEXT,
	priority   INTEGER,
	tags       TEXT,
	PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`

// Migrate creates the documents table if needed. Intended for local
// fixtures and tests; production stores arrive pre-populated.
func (s *SQLiteSource) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// FetchRecords returns one page of documents for the collection,
// ordered by id for stable pagination.
func (s *SQLiteSource) FetchRecords(ctx context.Context, collection string, limit, offset int) ([]model.DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, metadata, timestamp, category, source, priority, tags
		FROM documents
		WHERE collection = ?
		ORDER BY id
		LIMIT ? OFFSET ?`,
		collection, limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query documents")
	}
	defer rows.Close()

	var records []model.DocumentRecord
	for rows.Next() {
		var (
			rec            model.DocumentRecord
			metadata, tags sql.NullString
			ts, cat, src   sql.NullString
			priority       sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.Content, &metadata, &ts, &cat, &src, &priority, &tags); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan document")
		}
		rec.Timestamp = ts.String
		rec.Category = cat.String
		rec.Source = src.String
		rec.Priority = int(priority.Int64)
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &rec.Metadata); err != nil {
				return nil, eris.Wrapf(err, "sqlite: decode metadata for %s", rec.ID)
			}
		}
		if tags.Valid && tags.String != "" {
			if err := json.Unmarshal([]byte(tags.String), &rec.Tags); err != nil {
				return nil, eris.Wrapf(err, "sqlite: decode tags for %s", rec.ID)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate documents")
	}
	return records, nil
}

// InsertDocument adds a document to a collection. Provided for fixture
// loading and tests only; the integrity engine itself never writes.
func (s *SQLiteSource) InsertDocument(ctx context.Context, collection string, rec model.DocumentRecord) error {
	var metadata, tags []byte
	var err error
	if len(rec.Metadata) > 0 {
		if metadata, err = json.Marshal(rec.Metadata); err != nil {
			return eris.Wrap(err, "sqlite: encode metadata")
		}
	}
	if len(rec.Tags) > 0 {
		if tags, err = json.Marshal(rec.Tags); err != nil {
			return eris.Wrap(err, "sqlite: encode tags")
		}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents
			(id, collection, content, metadata, timestamp, category, source, priority, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, collection, rec.Content, nullable(metadata),
		nullString(rec.Timestamp), nullString(rec.Category), nullString(rec.Source),
		nullInt(rec.Priority), nullable(tags),
	)
	return eris.Wrap(err, "sqlite: insert document")
}

func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(i int) any {
	if i == 0 {
		return nil
	}
	return i
}
