package source

import (
	"bufio"
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/integrity-cli/internal/model"
)

// JSONLSource reads documents from a JSON-lines file, one
// DocumentRecord object per line. Intended for ad hoc CLI runs against
// exported datasets; the whole file is read once at open time.
type JSONLSource struct {
	records []model.DocumentRecord
}

// NewJSONL reads the given file into memory.
func NewJSONL(path string) (*JSONLSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "jsonl: open %s", path)
	}
	defer f.Close()

	var records []model.DocumentRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec model.DocumentRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, eris.Wrapf(err, "jsonl: parse line %d of %s", line, path)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "jsonl: read %s", path)
	}
	return &JSONLSource{records: records}, nil
}

func (s *JSONLSource) Close() error { return nil }

// FetchRecords pages through the in-memory records. The collection
// name is ignored: a JSONL file is one collection by construction.
func (s *JSONLSource) FetchRecords(_ context.Context, _ string, limit, offset int) ([]model.DocumentRecord, error) {
	if offset >= len(s.records) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.records) {
		end = len(s.records)
	}
	return s.records[offset:end], nil
}
