// Package normalize canonicalizes record metadata and reports schema
// violations. It never mutates the caller's records: the engine is a
// read-then-report pipeline, so normalization describes what canonical
// form the data takes rather than rewriting the source store.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/integrity-cli/internal/config"
	"github.com/sells-group/integrity-cli/internal/model"
)

// Priority bounds and defaults for documents that omit one.
const (
	minPriority     = 1
	maxPriority     = 5
	defaultPriority = 3

	defaultSource = "unknown"
)

// fieldAliases maps legacy metadata keys to canonical field names.
// Seen aliases are reported in field_mappings so downstream consumers
// know which renames apply.
var fieldAliases = map[string]string{
	"created_at": "timestamp",
	"created":    "timestamp",
	"date":       "timestamp",
	"cat":        "category",
	"src":        "source",
	"origin":     "source",
	"prio":       "priority",
	"importance": "priority",
}

// Normalizer canonicalizes metadata across a record set in one
// single-threaded pass.
type Normalizer struct {
	layouts []string
	lower   cases.Caser
}

// New creates a Normalizer recognizing the given timestamp layouts.
func New(rules config.ValidationRules) *Normalizer {
	return &Normalizer{
		layouts: rules.TimestampLayouts,
		lower:   cases.Lower(language.Und),
	}
}

// Normalize canonicalizes every record's metadata and returns the
// aggregate outcome. On catastrophic failure it returns a zero
// normalized count with the failure recorded as a schema violation;
// it never propagates an error past this boundary.
func (n *Normalizer) Normalize(records []model.DocumentRecord) (result model.NormalizedMetadata) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("normalize: pass failed", zap.Any("panic", r))
			result = model.NormalizedMetadata{
				OriginalCount:   len(records),
				NormalizedCount: 0,
				SchemaViolations: append(result.SchemaViolations,
					fmt.Sprintf("normalization aborted: %v", r)),
				ProcessingTime: time.Since(start),
			}
		}
	}()

	result.OriginalCount = len(records)
	result.FieldMappings = map[string]string{}

	for _, record := range records {
		if n.normalizeRecord(record, &result) {
			result.NormalizedCount++
		}
	}

	if len(result.FieldMappings) == 0 {
		result.FieldMappings = nil
	}
	result.ProcessingTime = time.Since(start)
	return result
}

// normalizeRecord reports whether the record normalized cleanly.
// Violations are appended as they are found; the original values are
// left untouched.
func (n *Normalizer) normalizeRecord(record model.DocumentRecord, result *model.NormalizedMetadata) bool {
	clean := true

	for alias, canonical := range fieldAliases {
		if _, ok := record.Metadata[alias]; ok {
			result.FieldMappings[alias] = canonical
		}
	}

	ts := record.Timestamp
	if ts == "" {
		ts = n.aliasedString(record, "timestamp")
	}
	if ts != "" {
		if _, err := n.canonicalTimestamp(ts); err != nil {
			result.SchemaViolations = append(result.SchemaViolations,
				fmt.Sprintf("document %s: timestamp %q not parseable", record.ID, ts))
			clean = false
		}
	}

	category := record.Category
	if category == "" {
		category = n.aliasedString(record, "category")
	}
	if category != "" && n.CanonicalCategory(category) != category {
		result.CategoriesFolded++
	}

	source := record.Source
	if source == "" {
		source = n.aliasedString(record, "source")
	}
	if n.CanonicalSource(source) != strings.TrimSpace(source) {
		result.SourcesDefaulted++
	}

	// Category folding and source defaulting always succeed, so only
	// timestamp and priority can contribute violations.
	if _, err := n.CanonicalPriority(record); err != nil {
		result.SchemaViolations = append(result.SchemaViolations,
			fmt.Sprintf("document %s: %v", record.ID, err))
		clean = false
	}

	return clean
}

// canonicalTimestamp parses ts against the recognized layouts and
// returns the RFC 3339 UTC rendering.
func (n *Normalizer) canonicalTimestamp(ts string) (string, error) {
	for _, layout := range n.layouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.UTC().Format(time.RFC3339), nil
		}
	}
	return "", fmt.Errorf("timestamp %q matches no recognized layout", ts)
}

// CanonicalCategory returns the canonical form of a category value:
// NFC-folded, lower-cased, trimmed.
func (n *Normalizer) CanonicalCategory(category string) string {
	return strings.TrimSpace(n.lower.String(norm.NFC.String(category)))
}

// CanonicalSource returns the source value with the documented default
// applied when absent.
func (n *Normalizer) CanonicalSource(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return defaultSource
	}
	return source
}

// CanonicalPriority resolves a record's priority from the typed field
// or a metadata alias, clips it into [1,5], and defaults to 3 when
// absent. Unconvertible values are an error for the caller to record.
func (n *Normalizer) CanonicalPriority(record model.DocumentRecord) (int, error) {
	p := record.Priority
	if p == 0 {
		if v, ok := n.aliasedValue(record, "priority"); ok {
			converted, err := cast.ToIntE(v.Interface())
			if err != nil {
				return defaultPriority, fmt.Errorf("priority %v not convertible to integer", v.Interface())
			}
			p = converted
		}
	}
	if p == 0 {
		return defaultPriority, nil
	}
	if p < minPriority {
		return minPriority, nil
	}
	if p > maxPriority {
		return maxPriority, nil
	}
	return p, nil
}

// aliasedValue finds a metadata value stored under the canonical name
// or any of its legacy aliases.
func (n *Normalizer) aliasedValue(record model.DocumentRecord, canonical string) (model.MetadataValue, bool) {
	if v, ok := record.Metadata[canonical]; ok && !v.IsEmpty() {
		return v, true
	}
	for alias, target := range fieldAliases {
		if target != canonical {
			continue
		}
		if v, ok := record.Metadata[alias]; ok && !v.IsEmpty() {
			return v, true
		}
	}
	return model.Null(), false
}

func (n *Normalizer) aliasedString(record model.DocumentRecord, canonical string) string {
	v, ok := n.aliasedValue(record, canonical)
	if !ok {
		return ""
	}
	return cast.ToString(v.Interface())
}
