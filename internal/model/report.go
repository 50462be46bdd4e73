package model

import "time"

// ValidationStatus classifies a per-document validation outcome.
type ValidationStatus string

const (
	StatusPassed  ValidationStatus = "passed"
	StatusWarning ValidationStatus = "warning"
	StatusFailed  ValidationStatus = "failed"
)

// ValidationResult is the verdict for one document in one validation
// run. Immutable after creation.
type ValidationResult struct {
	DocumentID     string                   `json:"document_id"`
	Status         ValidationStatus         `json:"status"`
	Score          float64                  `json:"score"`
	Issues         []string                 `json:"issues,omitempty"`
	Metadata       map[string]MetadataValue `json:"metadata,omitempty"`
	ProcessingTime time.Duration            `json:"processing_time"`
}

// DuplicateEntry is one duplicate group: a primary document plus the
// documents judged to duplicate it. Across one DuplicateReport no
// document id appears in more than one entry.
type DuplicateEntry struct {
	PrimaryID       string   `json:"primary_id"`
	DuplicateIDs    []string `json:"duplicate_ids"`
	SimilarityScore float64  `json:"similarity_score"`
	HashMatch       bool     `json:"hash_match"`
	FuzzyMatch      bool     `json:"fuzzy_match"`
	DetectionMethod string   `json:"detection_method"`
}

// DuplicateReport summarizes a full-dataset duplicate detection pass.
type DuplicateReport struct {
	TotalChecked    int              `json:"total_checked"`
	DuplicatesFound int              `json:"duplicates_found"`
	Entries         []DuplicateEntry `json:"duplicate_entries,omitempty"`
	ProcessingTime  time.Duration    `json:"processing_time"`
	AlgorithmsUsed  []string         `json:"algorithms_used"`
}

// NormalizedMetadata summarizes a metadata normalization pass.
type NormalizedMetadata struct {
	OriginalCount    int               `json:"original_count"`
	NormalizedCount  int               `json:"normalized_count"`
	SchemaViolations []string          `json:"schema_violations,omitempty"`
	FieldMappings    map[string]string `json:"field_mappings,omitempty"`
	CategoriesFolded int               `json:"categories_folded,omitempty"`
	SourcesDefaulted int               `json:"sources_defaulted,omitempty"`
	ProcessingTime   time.Duration     `json:"processing_time"`
}

// QualityLevel is the coarse classification of an overall quality score.
type QualityLevel string

const (
	LevelExcellent QualityLevel = "excellent"
	LevelGood      QualityLevel = "good"
	LevelFair      QualityLevel = "fair"
	LevelPoor      QualityLevel = "poor"
)

// QualityScore is the weighted reduction of validation and duplicate
// results. Recomputed on every run, never persisted on its own.
type QualityScore struct {
	OverallScore    float64      `json:"overall_score"`
	Completeness    float64      `json:"completeness"`
	Consistency     float64      `json:"consistency"`
	Accuracy        float64      `json:"accuracy"`
	Uniqueness      float64      `json:"uniqueness"`
	Level           QualityLevel `json:"level"`
	Recommendations []string     `json:"recommendations,omitempty"`
}

// ProcessingSummary holds timing and throughput figures for one
// integrity run.
type ProcessingSummary struct {
	TotalTime          time.Duration `json:"total_time"`
	DocumentCount      int           `json:"document_count"`
	BatchCount         int           `json:"batch_count"`
	BatchSize          int           `json:"batch_size"`
	Parallelism        int           `json:"parallelism"`
	ValidationPassRate float64       `json:"validation_pass_rate"`
	DuplicateRate      float64       `json:"duplicate_rate"`
	DocsPerSecond      float64       `json:"docs_per_second"`
}

// IntegrityReport is the terminal artifact of an integrity run. The
// engine holds no state beyond the tuned config once this is returned.
type IntegrityReport struct {
	ID                 string             `json:"id"`
	CollectionName     string             `json:"collection_name"`
	TotalDocuments     int                `json:"total_documents"`
	ValidationResults  []ValidationResult `json:"validation_results"`
	DuplicateReport    DuplicateReport    `json:"duplicate_report"`
	QualityScore       QualityScore       `json:"quality_score"`
	NormalizedMetadata NormalizedMetadata `json:"normalized_metadata"`
	ProcessingSummary  ProcessingSummary  `json:"processing_summary"`
	Recommendations    []string           `json:"recommendations,omitempty"`
	Incomplete         bool               `json:"incomplete,omitempty"`
	Timestamp          time.Time          `json:"timestamp"`
}
