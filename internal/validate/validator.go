// Package validate implements per-document schema validation.
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/sells-group/integrity-cli/internal/config"
	"github.com/sells-group/integrity-cli/internal/model"
)

// Score deductions per rule violation. The status thresholds below are
// exact: 0.9 passes, anything under 0.7 fails.
const (
	deductShortContent = 0.3
	deductLongContent  = 0.2
	deductMissingField = 0.2
	deductBadTimestamp = 0.1
	deductBadCategory  = 0.1
	passedThreshold    = 0.9
	warningThreshold   = 0.7
)

// Validator evaluates documents against a fixed rules block. It holds
// no mutable state, so one Validator is safe for concurrent use across
// batch workers without synchronization.
type Validator struct {
	rules      config.ValidationRules
	categories map[string]struct{}
}

// New creates a Validator for the given rules.
func New(rules config.ValidationRules) *Validator {
	cats := make(map[string]struct{}, len(rules.Categories))
	for _, c := range rules.Categories {
		cats[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	return &Validator{rules: rules, categories: cats}
}

// Validate scores one record against the rules. Every deduction
// appends a matching issue string, so the full rationale for the score
// is reconstructable from the result alone.
func (v *Validator) Validate(record model.DocumentRecord) model.ValidationResult {
	start := time.Now()

	score := 1.0
	var issues []string

	if len(record.Content) < v.rules.ContentMinLength {
		score -= deductShortContent
		issues = append(issues, fmt.Sprintf(
			"content length %d below minimum %d",
			len(record.Content), v.rules.ContentMinLength,
		))
	}
	if v.rules.ContentMaxLength > 0 && len(record.Content) > v.rules.ContentMaxLength {
		score -= deductLongContent
		issues = append(issues, fmt.Sprintf(
			"content length %d exceeds maximum %d",
			len(record.Content), v.rules.ContentMaxLength,
		))
	}

	for _, field := range v.rules.RequiredFields {
		if _, ok := record.Field(field); !ok {
			score -= deductMissingField
			issues = append(issues, fmt.Sprintf("required field %q missing or empty", field))
		}
	}

	if record.Timestamp != "" && !v.timestampParses(record.Timestamp) {
		score -= deductBadTimestamp
		issues = append(issues, fmt.Sprintf("timestamp %q not in a recognized format", record.Timestamp))
	}

	if record.Category != "" && len(v.categories) > 0 {
		key := strings.ToLower(strings.TrimSpace(record.Category))
		if _, ok := v.categories[key]; !ok {
			score -= deductBadCategory
			issues = append(issues, fmt.Sprintf("category %q not in configured set", record.Category))
		}
	}

	if score < 0 {
		score = 0
	}

	return model.ValidationResult{
		DocumentID:     record.ID,
		Status:         statusFor(score),
		Score:          score,
		Issues:         issues,
		Metadata:       record.MetadataSnapshot(),
		ProcessingTime: time.Since(start),
	}
}

// ValidateBatch validates records in order and returns one result per
// record.
func (v *Validator) ValidateBatch(records []model.DocumentRecord) []model.ValidationResult {
	results := make([]model.ValidationResult, len(records))
	for i, r := range records {
		results[i] = v.Validate(r)
	}
	return results
}

func (v *Validator) timestampParses(ts string) bool {
	for _, layout := range v.rules.TimestampLayouts {
		if _, err := time.Parse(layout, ts); err == nil {
			return true
		}
	}
	return false
}

func statusFor(score float64) model.ValidationStatus {
	switch {
	case score >= passedThreshold:
		return model.StatusPassed
	case score >= warningThreshold:
		return model.StatusWarning
	default:
		return model.StatusFailed
	}
}
