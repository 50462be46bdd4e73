package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/integrity-cli/internal/config"
	"github.com/sells-group/integrity-cli/internal/model"
)

func testRules() config.ValidationRules {
	return config.ValidationRules{
		ContentMinLength: 10,
		ContentMaxLength: 100,
		RequiredFields:   []string{"content", "source"},
		Categories:       []string{"documentation", "note"},
		TimestampLayouts: []string{"2006-01-02T15:04:05Z07:00", "2006-01-02"},
	}
}

func TestValidate_CleanRecord(t *testing.T) {
	v := New(testRules())

	result := v.Validate(model.DocumentRecord{
		ID:        "doc-1",
		Content:   "a perfectly reasonable document body",
		Source:    "ingest",
		Category:  "note",
		Timestamp: "2024-03-01",
	})

	assert.Equal(t, model.StatusPassed, result.Status)
	assert.Equal(t, 1.0, result.Score)
	assert.Empty(t, result.Issues)
	assert.Equal(t, "doc-1", result.DocumentID)
}

func TestValidate_ShortContentAndMissingField(t *testing.T) {
	// Scenario: content below minimum plus one missing required field
	// deducts 0.3 + 0.2 for an exact score of 0.5 and two issues.
	v := New(testRules())

	result := v.Validate(model.DocumentRecord{
		ID:      "doc-2",
		Content: "too short",
	})

	assert.Equal(t, model.StatusFailed, result.Status)
	assert.InDelta(t, 0.5, result.Score, 1e-9)
	require.Len(t, result.Issues, 2)
	assert.Contains(t, result.Issues[0], "below minimum")
	assert.Contains(t, result.Issues[1], `required field "source"`)
}

func TestValidate_StatusThresholdsExact(t *testing.T) {
	rules := testRules()
	rules.RequiredFields = nil
	rules.Categories = []string{"note"}
	v := New(rules)

	// Bad timestamp alone: 1.0 - 0.1 = 0.9 is still Passed.
	result := v.Validate(model.DocumentRecord{
		ID:        "doc-3",
		Content:   "long enough content here",
		Timestamp: "not a date",
	})
	assert.InDelta(t, 0.9, result.Score, 1e-9)
	assert.Equal(t, model.StatusPassed, result.Status)

	// Bad timestamp and bad category: 0.8 is Warning.
	result = v.Validate(model.DocumentRecord{
		ID:        "doc-4",
		Content:   "long enough content here",
		Timestamp: "not a date",
		Category:  "mystery",
	})
	assert.InDelta(t, 0.8, result.Score, 1e-9)
	assert.Equal(t, model.StatusWarning, result.Status)

	// Short content alone: 0.7 is still Warning, not Failed.
	result = v.Validate(model.DocumentRecord{ID: "doc-5", Content: "short"})
	assert.InDelta(t, 0.7, result.Score, 1e-9)
	assert.Equal(t, model.StatusWarning, result.Status)
}

func TestValidate_ScoreClampedToZero(t *testing.T) {
	rules := testRules()
	rules.RequiredFields = []string{"content", "source", "owner", "region", "team"}
	v := New(rules)

	result := v.Validate(model.DocumentRecord{
		ID:        "doc-6",
		Content:   "x",
		Timestamp: "garbage",
		Category:  "garbage",
	})

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, model.StatusFailed, result.Status)
}

func TestValidate_LongContent(t *testing.T) {
	v := New(testRules())

	result := v.Validate(model.DocumentRecord{
		ID:      "doc-7",
		Content: strings.Repeat("a", 200),
		Source:  "ingest",
	})

	assert.InDelta(t, 0.8, result.Score, 1e-9)
	require.Len(t, result.Issues, 1)
	assert.Contains(t, result.Issues[0], "exceeds maximum")
}

func TestValidate_RequiredMetadataField(t *testing.T) {
	rules := testRules()
	rules.RequiredFields = []string{"content", "owner"}
	v := New(rules)

	// Present in metadata: no deduction.
	result := v.Validate(model.DocumentRecord{
		ID:      "doc-8",
		Content: "long enough content here",
		Metadata: map[string]model.MetadataValue{
			"owner": model.String("ops"),
		},
	})
	assert.Equal(t, 1.0, result.Score)

	// Null metadata value counts as missing.
	result = v.Validate(model.DocumentRecord{
		ID:      "doc-9",
		Content: "long enough content here",
		Metadata: map[string]model.MetadataValue{
			"owner": model.Null(),
		},
	})
	assert.InDelta(t, 0.8, result.Score, 1e-9)
}

func TestValidate_CategoryCaseInsensitive(t *testing.T) {
	v := New(testRules())

	result := v.Validate(model.DocumentRecord{
		ID:       "doc-10",
		Content:  "long enough content here",
		Source:   "ingest",
		Category: "  Documentation ",
	})

	assert.Equal(t, 1.0, result.Score)
}

func TestValidateBatch_PreservesOrder(t *testing.T) {
	v := New(testRules())

	records := []model.DocumentRecord{
		{ID: "a", Content: "long enough content here", Source: "s"},
		{ID: "b", Content: "x"},
		{ID: "c", Content: "long enough content here", Source: "s"},
	}
	results := v.ValidateBatch(records)

	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].DocumentID)
	assert.Equal(t, "b", results[1].DocumentID)
	assert.Equal(t, "c", results[2].DocumentID)
}
