package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/integrity-cli/internal/config"
	"github.com/sells-group/integrity-cli/internal/model"
)

func passed(score float64) model.ValidationResult {
	return model.ValidationResult{Status: model.StatusPassed, Score: score}
}

func failed(score float64, issues ...string) model.ValidationResult {
	return model.ValidationResult{Status: model.StatusFailed, Score: score, Issues: issues}
}

func TestScore_EmptyInput(t *testing.T) {
	s := New(config.DefaultQualityWeights())

	score := s.Score(nil, nil)

	assert.Equal(t, model.LevelPoor, score.Level)
	assert.Equal(t, 0.0, score.OverallScore)
	assert.Equal(t, 0.0, score.Completeness)
	assert.Equal(t, 0.0, score.Consistency)
	assert.Equal(t, 0.0, score.Accuracy)
	assert.Equal(t, 0.0, score.Uniqueness)
	require.Len(t, score.Recommendations, 1)
	assert.Contains(t, score.Recommendations[0], "no documents were analyzed")
}

func TestScore_AllClean(t *testing.T) {
	s := New(config.DefaultQualityWeights())

	results := []model.ValidationResult{passed(1), passed(1), passed(1)}
	dup := &model.DuplicateReport{TotalChecked: 3, DuplicatesFound: 0}

	score := s.Score(results, dup)

	assert.Equal(t, 1.0, score.Completeness)
	assert.Equal(t, 1.0, score.Consistency)
	assert.Equal(t, 1.0, score.Accuracy)
	assert.Equal(t, 1.0, score.Uniqueness)
	assert.InDelta(t, 1.0, score.OverallScore, 1e-9)
	assert.Equal(t, model.LevelExcellent, score.Level)
	assert.Empty(t, score.Recommendations)
}

func TestScore_WeightedCombination(t *testing.T) {
	// The overall score is exactly the 0.3/0.3/0.3/0.1 affine
	// combination of the four sub-scores.
	s := New(config.DefaultQualityWeights())

	results := []model.ValidationResult{
		passed(1),
		passed(0.9),
		failed(0.5, "content too short"),
		failed(0.4, "missing field"),
	}
	dup := &model.DuplicateReport{TotalChecked: 4, DuplicatesFound: 1}

	score := s.Score(results, dup)

	completeness := 2.0 / 4.0
	consistency := (1 + 0.9 + 0.5 + 0.4) / 4.0
	accuracy := 2.0 / 4.0
	uniqueness := 1 - 1.0/4.0

	assert.InDelta(t, completeness, score.Completeness, 1e-9)
	assert.InDelta(t, consistency, score.Consistency, 1e-9)
	assert.InDelta(t, accuracy, score.Accuracy, 1e-9)
	assert.InDelta(t, uniqueness, score.Uniqueness, 1e-9)

	expected := 0.3*completeness + 0.3*consistency + 0.3*accuracy + 0.1*uniqueness
	assert.InDelta(t, expected, score.OverallScore, 1e-9)
}

func TestScore_NeutralUniquenessWithoutDuplicateReport(t *testing.T) {
	s := New(config.DefaultQualityWeights())

	score := s.Score([]model.ValidationResult{passed(1)}, nil)

	assert.Equal(t, neutralUniqueness, score.Uniqueness)
}

func TestScore_Levels(t *testing.T) {
	tests := []struct {
		overall float64
		want    model.QualityLevel
	}{
		{0.96, model.LevelExcellent},
		{0.95, model.LevelExcellent},
		{0.94, model.LevelGood},
		{0.80, model.LevelGood},
		{0.79, model.LevelFair},
		{0.60, model.LevelFair},
		{0.59, model.LevelPoor},
		{0.0, model.LevelPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levelFor(tt.overall), "overall %.2f", tt.overall)
	}
}

func TestScore_Recommendations(t *testing.T) {
	s := New(config.DefaultQualityWeights())

	results := []model.ValidationResult{
		failed(0.3, "missing field"),
		failed(0.4, "missing field"),
		passed(1),
	}
	dup := &model.DuplicateReport{TotalChecked: 3, DuplicatesFound: 1}

	score := s.Score(results, dup)

	require.NotEmpty(t, score.Recommendations)
	joined := ""
	for _, r := range score.Recommendations {
		joined += r + "\n"
	}
	assert.Contains(t, joined, "missing required fields")
	assert.Contains(t, joined, "standardize")
	assert.Contains(t, joined, "high duplicate rate")
}

func TestScore_ModerateDuplicateRate(t *testing.T) {
	s := New(config.DefaultQualityWeights())

	results := make([]model.ValidationResult, 100)
	for i := range results {
		results[i] = passed(1)
	}
	dup := &model.DuplicateReport{TotalChecked: 100, DuplicatesFound: 7}

	score := s.Score(results, dup)

	joined := ""
	for _, r := range score.Recommendations {
		joined += r + "\n"
	}
	assert.Contains(t, joined, "moderate duplicate rate")
	assert.NotContains(t, joined, "high duplicate rate")
}

func TestScore_ConfiguredWeights(t *testing.T) {
	// Non-default weights flow through to the overall score.
	s := New(config.QualityWeights{
		Completeness: 0.5,
		Consistency:  0.2,
		Accuracy:     0.2,
		Uniqueness:   0.1,
	})

	results := []model.ValidationResult{passed(1), failed(0.5, "content too short")}
	dup := &model.DuplicateReport{TotalChecked: 2, DuplicatesFound: 0}

	score := s.Score(results, dup)

	expected := 0.5*0.5 + 0.2*0.75 + 0.2*0.5 + 0.1*1.0
	assert.InDelta(t, expected, score.OverallScore, 1e-9)
}

func TestValidateWeights(t *testing.T) {
	assert.NoError(t, ValidateWeights(config.DefaultQualityWeights()))

	bad := config.DefaultQualityWeights()
	bad.Uniqueness = 0.5
	assert.Error(t, ValidateWeights(bad))

	negative := config.DefaultQualityWeights()
	negative.Accuracy = -0.1
	assert.Error(t, ValidateWeights(negative))
}
