// Package quality reduces validation and duplicate results into a
// single weighted quality score with rule-based recommendations.
package quality

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/integrity-cli/internal/config"
	"github.com/sells-group/integrity-cli/internal/model"
)

// neutralUniqueness is assumed when no duplicate report is available.
// Unverified data never scores as perfectly unique.
const neutralUniqueness = 0.95

// Duplicate-rate thresholds for escalating recommendations.
const (
	duplicateRateHigh     = 0.10
	duplicateRateModerate = 0.05
)

// ValidateWeights checks that weights are non-negative and sum to 1.
func ValidateWeights(w config.QualityWeights) error {
	for name, v := range map[string]float64{
		"completeness": w.Completeness,
		"consistency":  w.Consistency,
		"accuracy":     w.Accuracy,
		"uniqueness":   w.Uniqueness,
	} {
		if v < 0 {
			return eris.Errorf("quality: weight %s must be >= 0", name)
		}
	}
	sum := w.Completeness + w.Consistency + w.Accuracy + w.Uniqueness
	if math.Abs(sum-1) > 0.001 {
		return eris.Errorf("quality: weights must sum to 1, got %.3f", sum)
	}
	return nil
}

// Scorer computes quality scores. Stateless and safe for reuse.
type Scorer struct {
	weights config.QualityWeights
}

// New creates a Scorer with the given weights. Callers validate weights
// with ValidateWeights before construction; config defaults are always
// valid.
func New(weights config.QualityWeights) *Scorer {
	return &Scorer{weights: weights}
}

// Score reduces validation results and an optional duplicate report
// into a QualityScore. An empty result set yields a zeroed Poor score
// with a single explanatory recommendation; it never errors.
func (s *Scorer) Score(results []model.ValidationResult, dup *model.DuplicateReport) model.QualityScore {
	if len(results) == 0 {
		return model.QualityScore{
			Level:           model.LevelPoor,
			Recommendations: []string{"no documents were analyzed; verify the collection is not empty"},
		}
	}

	total := float64(len(results))
	var passed, clean int
	var scoreSum float64
	for _, r := range results {
		if r.Status == model.StatusPassed {
			passed++
		}
		if len(r.Issues) == 0 {
			clean++
		}
		scoreSum += r.Score
	}

	completeness := float64(passed) / total
	consistency := scoreSum / total
	accuracy := float64(clean) / total

	uniqueness := neutralUniqueness
	var duplicateRate float64
	if dup != nil && dup.TotalChecked > 0 {
		duplicateRate = float64(dup.DuplicatesFound) / float64(dup.TotalChecked)
		uniqueness = 1 - duplicateRate
	}

	overall := s.weights.Completeness*completeness +
		s.weights.Consistency*consistency +
		s.weights.Accuracy*accuracy +
		s.weights.Uniqueness*uniqueness

	return model.QualityScore{
		OverallScore:    overall,
		Completeness:    completeness,
		Consistency:     consistency,
		Accuracy:        accuracy,
		Uniqueness:      uniqueness,
		Level:           levelFor(overall),
		Recommendations: recommendations(completeness, consistency, accuracy, duplicateRate, dup != nil),
	}
}

func levelFor(overall float64) model.QualityLevel {
	switch {
	case overall >= 0.95:
		return model.LevelExcellent
	case overall >= 0.80:
		return model.LevelGood
	case overall >= 0.60:
		return model.LevelFair
	default:
		return model.LevelPoor
	}
}

// recommendations applies the rule table: each weak dimension gets one
// actionable suggestion, with escalating wording for duplicate rates.
func recommendations(completeness, consistency, accuracy, duplicateRate float64, hasDup bool) []string {
	var recs []string
	if completeness < 0.8 {
		recs = append(recs, fmt.Sprintf(
			"completeness is %.0f%%: fix missing required fields in failing documents", completeness*100))
	}
	if consistency < 0.8 {
		recs = append(recs, fmt.Sprintf(
			"consistency is %.0f%%: standardize timestamp and category formats", consistency*100))
	}
	if accuracy < 0.8 {
		recs = append(recs, fmt.Sprintf(
			"accuracy is %.0f%%: tighten validation rules and re-ingest flagged documents", accuracy*100))
	}
	if hasDup {
		switch {
		case duplicateRate > duplicateRateHigh:
			recs = append(recs, fmt.Sprintf(
				"high duplicate rate (%.1f%%): run duplicate cleanup before further ingestion", duplicateRate*100))
		case duplicateRate > duplicateRateModerate:
			recs = append(recs, fmt.Sprintf(
				"moderate duplicate rate (%.1f%%): review duplicate groups for consolidation", duplicateRate*100))
		}
	}
	return recs
}
