package integrity

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sells-group/integrity-cli/internal/model"
)

// FormatReport renders an IntegrityReport as human-readable Markdown.
func FormatReport(report *model.IntegrityReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Integrity Report: %s\n", report.CollectionName)
	fmt.Fprintf(&b, "Run: %s\n", report.ID)
	fmt.Fprintf(&b, "Generated: %s\n\n", report.Timestamp.Format("2006-01-02 15:04:05 MST"))
	if report.Incomplete {
		b.WriteString("**Run was cancelled before completion; results are partial.**\n\n")
	}

	// Summary.
	s := report.ProcessingSummary
	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Documents: %d across %d batches (batch size %d, parallelism %d)\n",
		s.DocumentCount, s.BatchCount, s.BatchSize, s.Parallelism)
	fmt.Fprintf(&b, "- Wall time: %s (%.1f docs/sec)\n", s.TotalTime.Round(time.Millisecond), s.DocsPerSecond)
	fmt.Fprintf(&b, "- Validation pass rate: %.1f%%\n", s.ValidationPassRate*100)
	fmt.Fprintf(&b, "- Duplicate rate: %.1f%%\n\n", s.DuplicateRate*100)

	// Quality.
	q := report.QualityScore
	b.WriteString("## Quality\n")
	fmt.Fprintf(&b, "- Overall: %.3f (%s)\n", q.OverallScore, q.Level)
	fmt.Fprintf(&b, "- Completeness: %.3f | Consistency: %.3f | Accuracy: %.3f | Uniqueness: %.3f\n\n",
		q.Completeness, q.Consistency, q.Accuracy, q.Uniqueness)

	// Validation failures.
	b.WriteString("## Validation\n")
	var warned, failed int
	for _, r := range report.ValidationResults {
		switch r.Status {
		case model.StatusWarning:
			warned++
		case model.StatusFailed:
			failed++
		}
	}
	fmt.Fprintf(&b, "- Passed: %d, Warning: %d, Failed: %d\n", len(report.ValidationResults)-warned-failed, warned, failed)
	for _, r := range report.ValidationResults {
		if r.Status == model.StatusPassed {
			continue
		}
		fmt.Fprintf(&b, "- %s [%s, %.2f]: %s\n", r.DocumentID, r.Status, r.Score, strings.Join(r.Issues, "; "))
	}
	b.WriteString("\n")

	// Duplicates.
	d := report.DuplicateReport
	b.WriteString("## Duplicates\n")
	fmt.Fprintf(&b, "- Checked %d, found %d duplicates (algorithms: %s)\n",
		d.TotalChecked, d.DuplicatesFound, strings.Join(d.AlgorithmsUsed, ", "))
	for _, e := range d.Entries {
		fmt.Fprintf(&b, "- %s ~ [%s] (%.3f, %s)\n",
			e.PrimaryID, strings.Join(e.DuplicateIDs, ", "), e.SimilarityScore, e.DetectionMethod)
	}
	b.WriteString("\n")

	// Normalization.
	n := report.NormalizedMetadata
	b.WriteString("## Metadata\n")
	fmt.Fprintf(&b, "- Normalized %d of %d records\n", n.NormalizedCount, n.OriginalCount)
	if n.CategoriesFolded > 0 {
		fmt.Fprintf(&b, "- Categories folded to canonical form: %d\n", n.CategoriesFolded)
	}
	if n.SourcesDefaulted > 0 {
		fmt.Fprintf(&b, "- Sources defaulted to %q: %d\n", "unknown", n.SourcesDefaulted)
	}
	for _, v := range n.SchemaViolations {
		fmt.Fprintf(&b, "- Violation: %s\n", v)
	}
	renames := make([]string, 0, len(n.FieldMappings))
	for old := range n.FieldMappings {
		renames = append(renames, old)
	}
	sort.Strings(renames)
	for _, old := range renames {
		fmt.Fprintf(&b, "- Field rename: %s -> %s\n", old, n.FieldMappings[old])
	}
	b.WriteString("\n")

	// Recommendations.
	if len(report.Recommendations) > 0 {
		b.WriteString("## Recommendations\n")
		for _, r := range report.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	return b.String()
}
