package dedup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/integrity-cli/internal/config"
	"github.com/sells-group/integrity-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testDedupConfig() config.DedupConfig {
	return config.DedupConfig{SimilarityThreshold: 0.95, MaxCandidates: 50}
}

func record(id, content string) model.DocumentRecord {
	return model.DocumentRecord{ID: id, Content: content}
}

func TestDetectDuplicates_ExactPair(t *testing.T) {
	// Two byte-identical documents form one exact group.
	d := New(testDedupConfig())

	report := d.DetectDuplicates(context.Background(), "col", []model.DocumentRecord{
		record("a", "the same content"),
		record("b", "the same content"),
		record("c", "something else entirely different"),
	})

	assert.Equal(t, 3, report.TotalChecked)
	assert.Equal(t, 1, report.DuplicatesFound)
	require.Len(t, report.Entries, 1)

	entry := report.Entries[0]
	assert.Equal(t, "a", entry.PrimaryID)
	assert.Equal(t, []string{"b"}, entry.DuplicateIDs)
	assert.Equal(t, 1.0, entry.SimilarityScore)
	assert.True(t, entry.HashMatch)
	assert.False(t, entry.FuzzyMatch)
	assert.Equal(t, MethodExactHash, entry.DetectionMethod)
	assert.Equal(t, []string{"exact_hash", "fuzzy_similarity"}, report.AlgorithmsUsed)
}

func TestDetectDuplicates_ExactGroupOfThree(t *testing.T) {
	d := New(testDedupConfig())

	report := d.DetectDuplicates(context.Background(), "col", []model.DocumentRecord{
		record("a", "repeated"),
		record("b", "repeated"),
		record("c", "repeated"),
	})

	assert.Equal(t, 2, report.DuplicatesFound)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, "a", report.Entries[0].PrimaryID)
	assert.ElementsMatch(t, []string{"b", "c"}, report.Entries[0].DuplicateIDs)
}

func TestDetectDuplicates_FuzzyPair(t *testing.T) {
	d := New(config.DedupConfig{SimilarityThreshold: 0.9, MaxCandidates: 50})

	long := "the quick brown fox jumps over the lazy dog again and again in the morning"
	report := d.DetectDuplicates(context.Background(), "col", []model.DocumentRecord{
		record("a", long),
		record("b", long+"!"),
		record("c", "completely unrelated text about databases"),
	})

	assert.Equal(t, 1, report.DuplicatesFound)
	require.Len(t, report.Entries, 1)

	entry := report.Entries[0]
	assert.ElementsMatch(t, []string{entry.PrimaryID, entry.DuplicateIDs[0]}, []string{"a", "b"})
	assert.False(t, entry.HashMatch)
	assert.True(t, entry.FuzzyMatch)
	assert.Equal(t, MethodFuzzy, entry.DetectionMethod)
	assert.GreaterOrEqual(t, entry.SimilarityScore, 0.9)
	assert.Less(t, entry.SimilarityScore, 1.0)
}

func TestDetectDuplicates_FuzzyIgnoresFormattingDifferences(t *testing.T) {
	// Case and whitespace are folded before comparison, so records that
	// differ only in formatting hash differently but match fuzzily.
	d := New(testDedupConfig())

	report := d.DetectDuplicates(context.Background(), "col", []model.DocumentRecord{
		record("a", "Shared   Body Of Text For The Fuzzy Matcher"),
		record("b", "shared body of text for the fuzzy matcher"),
	})

	assert.Equal(t, 1, report.DuplicatesFound)
	require.Len(t, report.Entries, 1)
	assert.True(t, report.Entries[0].FuzzyMatch)
}

func TestDetectDuplicates_GroupsNeverOverlap(t *testing.T) {
	d := New(config.DedupConfig{SimilarityThreshold: 0.9, MaxCandidates: 50})

	base := "a moderately long piece of text used to build near duplicate variants"
	records := []model.DocumentRecord{
		record("a", base),
		record("b", base),
		record("c", base+"."),
		record("d", base+"!"),
		record("e", "totally different content about something else"),
	}
	report := d.DetectDuplicates(context.Background(), "col", records)

	seen := map[string]bool{}
	for _, entry := range report.Entries {
		assert.False(t, seen[entry.PrimaryID], "primary %s in more than one group", entry.PrimaryID)
		seen[entry.PrimaryID] = true
		for _, id := range entry.DuplicateIDs {
			assert.False(t, seen[id], "id %s claimed twice", id)
			seen[id] = true
			assert.NotEqual(t, entry.PrimaryID, id)
		}
	}
}

func TestDetectDuplicates_Idempotent(t *testing.T) {
	d := New(config.DedupConfig{SimilarityThreshold: 0.9, MaxCandidates: 50})

	base := "deterministic content for idempotence checking across repeated runs"
	records := []model.DocumentRecord{
		record("a", base),
		record("b", base),
		record("c", base+" extra"),
		record("d", "unrelated filler content with different words"),
	}

	first := d.DetectDuplicates(context.Background(), "col", records)
	second := d.DetectDuplicates(context.Background(), "col", records)

	assert.Equal(t, first.DuplicatesFound, second.DuplicatesFound)
	assert.Equal(t, first.Entries, second.Entries)
}

func TestDetectDuplicates_FallbackOnBackendFailure(t *testing.T) {
	d := NewWithSimilarity(testDedupConfig(), func(a, b string) float64 {
		panic("similarity backend unavailable")
	})

	report := d.DetectDuplicates(context.Background(), "col", []model.DocumentRecord{
		record("a", "some content long enough to compare"),
		record("b", "some content long enough to compare!"),
	})

	assert.Equal(t, 2, report.TotalChecked)
	assert.Equal(t, 0, report.DuplicatesFound)
	assert.Empty(t, report.Entries)
	assert.Equal(t, []string{MethodFallback}, report.AlgorithmsUsed)
}

func TestDetectDuplicates_Empty(t *testing.T) {
	d := New(testDedupConfig())

	report := d.DetectDuplicates(context.Background(), "col", nil)

	assert.Equal(t, 0, report.TotalChecked)
	assert.Equal(t, 0, report.DuplicatesFound)
	assert.Empty(t, report.Entries)
}

func TestDetectDuplicates_LengthWindowSkipsDistantSizes(t *testing.T) {
	// Documents with very different lengths are never compared, so even
	// a similarity function that always matches cannot group them.
	d := NewWithSimilarity(config.DedupConfig{SimilarityThreshold: 0.5, MaxCandidates: 50},
		func(a, b string) float64 { return 1.0 })

	report := d.DetectDuplicates(context.Background(), "col", []model.DocumentRecord{
		record("a", "short text"),
		record("b", "a very much longer body of text that falls far outside the ten percent length window"),
	})

	assert.Equal(t, 0, report.DuplicatesFound)
}
