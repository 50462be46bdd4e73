// Package dedup implements two-pass duplicate detection over a full
// document set: exact content hashing followed by windowed fuzzy
// similarity.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/agext/levenshtein"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/integrity-cli/internal/config"
	"github.com/sells-group/integrity-cli/internal/model"
)

// Detection method tags recorded on entries and in algorithms_used.
const (
	MethodExactHash = "exact_hash_match"
	MethodFuzzy     = "fuzzy_similarity"
	MethodFallback  = "fallback_basic_comparison"

	algoExact = "exact_hash"
	algoFuzzy = "fuzzy_similarity"
)

// lengthWindow bounds the fuzzy candidate pre-filter: two documents are
// only compared when their normalized lengths differ by at most 10%.
const lengthWindow = 1.10

// Detector finds duplicate groups. A Detector is stateless between
// calls and safe to reuse.
type Detector struct {
	threshold     float64
	maxCandidates int

	// simFn computes normalized textual similarity in [0,1].
	// Replaceable in tests to simulate backend failure.
	simFn func(a, b string) float64
}

// New creates a Detector from config. A zero threshold falls back to
// 0.95, matching the engine default.
func New(cfg config.DedupConfig) *Detector {
	threshold := cfg.SimilarityThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = 0.95
	}
	maxCandidates := cfg.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = 50
	}
	return &Detector{
		threshold:     threshold,
		maxCandidates: maxCandidates,
		simFn: func(a, b string) float64 {
			return levenshtein.Similarity(a, b, nil)
		},
	}
}

// NewWithSimilarity creates a Detector backed by a custom similarity
// function instead of the default Levenshtein comparison.
func NewWithSimilarity(cfg config.DedupConfig, fn func(a, b string) float64) *Detector {
	d := New(cfg)
	d.simFn = fn
	return d
}

// DetectDuplicates runs both passes over the entire record set. It is
// best-effort by contract: any internal failure yields an empty report
// tagged with the fallback algorithm instead of an error, so duplicate
// detection can never abort the surrounding pipeline.
func (d *Detector) DetectDuplicates(ctx context.Context, collection string, records []model.DocumentRecord) (report model.DuplicateReport) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("dedup: detection failed, returning fallback report",
				zap.String("collection", collection),
				zap.Any("panic", r),
			)
			report = model.DuplicateReport{
				TotalChecked:   len(records),
				ProcessingTime: time.Since(start),
				AlgorithmsUsed: []string{MethodFallback},
			}
		}
	}()

	claimed := make(map[string]bool, len(records))

	entries := d.exactPass(records, claimed)
	entries = append(entries, d.fuzzyPass(ctx, records, claimed)...)

	found := 0
	for _, e := range entries {
		found += len(e.DuplicateIDs)
	}

	report = model.DuplicateReport{
		TotalChecked:    len(records),
		DuplicatesFound: found,
		Entries:         entries,
		ProcessingTime:  time.Since(start),
		AlgorithmsUsed:  []string{algoExact, algoFuzzy},
	}

	zap.L().Debug("dedup: detection complete",
		zap.String("collection", collection),
		zap.Int("checked", report.TotalChecked),
		zap.Int("duplicates", report.DuplicatesFound),
		zap.Duration("elapsed", report.ProcessingTime),
	)
	return report
}

// exactPass groups records by SHA-256 of their raw content. Group order
// follows first appearance in the input, which keeps repeated runs on
// the same dataset deterministic.
func (d *Detector) exactPass(records []model.DocumentRecord, claimed map[string]bool) []model.DuplicateEntry {
	groups := make(map[string][]string, len(records))
	var order []string

	for _, r := range records {
		sum := sha256.Sum256([]byte(r.Content))
		key := hex.EncodeToString(sum[:])
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r.ID)
	}

	var entries []model.DuplicateEntry
	for _, key := range order {
		ids := groups[key]
		if len(ids) < 2 {
			continue
		}
		for _, id := range ids {
			claimed[id] = true
		}
		entries = append(entries, model.DuplicateEntry{
			PrimaryID:       ids[0],
			DuplicateIDs:    ids[1:],
			SimilarityScore: 1.0,
			HashMatch:       true,
			FuzzyMatch:      false,
			DetectionMethod: MethodExactHash,
		})
	}
	return entries
}

// fuzzyCandidate is one unclaimed record prepared for similarity
// comparison.
type fuzzyCandidate struct {
	id      string
	content string
	pos     int
}

// fuzzyPass compares unclaimed records pairwise within a length-bucket
// window. Candidates are sorted by normalized content length so each
// record only scans forward while lengths stay within the window,
// avoiding the quadratic blow-up of all-pairs comparison.
func (d *Detector) fuzzyPass(ctx context.Context, records []model.DocumentRecord, claimed map[string]bool) []model.DuplicateEntry {
	candidates := make([]fuzzyCandidate, 0, len(records))
	for i, r := range records {
		if claimed[r.ID] {
			continue
		}
		content := normalizeContent(r.Content)
		if content == "" {
			continue
		}
		candidates = append(candidates, fuzzyCandidate{id: r.ID, content: content, pos: i})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		li, lj := len(candidates[i].content), len(candidates[j].content)
		if li != lj {
			return li < lj
		}
		return candidates[i].pos < candidates[j].pos
	})

	var entries []model.DuplicateEntry
	for i, c := range candidates {
		if claimed[c.id] {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		var members []string
		var simSum float64
		compared := 0
		for j := i + 1; j < len(candidates) && compared < d.maxCandidates; j++ {
			other := candidates[j]
			if claimed[other.id] {
				continue
			}
			if float64(len(other.content)) > float64(len(c.content))*lengthWindow {
				break
			}
			compared++
			sim := d.simFn(c.content, other.content)
			if sim >= d.threshold {
				members = append(members, other.id)
				simSum += sim
				claimed[other.id] = true
			}
		}

		if len(members) == 0 {
			continue
		}
		claimed[c.id] = true
		entries = append(entries, model.DuplicateEntry{
			PrimaryID:       c.id,
			DuplicateIDs:    members,
			SimilarityScore: simSum / float64(len(members)),
			HashMatch:       false,
			FuzzyMatch:      true,
			DetectionMethod: MethodFuzzy,
		})
	}
	return entries
}

// normalizeContent folds content to NFC, lowercases it, and collapses
// whitespace so the fuzzy pass compares text, not formatting.
func normalizeContent(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}
