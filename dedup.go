package praxis

import (
	"sort"
	"strings"
)

// DefaultMergeThreshold is the normalized content similarity above which two
// records in the same (service, practice type) group are considered the
// same practice. The exact metric is an implementation choice; what matters
// is that high textual overlap merges.
const DefaultMergeThreshold = 0.9

// Dedupe merges near-duplicate records within each (service, practice type)
// group. The surviving record keeps the higher-confidence content and the
// union of source references.
//
// The result is idempotent (running twice over the same set yields the same
// merged set) and order-independent up to the explicit tie-break rule:
// higher confidence wins; on a tie, more source references win; on a
// further tie, the earliest-seen record wins.
func Dedupe(records []PracticeRecord, mergeThreshold float64) []PracticeRecord {
	if mergeThreshold <= 0 {
		mergeThreshold = DefaultMergeThreshold
	}

	type keyed struct {
		rec  PracticeRecord
		seen int // input position, the final tie-break
	}

	groups := make(map[string][]keyed)
	var order []string
	for i, rec := range records {
		key := rec.Service + "\x00" + string(rec.Type)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], keyed{rec: rec, seen: i})
	}

	var out []PracticeRecord
	for _, key := range order {
		group := groups[key]

		// Canonical order makes clustering independent of input order:
		// the leader of every cluster is always the strongest record.
		sort.SliceStable(group, func(i, j int) bool {
			a, b := group[i], group[j]
			if a.rec.Confidence != b.rec.Confidence {
				return a.rec.Confidence > b.rec.Confidence
			}
			if len(a.rec.SourceRefs) != len(b.rec.SourceRefs) {
				return len(a.rec.SourceRefs) > len(b.rec.SourceRefs)
			}
			return a.seen < b.seen
		})

		var survivors []PracticeRecord
		for _, k := range group {
			merged := false
			for i := range survivors {
				if ContentSimilarity(survivors[i].Content, k.rec.Content) >= mergeThreshold {
					survivors[i].SourceRefs = unionRefs(survivors[i].SourceRefs, k.rec.SourceRefs)
					merged = true
					break
				}
			}
			if !merged {
				rec := k.rec
				rec.SourceRefs = unionRefs(nil, rec.SourceRefs)
				survivors = append(survivors, rec)
			}
		}
		out = append(out, survivors...)
	}
	return out
}

// ContentSimilarity returns the Dice coefficient over word-bigram sets of
// the normalized contents, in [0,1]. Two identical texts score 1; texts
// with no shared bigrams score 0. Single-word texts fall back to exact
// match on the normalized form.
func ContentSimilarity(a, b string) float64 {
	na, nb := NormalizeContent(a), NormalizeContent(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	ba, bb := wordBigrams(na), wordBigrams(nb)
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}

	shared := 0
	for g := range ba {
		if _, ok := bb[g]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(ba)+len(bb))
}

// NormalizeContent lowercases, strips punctuation, and collapses whitespace
// so cosmetic differences do not defeat duplicate detection.
func NormalizeContent(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	prevSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			prevSpace = false
		case r == '.' || r == '=' || r == '$' || r == '%' || r == '/':
			// Keep characters that carry meaning in settings and prices.
			sb.WriteRune(r)
			prevSpace = false
		default:
			if !prevSpace {
				sb.WriteByte(' ')
				prevSpace = true
			}
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

func wordBigrams(s string) map[string]struct{} {
	words := strings.Fields(s)
	if len(words) < 2 {
		return map[string]struct{}{s: {}}
	}
	grams := make(map[string]struct{}, len(words)-1)
	for i := 0; i+1 < len(words); i++ {
		grams[words[i]+" "+words[i+1]] = struct{}{}
	}
	return grams
}

// unionRefs merges reference lists, removing duplicates and sorting so the
// merged record is stable regardless of merge order.
func unionRefs(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, r := range a {
		set[r] = struct{}{}
	}
	for _, r := range b {
		set[r] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
