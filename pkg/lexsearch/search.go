package lexsearch

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Result pairs an original record with its relevance score. Results are
// produced fresh on every search and never retained by the index.
type Result struct {
	Item  Record  `json:"item"`
	Score float64 `json:"score"`
}

// Search scores a free-text query against the index and returns matching
// records ranked by descending BM25 score, or by the SortBy property when
// one is set. Options given here override the index defaults for this call
// only.
//
// An empty or whitespace-only query returns every record with score exactly
// zero in insertion order, bypassing threshold, ordering, and truncation.
// Otherwise only records matching at least one query term are considered;
// of those, records scoring below the threshold are discarded, survivors
// are ordered with ties broken by insertion order, and the result list is
// capped at MaxResults. Search never returns an error: no matches is an
// empty slice.
func (idx *Index) Search(query string, opts ...Option) []Result {
	eff := idx.opts
	for _, opt := range opts {
		opt(&eff)
	}

	if strings.TrimSpace(query) == "" {
		results := make([]Result, len(idx.items))
		for i, item := range idx.items {
			results[i] = Result{Item: item, Score: 0}
		}
		return results
	}

	results := idx.score(tokenize(query), eff)

	if eff.SortBy != nil && eff.SortBy.Property != "" {
		sortByProperty(results, eff.SortBy)
	} else {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}

	if eff.MaxResults > 0 && len(results) > eff.MaxResults {
		results = results[:eff.MaxResults]
	}
	return results
}

// score accumulates per-field BM25 contributions for every document that
// matches at least one query term, then drops candidates below the
// threshold. Query terms contribute once per occurrence, not once per
// distinct term. Matched vocabulary terms and fields are walked in sorted
// order so floating-point accumulation is bit-identical across calls.
func (idx *Index) score(terms []string, eff Options) []Result {
	scores := make([]float64, len(idx.items))
	matched := make([]bool, len(idx.items))

	k1 := eff.clampedK1()
	b := eff.clampedB()
	n := float64(len(idx.items))

	fields := idx.fields
	if len(eff.Fields) > 0 {
		fields = restrictFields(idx.fields, eff.Fields)
	}

	for _, qt := range terms {
		for _, term := range idx.matchTerms(qt) {
			for _, path := range fields {
				fi := idx.perField[path]
				posts := fi.postings[term]
				if len(posts) == 0 {
					continue
				}

				df := float64(len(posts))
				idf := math.Log((n-df+0.5)/(df+0.5) + 1.0)
				boost := eff.boostFor(path)

				for _, p := range posts {
					tf := float64(p.freq)
					dl := float64(fi.docLen[p.doc])
					tfNorm := (tf * (k1 + 1)) / (tf + k1*(1-b+b*dl/fi.avgLen))

					scores[p.doc] += idf * tfNorm * boost
					matched[p.doc] = true
				}
			}
		}
	}

	results := make([]Result, 0)
	for i := range idx.items {
		if !matched[i] || scores[i] < eff.Threshold {
			continue
		}
		results = append(results, Result{Item: idx.items[i], Score: scores[i]})
	}
	return results
}

// matchTerms expands one query term against the indexed vocabulary. A
// vocabulary term matches if it is identical to the query term, extends it
// as a prefix, or is within one character edit of it. Two-edit differences
// never match; the tolerance is fixed. The vocabulary is pre-sorted, so the
// expansion order is stable.
func (idx *Index) matchTerms(qt string) []string {
	var terms []string
	for _, t := range idx.vocab {
		if strings.HasPrefix(t, qt) || withinOneEdit(qt, t) {
			terms = append(terms, t)
		}
	}
	return terms
}

// restrictFields intersects the indexed fields with a search-time field
// list, preserving the sorted indexed order.
func restrictFields(indexed, requested []string) []string {
	want := make(map[string]struct{}, len(requested))
	for _, f := range requested {
		want[f] = struct{}{}
	}
	out := make([]string, 0, len(requested))
	for _, f := range indexed {
		if _, ok := want[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// sortByProperty orders results by a dot-path property of the original
// item. The sort is stable, so records with equal or absent values keep
// their insertion order; an unknown property therefore degrades to
// insertion order rather than failing.
func sortByProperty(results []Result, spec *SortSpec) {
	desc := spec.Order == OrderDesc
	sort.SliceStable(results, func(i, j int) bool {
		a, _ := resolvePath(results[i].Item, spec.Property)
		b, _ := resolvePath(results[j].Item, spec.Property)
		c := compareValues(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// compareValues orders two property values. Absent values sort before
// present ones; two numbers compare numerically; everything else compares
// by its text form. Mixed-type collections thus get a stable total order
// instead of a panic.
func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	af, aok := numericValue(a)
	bf, bok := numericValue(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(textValue(a), textValue(b))
}

func numericValue(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	default:
		if f, ok := numericValue(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return ""
	}
}
