package lexsearch

import "sort"

// Record is an arbitrary structured item: string keys mapping to strings,
// numbers, booleans, nested maps, slices, or nil. Records are supplied by
// the caller and returned in results by reference, unmodified.
type Record = map[string]any

// posting records one term's frequency within one document's field.
type posting struct {
	doc  int
	freq int
}

// fieldIndex holds the BM25 statistics for a single field across the
// corpus: an inverted term index, per-document token counts, and the
// average length over documents where the field is present.
type fieldIndex struct {
	postings map[string][]posting // term -> documents containing it, ascending doc order
	docLen   []int                // tokens per document, 0 where the field is absent
	docCount int                  // documents where the field yielded tokens
	avgLen   float64
}

// Index is an immutable searchable view over a record collection. It holds
// the original items in insertion order, per-field term statistics, and the
// options captured at construction, which serve as defaults for every
// subsequent [Index.Search]. Building an index never fails: records that
// contribute no string content are retained but never match a non-empty
// query.
//
// An Index is safe for concurrent use: construction is the only mutation,
// and Search reads without coordination.
type Index struct {
	items    []Record
	opts     Options
	perField map[string]*fieldIndex
	fields   []string // sorted field names, the scoring iteration order
	vocab    []string // sorted distinct terms across all fields
}

// NewIndex builds a search index over items. The items slice is referenced,
// not copied, and is never mutated. Options become the index defaults for
// later searches. An empty or nil items slice produces a valid index whose
// searches return no results.
func NewIndex(items []Record, opts ...Option) *Index {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	idx := &Index{
		items:    items,
		opts:     o,
		perField: make(map[string]*fieldIndex),
	}

	for i, item := range items {
		if item == nil {
			continue
		}

		var texts map[string]string
		if len(o.Fields) > 0 {
			texts = extractFields(item, o.Fields)
		} else {
			texts = discoverFields(item)
		}

		for path, text := range texts {
			tokens := tokenize(text)
			if len(tokens) == 0 {
				continue
			}
			idx.addField(path, i, tokens)
		}
	}

	idx.finalize()
	return idx
}

// addField records one document's tokens for one field.
func (idx *Index) addField(path string, doc int, tokens []string) {
	fi := idx.perField[path]
	if fi == nil {
		fi = &fieldIndex{
			postings: make(map[string][]posting),
			docLen:   make([]int, len(idx.items)),
		}
		idx.perField[path] = fi
	}

	fi.docLen[doc] = len(tokens)
	fi.docCount++

	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	for term, n := range freq {
		fi.postings[term] = append(fi.postings[term], posting{doc: doc, freq: n})
	}
}

// finalize derives the corpus statistics and the sorted iteration orders.
// Scoring walks fields and vocabulary in sorted order so that score
// accumulation is deterministic; map iteration order must never reach it.
func (idx *Index) finalize() {
	idx.fields = make([]string, 0, len(idx.perField))
	seen := make(map[string]struct{})

	for path, fi := range idx.perField {
		idx.fields = append(idx.fields, path)

		total := 0
		for _, n := range fi.docLen {
			total += n
		}
		if fi.docCount > 0 {
			fi.avgLen = float64(total) / float64(fi.docCount)
		}

		for term := range fi.postings {
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				idx.vocab = append(idx.vocab, term)
			}
		}
	}

	sort.Strings(idx.fields)
	sort.Strings(idx.vocab)
}

// Items returns the original record slice in insertion order.
func (idx *Index) Items() []Record {
	return idx.items
}

// Len reports the number of indexed records.
func (idx *Index) Len() int {
	return len(idx.items)
}
