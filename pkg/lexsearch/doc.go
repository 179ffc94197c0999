// Package lexsearch provides BM25-ranked lexical search over arbitrary
// structured records.
//
// An [Index] is built once from a slice of records and is immutable after
// construction; [Index.Search] can then be called any number of times,
// concurrently, with no coordination. Records are plain maps of any shape.
// Searchable text is either taken from an explicit list of (possibly
// dot-nested) field paths or auto-discovered by walking every string-valued
// leaf, with cycle detection so self-referencing records are safe.
//
// # Scoring
//
// Queries are scored with per-field Okapi BM25: each field keeps its own
// term frequencies, document lengths, and average length, and a field's
// contribution is multiplied by its boost weight before contributions are
// summed across fields and query terms. A query term matches indexed terms
// that are identical, that extend it as a prefix, or that differ from it by
// at most one character edit. Scores are deterministic: the same index,
// query, and options always produce bit-identical scores and ordering.
//
// # Usage
//
//	items := []lexsearch.Record{
//	    {"name": "John Doe", "email": "john@example.com"},
//	    {"name": "Jane Smith", "email": "jane@example.com"},
//	}
//
//	idx := lexsearch.NewIndex(items,
//	    lexsearch.WithFields("name", "email"),
//	    lexsearch.WithBoost(map[string]float64{"name": 2.0}),
//	)
//
//	results := idx.Search("john")
//	for _, r := range results {
//	    fmt.Println(r.Item["name"], r.Score)
//	}
//
// An empty or whitespace-only query returns every record with score zero in
// insertion order. Search never returns an error; degenerate inputs produce
// empty results, not failures.
package lexsearch
