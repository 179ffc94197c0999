package lexsearch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contactIndex() *Index {
	return NewIndex([]Record{
		{"name": "John Doe"},
		{"name": "Jane Smith"},
		{"name": "Johnny Cash"},
	})
}

func TestSearch_EmptyQueryReturnsAllWithZeroScore(t *testing.T) {
	// Given: a populated index
	idx := contactIndex()

	for _, query := range []string{"", "   ", "\t\n"} {
		// When: searching with an empty or whitespace query
		results := idx.Search(query)

		// Then: every item comes back with score exactly 0, in insertion order
		require.Len(t, results, 3, "query %q", query)
		assert.Equal(t, "John Doe", results[0].Item["name"])
		assert.Equal(t, "Jane Smith", results[1].Item["name"])
		assert.Equal(t, "Johnny Cash", results[2].Item["name"])
		for _, r := range results {
			assert.Equal(t, 0.0, r.Score)
		}
	}
}

func TestSearch_EmptyQueryBypassesLimitAndOrdering(t *testing.T) {
	// Given: more items than the default result cap
	items := make([]Record, 60)
	for i := range items {
		items[i] = Record{"name": "widget", "seq": i}
	}
	idx := NewIndex(items, WithSortBy("seq", OrderDesc))

	// When: searching with an empty query
	results := idx.Search("")

	// Then: every item is returned in insertion order, uncapped and unsorted
	require.Len(t, results, 60)
	assert.Equal(t, 0, results[0].Item["seq"])
	assert.Equal(t, 59, results[59].Item["seq"])
}

func TestSearch_EmptyIndexReturnsNothing(t *testing.T) {
	idx := NewIndex(nil)

	assert.Empty(t, idx.Search("anything"))
	assert.Empty(t, idx.Search(""))
}

func TestSearch_MatchesOnlyOverlappingItems(t *testing.T) {
	// Given: three contacts
	idx := contactIndex()

	// When: searching for "John"
	results := idx.Search("John")

	// Then: only Doe and Cash are returned, both scoring above zero
	require.Len(t, results, 2)
	names := []string{
		results[0].Item["name"].(string),
		results[1].Item["name"].(string),
	}
	assert.Contains(t, names, "John Doe")
	assert.Contains(t, names, "Johnny Cash")
	for _, r := range results {
		assert.Greater(t, r.Score, 0.0)
	}
}

func TestSearch_CommonTermsStillScorePositive(t *testing.T) {
	// Given: a term present in most of the corpus
	idx := NewIndex([]Record{
		{"name": "John Doe"},
		{"name": "John Ray"},
		{"name": "Jane Smith"},
	})

	// When: searching for the common term
	results := idx.Search("john")

	// Then: scores stay positive even though the term's document frequency
	// exceeds half the corpus
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Greater(t, r.Score, 0.0)
	}
}

func TestSearch_FuzzyToleranceIsOneEdit(t *testing.T) {
	// Given: indexed text "hello world"
	idx := NewIndex([]Record{{"text": "hello world"}})

	// Then: a one-edit query matches
	assert.Len(t, idx.Search("helo"), 1)

	// And: a two-edit query does not
	assert.Empty(t, idx.Search("hezxo"))
}

func TestSearch_PrefixMatchesLongerTerms(t *testing.T) {
	// Given: indexed text "hello world"
	idx := NewIndex([]Record{{"text": "hello world"}})

	// When: querying with a prefix of an indexed term
	results := idx.Search("hel")

	// Then: the longer term matches
	require.Len(t, results, 1)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestSearch_ThresholdFiltersLowScores(t *testing.T) {
	// Given: a matching corpus and its natural scores
	idx := contactIndex()
	baseline := idx.Search("John")
	require.Len(t, baseline, 2)
	top := baseline[0].Score

	// When: the threshold equals the top score
	atTop := idx.Search("John", WithThreshold(top))

	// Then: items at the threshold are kept (at-or-above semantics)
	require.NotEmpty(t, atTop)
	for _, r := range atTop {
		assert.GreaterOrEqual(t, r.Score, top)
	}

	// And: a threshold above every score filters everything
	assert.Empty(t, idx.Search("John", WithThreshold(top+1)))
}

func TestSearch_MaxResultsTruncatesAfterOrdering(t *testing.T) {
	// Given: sixty identical records
	items := make([]Record, 60)
	for i := range items {
		items[i] = Record{"name": "widget", "seq": i}
	}
	idx := NewIndex(items)

	// Then: the default cap is 50
	assert.Len(t, idx.Search("widget"), DefaultMaxResults)

	// And: an explicit cap wins
	capped := idx.Search("widget", WithMaxResults(10))
	require.Len(t, capped, 10)
	// Ties keep insertion order, so the first ten survive
	assert.Equal(t, 0, capped[0].Item["seq"])
	assert.Equal(t, 9, capped[9].Item["seq"])

	// And: a non-positive cap disables the limit
	assert.Len(t, idx.Search("widget", WithMaxResults(0)), 60)
	assert.Len(t, idx.Search("widget", WithMaxResults(-1)), 60)
}

func TestSearch_FieldRestrictionAtSearchTime(t *testing.T) {
	// Given: an index over title and content
	idx := NewIndex([]Record{
		{"title": "alpha beta", "content": "gamma alpha"},
	})

	// When: the search is restricted to title
	viaTitle := idx.Search("gamma", WithFields("title"))
	viaContent := idx.Search("gamma")

	// Then: content-only matches disappear under the restriction
	assert.Empty(t, viaTitle)
	assert.Len(t, viaContent, 1)
}

func TestSearch_BoostRaisesFieldContribution(t *testing.T) {
	// Given: "important" in B's content but A's title, B inserted first
	b := Record{"title": "Weekly digest", "content": "Important news inside"}
	a := Record{"title": "Important update", "content": "routine words here"}
	idx := NewIndex([]Record{b, a})

	// When: searching without and with a title boost
	plain := idx.Search("important")
	boosted := idx.Search("important", WithBoost(map[string]float64{"title": 2.0}))

	require.Len(t, plain, 2)
	require.Len(t, boosted, 2)

	// Then: unboosted, the scores tie and insertion order puts B first
	assert.Equal(t, "Weekly digest", plain[0].Item["title"])

	// And: boosting title lifts A's score above its unboosted value and
	// moves it to the front
	assert.Equal(t, "Important update", boosted[0].Item["title"])
	assert.Greater(t, boosted[0].Score, plain[1].Score)
}

func TestSearch_SortByPropertyAscendingAndDescending(t *testing.T) {
	// Given: identical text with distinct createdAt values
	idx := NewIndex([]Record{
		{"text": "entry", "createdAt": "100"},
		{"text": "entry", "createdAt": "300"},
		{"text": "entry", "createdAt": "200"},
	})

	// When: sorting ascending
	asc := idx.Search("entry", WithSortBy("createdAt", OrderAsc))
	require.Len(t, asc, 3)

	// Then: results follow the property, not the score
	assert.Equal(t, "100", asc[0].Item["createdAt"])
	assert.Equal(t, "200", asc[1].Item["createdAt"])
	assert.Equal(t, "300", asc[2].Item["createdAt"])

	// And: descending reverses it
	desc := idx.Search("entry", WithSortBy("createdAt", OrderDesc))
	require.Len(t, desc, 3)
	assert.Equal(t, "300", desc[0].Item["createdAt"])
	assert.Equal(t, "200", desc[1].Item["createdAt"])
	assert.Equal(t, "100", desc[2].Item["createdAt"])
}

func TestSearch_SortByNumericValuesComparesNumerically(t *testing.T) {
	// Given: numeric sort keys where lexical order would differ
	idx := NewIndex([]Record{
		{"text": "entry", "rank": 2},
		{"text": "entry", "rank": 10},
		{"text": "entry", "rank": 1},
	})

	// When: sorting ascending by rank
	results := idx.Search("entry", WithSortBy("rank", OrderAsc))

	// Then: 1 < 2 < 10, not "1" < "10" < "2"
	require.Len(t, results, 3)
	assert.Equal(t, 1, results[0].Item["rank"])
	assert.Equal(t, 2, results[1].Item["rank"])
	assert.Equal(t, 10, results[2].Item["rank"])
}

func TestSearch_SortByUnknownPropertyKeepsInsertionOrder(t *testing.T) {
	// Given: a sort property no item has
	idx := NewIndex([]Record{
		{"text": "entry", "seq": 0},
		{"text": "entry", "seq": 1},
		{"text": "entry", "seq": 2},
	})

	// When: sorting by it
	results := idx.Search("entry", WithSortBy("nope", OrderAsc))

	// Then: the stable sort degrades to insertion order
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i, r.Item["seq"])
	}
}

func TestSearch_OverridesDoNotStickToTheIndex(t *testing.T) {
	// Given: an index with default options
	idx := contactIndex()

	// When: one call overrides the threshold out of reach
	assert.Empty(t, idx.Search("John", WithThreshold(100)))

	// Then: the next call is back on the index defaults
	assert.Len(t, idx.Search("John"), 2)
}

func TestSearch_RepeatedQueryTermsAccumulate(t *testing.T) {
	// Given: a matching corpus
	idx := contactIndex()

	// When: a query repeats a term
	once := idx.Search("john")
	twice := idx.Search("john john")

	// Then: each occurrence contributes to the score
	require.NotEmpty(t, once)
	require.NotEmpty(t, twice)
	assert.Greater(t, twice[0].Score, once[0].Score)
}

func TestSearch_ResultsReferenceOriginalItems(t *testing.T) {
	// Given: an index and a search hit
	items := []Record{{"name": "John Doe"}}
	idx := NewIndex(items)
	results := idx.Search("john")
	require.Len(t, results, 1)

	// When: writing through the result's item
	results[0].Item["sentinel"] = true

	// Then: the caller's record sees the write
	assert.Equal(t, true, items[0]["sentinel"])
}

func TestSearch_DeterministicAcrossCalls(t *testing.T) {
	// Given: a corpus wide enough to exercise multi-field accumulation
	items := make([]Record, 0, 20)
	for i := 0; i < 20; i++ {
		items = append(items, Record{
			"name":  fmt.Sprintf("contact %d alpha", i),
			"email": fmt.Sprintf("user%d@example.com", i),
			"notes": "shared alpha beta gamma text",
		})
	}
	idx := NewIndex(items, WithBoost(map[string]float64{"name": 1.5}))

	for _, query := range []string{"alpha", "contact gamma", "alpa"} {
		// When: running the same search twice
		first := idx.Search(query)
		second := idx.Search(query)

		// Then: scores and ordering are bit-identical
		require.Equal(t, len(first), len(second), "query %q", query)
		for i := range first {
			assert.Equal(t, first[i].Score, second[i].Score, "query %q result %d", query, i)
			assert.Equal(t, first[i].Item, second[i].Item, "query %q result %d", query, i)
		}
	}
}

func TestSearch_ConcurrentCallsAreSafe(t *testing.T) {
	// Given: one shared index
	idx := contactIndex()

	// When: many goroutines search concurrently
	done := make(chan []Result)
	for i := 0; i < 10; i++ {
		go func() {
			done <- idx.Search("john")
		}()
	}

	// Then: all complete with identical results
	expected := idx.Search("john")
	for i := 0; i < 10; i++ {
		got := <-done
		assert.Equal(t, expected, got)
	}
}

func BenchmarkSearch(b *testing.B) {
	items := make([]Record, 500)
	for i := range items {
		items[i] = Record{
			"name":  fmt.Sprintf("contact number %d", i),
			"email": fmt.Sprintf("user%d@example.com", i),
		}
	}
	idx := NewIndex(items)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.Search("contact")
	}
}
