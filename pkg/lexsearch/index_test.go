package lexsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIndex_PreservesItems(t *testing.T) {
	// Given: a record collection
	items := []Record{
		{"name": "John Doe"},
		{"name": "Jane Smith"},
	}

	// When: building an index
	idx := NewIndex(items)

	// Then: the original items are held in insertion order
	require.Equal(t, 2, idx.Len())
	got := idx.Items()
	require.Len(t, got, 2)
	assert.Equal(t, "John Doe", got[0]["name"])
	assert.Equal(t, "Jane Smith", got[1]["name"])

	// And: they are the caller's maps, not copies
	items[0]["sentinel"] = "written through caller slice"
	assert.Equal(t, "written through caller slice", got[0]["sentinel"])
}

func TestNewIndex_EmptyAndNilInput(t *testing.T) {
	// Given: no items
	empty := NewIndex([]Record{})
	var none []Record
	fromNil := NewIndex(none)

	// Then: both are valid indexes over nothing
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 0, fromNil.Len())
	assert.Empty(t, empty.Search("anything"))
	assert.Empty(t, fromNil.Search("anything"))
}

func TestNewIndex_NilItemIsRetainedButUnsearchable(t *testing.T) {
	// Given: a collection with a nil record in the middle
	items := []Record{
		{"name": "first"},
		nil,
		{"name": "third"},
	}

	// When: building and searching
	idx := NewIndex(items)

	// Then: the nil record counts toward the index size
	assert.Equal(t, 3, idx.Len())

	// And: it never matches a non-empty query
	results := idx.Search("first third")
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotNil(t, r.Item)
	}

	// And: the empty query still returns it, in position
	all := idx.Search("")
	require.Len(t, all, 3)
	assert.Nil(t, all[1].Item)
}

func TestNewIndex_SelfReferencingItemCompletes(t *testing.T) {
	// Given: an item containing itself
	item := Record{"name": "Ouroboros"}
	item["self"] = item

	// When: building an index over it
	idx := NewIndex([]Record{item})

	// Then: construction terminates and the item is present
	require.Equal(t, 1, idx.Len())
	assert.Equal(t, "Ouroboros", idx.Items()[0]["name"])

	// And: its content is searchable
	results := idx.Search("ouroboros")
	require.Len(t, results, 1)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestNewIndex_ItemWithNoStringContent(t *testing.T) {
	// Given: a record carrying only numbers and booleans
	items := []Record{
		{"count": 3, "active": true},
		{"name": "match me"},
	}

	// When: auto-discovery indexing
	idx := NewIndex(items)

	// Then: the contentless record is retained but never matches
	assert.Equal(t, 2, idx.Len())
	results := idx.Search("match")
	require.Len(t, results, 1)
	assert.Equal(t, "match me", results[0].Item["name"])
}

func TestNewIndex_ExplicitFieldsLimitIndexedContent(t *testing.T) {
	// Given: records with title and content fields
	items := []Record{
		{"title": "searchable title", "content": "hidden body"},
	}

	// When: indexing only the title
	idx := NewIndex(items, WithFields("title"))

	// Then: title terms match, content terms do not
	assert.Len(t, idx.Search("searchable"), 1)
	assert.Empty(t, idx.Search("hidden"))
}

func TestNewIndex_FieldIterationOrderIsSorted(t *testing.T) {
	// Given: an index over several fields
	idx := NewIndex([]Record{
		{"zebra": "one", "alpha": "two", "mid": "three"},
	})

	// Then: the scoring iteration orders are sorted, not map order
	assert.Equal(t, []string{"alpha", "mid", "zebra"}, idx.fields)
	assert.Equal(t, []string{"one", "three", "two"}, idx.vocab)
}
