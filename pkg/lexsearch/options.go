package lexsearch

// SortOrder is the direction of property-based result ordering.
type SortOrder string

const (
	// OrderAsc sorts results by ascending property value.
	OrderAsc SortOrder = "ASC"
	// OrderDesc sorts results by descending property value.
	OrderDesc SortOrder = "DESC"
)

// SortSpec orders results by a (possibly dot-nested) property of the
// original item instead of by descending score.
type SortSpec struct {
	Property string
	Order    SortOrder
}

// Default scoring and result-shaping parameters.
const (
	// DefaultK1 is the BM25 term-frequency saturation parameter.
	DefaultK1 = 1.2
	// DefaultB is the BM25 length-normalization parameter.
	DefaultB = 0.75
	// DefaultMaxResults caps the result count when no explicit limit is set.
	DefaultMaxResults = 50
)

// Options configures index construction and searching.
//
// Options given to [NewIndex] become the index defaults; options given to
// [Index.Search] override them for that call only. The zero value is not
// meaningful on its own; use the With* setters.
type Options struct {
	// Fields restricts indexing and scoring to these dot-path field names.
	// Empty means auto-discover every string-valued leaf of each item.
	Fields []string

	// Threshold is the minimum score a matching item must reach to be
	// returned. Items at or above the threshold are kept.
	Threshold float64

	// MaxResults caps the number of returned results, applied after
	// ordering. Values <= 0 disable the cap.
	MaxResults int

	// SortBy, when non-nil, orders results by an item property instead of
	// by descending score.
	SortBy *SortSpec

	// Boost multiplies a field's scoring contribution. Fields not listed
	// weigh 1.0.
	Boost map[string]float64

	// K1 and B are the BM25 tuning parameters.
	K1 float64
	B  float64
}

// Option customizes Options.
type Option func(*Options)

// WithFields restricts indexing and scoring to the given dot-path fields.
func WithFields(fields ...string) Option {
	return func(o *Options) {
		o.Fields = fields
	}
}

// WithThreshold sets the minimum score for a result to be included.
func WithThreshold(threshold float64) Option {
	return func(o *Options) {
		o.Threshold = threshold
	}
}

// WithMaxResults caps the number of returned results. Values <= 0 disable
// the cap entirely rather than returning nothing.
func WithMaxResults(n int) Option {
	return func(o *Options) {
		o.MaxResults = n
	}
}

// WithSortBy orders results by the named (dot-path) item property. An empty
// order defaults to ascending.
func WithSortBy(property string, order SortOrder) Option {
	return func(o *Options) {
		o.SortBy = &SortSpec{Property: property, Order: order}
	}
}

// WithBoost sets per-field score multipliers.
func WithBoost(boost map[string]float64) Option {
	return func(o *Options) {
		o.Boost = boost
	}
}

// WithK1 sets the BM25 term-frequency saturation parameter. Negative values
// are clamped to zero at scoring time.
func WithK1(k1 float64) Option {
	return func(o *Options) {
		o.K1 = k1
	}
}

// WithB sets the BM25 length-normalization parameter. Values are clamped
// into [0, 1] at scoring time.
func WithB(b float64) Option {
	return func(o *Options) {
		o.B = b
	}
}

// defaultOptions returns the documented defaults.
func defaultOptions() Options {
	return Options{
		Threshold:  0,
		MaxResults: DefaultMaxResults,
		K1:         DefaultK1,
		B:          DefaultB,
	}
}

// boostFor returns the configured weight for a field, defaulting to 1.0.
func (o Options) boostFor(field string) float64 {
	if w, ok := o.Boost[field]; ok {
		return w
	}
	return 1.0
}

// clampedK1 guards against nonsensical tuning values without erroring.
func (o Options) clampedK1() float64 {
	if o.K1 < 0 {
		return 0
	}
	return o.K1
}

func (o Options) clampedB() float64 {
	switch {
	case o.B < 0:
		return 0
	case o.B > 1:
		return 1
	default:
		return o.B
	}
}
