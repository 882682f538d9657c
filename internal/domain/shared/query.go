package shared

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// DefaultPageSize is the page size of every list screen until the user picks another
const DefaultPageSize = 20

// PageSizeOptions are the page sizes offered by the page-size selector
var PageSizeOptions = []int{10, 20, 50, 100}

// Filters holds server-side filter values keyed by query parameter name.
// Values are scalars: string, bool, int or float64.
type Filters map[string]any

// Set stores a filter value. A nil or empty-string value removes the key.
func (f Filters) Set(key string, value any) {
	if value == nil {
		delete(f, key)
		return
	}
	if s, ok := value.(string); ok && s == "" {
		delete(f, key)
		return
	}
	f[key] = value
}

// Clone returns an independent copy
func (f Filters) Clone() Filters {
	if f == nil {
		return Filters{}
	}
	return maps.Clone(f)
}

// Key returns a stable serialized form used to compare filter sets
func (f Filters) Key() string {
	if len(f) == 0 {
		return "{}"
	}
	// encoding/json sorts map keys
	b, err := json.Marshal(map[string]any(f))
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(f))
	}
	return string(b)
}

// Query is the request state of a paginated list
type Query struct {
	Page     int
	PageSize int
	Search   string
	Filters  Filters
}

// NewQuery returns the first page with the default page size
func NewQuery() Query {
	return Query{Page: 1, PageSize: DefaultPageSize, Filters: Filters{}}
}

// Normalize clamps page and page size to valid values
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	q.Filters = q.Filters.Clone()
	return q
}

// Equal reports whether two queries would produce the same request
func (q Query) Equal(other Query) bool {
	return q.Page == other.Page &&
		q.PageSize == other.PageSize &&
		q.Search == other.Search &&
		q.Filters.Key() == other.Filters.Key()
}

// Values encodes the query as URL parameters: page, pageSize, search and one parameter per filter
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	for k, val := range q.Filters {
		v.Set(k, fmt.Sprint(val))
	}
	return v
}

// Metric is one aggregate figure shown above a list
type Metric struct {
	Key   string
	Label string
	Value decimal.Decimal
	Money bool
}

// Stats is the aggregate block a list endpoint may return with a page
type Stats interface {
	Metrics() []Metric
}

// PageResult is one server page. TotalPages is trusted as sent by the server.
type PageResult[T any] struct {
	Items      []T
	TotalCount int
	Page       int
	PageSize   int
	TotalPages int
	Stats      Stats
}

// TotalPagesFor returns ceil(totalCount/pageSize)
func TotalPagesFor(totalCount, pageSize int) int {
	if pageSize <= 0 || totalCount <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}

// MaxPageSize bounds the page size a list endpoint serves
const MaxPageSize = 100

// NewPageResult assembles a page, computing TotalPages from the query's page size
func NewPageResult[T any](items []T, totalCount int, q Query, stats Stats) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		Items:      items,
		TotalCount: totalCount,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: TotalPagesFor(totalCount, q.PageSize),
		Stats:      stats,
	}
}
