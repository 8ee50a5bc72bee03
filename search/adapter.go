package search

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/Alp4ka/persistpager"
)

// Query is the search backend query builder: a target index and a request
// body, typically holding a "query" clause.
type Query struct {
	Index string
	Body  map[string]any
}

// Clone returns a copy of q with a shallow copy of its body.
func (q *Query) Clone() *Query {
	return &Query{
		Index: q.Index,
		Body:  maps.Clone(q.Body),
	}
}

// Adapter pages over a search query with from/size.
type Adapter struct {
	searcher Searcher
	query    *Query
	sort     []map[string]any
}

func NewAdapter(searcher Searcher, query *Query, sort persistpager.Orderings) (*Adapter, error) {
	switch {
	case searcher == nil:
		return nil, fmt.Errorf("searcher is nil")
	case query == nil:
		return nil, persistpager.NewUnsupportedQueryBuilderTypeError(Backend, query, "nil query")
	case query.Index == "":
		return nil, persistpager.NewUnsupportedQueryBuilderTypeError(Backend, query, "query has no index")
	}

	if err := sort.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sort: %w", err)
	}

	clauses := make([]map[string]any, 0, len(sort))
	for _, o := range sort {
		clauses = append(clauses, map[string]any{
			o.Column: map[string]any{"order": strings.ToLower(string(o.Direction))},
		})
	}

	return &Adapter{
		searcher: searcher,
		query:    query.Clone(),
		sort:     clauses,
	}, nil
}

// Query returns a copy of the wrapped query.
func (a *Adapter) Query() *Query {
	return a.query.Clone()
}

// GetNbResults implements persistpager.PagerAdapter.
func (a *Adapter) GetNbResults(ctx context.Context) (int64, error) {
	body := maps.Clone(a.query.Body)
	if body == nil {
		body = make(map[string]any)
	}
	delete(body, "sort")
	delete(body, "from")
	body["size"] = 0
	body["track_total_hits"] = true

	result, err := a.searcher.Search(ctx, a.query.Index, body)
	if err != nil {
		return 0, err
	}

	return result.Hits.Total.Value, nil
}

// GetSlice implements persistpager.PagerAdapter. Items are the hit sources.
func (a *Adapter) GetSlice(ctx context.Context, offset, length int) ([]any, error) {
	body := maps.Clone(a.query.Body)
	if body == nil {
		body = make(map[string]any)
	}
	body["from"] = offset
	body["size"] = length
	if len(a.sort) > 0 {
		body["sort"] = a.sort
	}

	result, err := a.searcher.Search(ctx, a.query.Index, body)
	if err != nil {
		return nil, err
	}

	items := make([]any, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		items = append(items, hit.Source)
	}

	return items, nil
}

var _ persistpager.PagerAdapter = (*Adapter)(nil)
