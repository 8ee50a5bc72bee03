package phpcr

import (
	"context"
	"fmt"
	"sync"

	"github.com/uptrace/bun"

	"github.com/Alp4ka/persistpager"
)

// Adapter pages over a bun select query. The ordering is applied to the query
// once, at construction; Limit and Offset are overwritten on every slice, so
// calls are serialized.
type Adapter struct {
	mu    sync.Mutex
	query *bun.SelectQuery
}

func NewAdapter(query *bun.SelectQuery, sort persistpager.Orderings) (*Adapter, error) {
	if query == nil {
		return nil, persistpager.NewUnsupportedQueryBuilderTypeError(Backend, query, "nil query")
	}
	if query.DB() == nil {
		return nil, persistpager.NewUnsupportedQueryBuilderTypeError(Backend, query, "query is not bound to a database")
	}

	if err := sort.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sort: %w", err)
	}
	if len(sort) > 0 {
		query = query.Order(sort.ToSQLSlice()...)
	}

	return &Adapter{query: query}, nil
}

// Query returns the wrapped query.
func (a *Adapter) Query() *bun.SelectQuery {
	return a.query
}

// GetNbResults implements persistpager.PagerAdapter.
func (a *Adapter) GetNbResults(ctx context.Context) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	count, err := a.query.Count(ctx)
	if err != nil {
		return 0, err
	}

	return int64(count), nil
}

// GetSlice implements persistpager.PagerAdapter.
func (a *Adapter) GetSlice(ctx context.Context, offset, length int) ([]any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var rows []map[string]interface{}

	err := a.query.Limit(length).Offset(offset).Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	items := make([]any, 0, len(rows))
	for _, row := range rows {
		items = append(items, row)
	}

	return items, nil
}

var _ persistpager.PagerAdapter = (*Adapter)(nil)
