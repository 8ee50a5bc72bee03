package persistpager

import (
	"context"
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// DefaultQueryBuilderMethod is the method name every bundled repository registers.
const DefaultQueryBuilderMethod = "createQueryBuilder"

// QueryBuilderFunc builds a backend-native query builder.
type QueryBuilderFunc[Q any] func(ctx context.Context) (Q, error)

// QueryBuilderMethods is a method table keyed by name. It implements Repository,
// so repositories can embed it or return it directly.
type QueryBuilderMethods[Q any] map[string]QueryBuilderFunc[Q]

// Register adds or replaces the method called name.
func (m QueryBuilderMethods[Q]) Register(name string, fn QueryBuilderFunc[Q]) QueryBuilderMethods[Q] {
	if m == nil {
		m = make(QueryBuilderMethods[Q])
	}

	m[name] = fn

	return m
}

// QueryBuilderMethod implements Repository.
func (m QueryBuilderMethods[Q]) QueryBuilderMethod(name string) (QueryBuilderFunc[Q], bool) {
	fn, ok := m[name]
	if !ok || fn == nil {
		return nil, false
	}

	return fn, true
}

// Names returns the registered method names, sorted.
func (m QueryBuilderMethods[Q]) Names() []string {
	names := lo.Keys(m)
	sort.Strings(names)

	return names
}

// ResolveQueryBuilder invokes the repository method called method exactly once.
func ResolveQueryBuilder[Q any](ctx context.Context, repository Repository[Q], objectClass ObjectClass, method string) (Q, error) {
	fn, ok := repository.QueryBuilderMethod(method)
	if !ok {
		return lo.Empty[Q](), &UnknownMethodError{ObjectClass: objectClass, Method: method}
	}

	queryBuilder, err := fn(ctx)
	if err != nil {
		return lo.Empty[Q](), fmt.Errorf("cannot build query with %q: %w", method, err)
	}

	return queryBuilder, nil
}

var _ Repository[any] = QueryBuilderMethods[any](nil)
