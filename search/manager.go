package search

import (
	"context"
	"maps"
	"sync"

	"github.com/Alp4ka/persistpager"
)

// IndexManager maps object classes to search indexes.
type IndexManager struct {
	mu           sync.RWMutex
	repositories map[persistpager.ObjectClass]*Repository
}

func NewIndexManager() *IndexManager {
	return &IndexManager{
		repositories: make(map[persistpager.ObjectClass]*Repository),
	}
}

// Bind registers objectClass as stored in index.
func (m *IndexManager) Bind(objectClass persistpager.ObjectClass, index string) *Repository {
	repository := &Repository{
		index:   index,
		methods: make(persistpager.QueryBuilderMethods[*Query]),
	}
	repository.Method(persistpager.DefaultQueryBuilderMethod, map[string]any{
		"match_all": map[string]any{},
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.repositories[objectClass] = repository

	return repository
}

// GetRepository implements persistpager.Manager.
func (m *IndexManager) GetRepository(_ context.Context, objectClass persistpager.ObjectClass) (persistpager.Repository[*Query], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	repository, ok := m.repositories[objectClass]
	if !ok {
		return nil, &persistpager.RepositoryNotFoundError{ObjectClass: objectClass}
	}

	return repository, nil
}

// Repository builds queries against one index.
type Repository struct {
	index string

	mu      sync.RWMutex
	methods persistpager.QueryBuilderMethods[*Query]
}

// Method registers a query builder method sending clause as the "query" of the request.
func (r *Repository) Method(name string, clause map[string]any) *Repository {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.methods.Register(name, func(context.Context) (*Query, error) {
		return &Query{
			Index: r.index,
			Body:  map[string]any{"query": maps.Clone(clause)},
		}, nil
	})

	return r
}

// QueryBuilderMethod implements persistpager.Repository.
func (r *Repository) QueryBuilderMethod(name string) (persistpager.QueryBuilderFunc[*Query], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.methods.QueryBuilderMethod(name)
}

var (
	_ persistpager.Manager[*Query]    = (*IndexManager)(nil)
	_ persistpager.Repository[*Query] = (*Repository)(nil)
)
