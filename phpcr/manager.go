package phpcr

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/uptrace/bun"

	"github.com/Alp4ka/persistpager"
)

const (
	// DefaultNodesTable stores one row per node.
	DefaultNodesTable = "phpcr_nodes"
	// ClassColumn holds the document class a node was persisted from.
	ClassColumn = "node_class"
	// PathColumn holds the absolute node path.
	PathColumn = "path"
)

// DocumentManager maps document classes to the nodes of one workspace table.
type DocumentManager struct {
	db    bun.IDB
	table string

	mu           sync.RWMutex
	repositories map[persistpager.ObjectClass]*Repository
}

// NewDocumentManager returns a manager over table, DefaultNodesTable when empty.
func NewDocumentManager(db bun.IDB, table string) *DocumentManager {
	if table == "" {
		table = DefaultNodesTable
	}

	return &DocumentManager{
		db:           db,
		table:        table,
		repositories: make(map[persistpager.ObjectClass]*Repository),
	}
}

// Bind registers objectClass. A non-empty rootPath restricts the repository to
// the descendants of that node.
func (m *DocumentManager) Bind(objectClass persistpager.ObjectClass, rootPath string) *Repository {
	repository := &Repository{
		manager:     m,
		objectClass: objectClass,
		rootPath:    strings.TrimSuffix(rootPath, "/"),
		methods:     make(persistpager.QueryBuilderMethods[*bun.SelectQuery]),
	}
	repository.Method(persistpager.DefaultQueryBuilderMethod)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.repositories[objectClass] = repository

	return repository
}

// GetRepository implements persistpager.Manager.
func (m *DocumentManager) GetRepository(_ context.Context, objectClass persistpager.ObjectClass) (persistpager.Repository[*bun.SelectQuery], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	repository, ok := m.repositories[objectClass]
	if !ok {
		return nil, &persistpager.RepositoryNotFoundError{ObjectClass: objectClass}
	}

	return repository, nil
}

// Repository builds node queries for one document class.
type Repository struct {
	manager     *DocumentManager
	objectClass persistpager.ObjectClass
	rootPath    string

	mu      sync.RWMutex
	methods persistpager.QueryBuilderMethods[*bun.SelectQuery]
}

// Method registers a query builder method applying fns to the class query.
func (r *Repository) Method(name string, fns ...func(*bun.SelectQuery) *bun.SelectQuery) *Repository {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.methods.Register(name, func(context.Context) (*bun.SelectQuery, error) {
		return r.newQuery().Apply(fns...), nil
	})

	return r
}

// QueryBuilderMethod implements persistpager.Repository.
func (r *Repository) QueryBuilderMethod(name string) (persistpager.QueryBuilderFunc[*bun.SelectQuery], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.methods.QueryBuilderMethod(name)
}

func (r *Repository) newQuery() *bun.SelectQuery {
	q := r.manager.db.NewSelect().
		Table(r.manager.table).
		Where("? = ?", bun.Ident(ClassColumn), string(r.objectClass))

	// Descendants of rootPath, matched literally.
	if r.rootPath != "" {
		prefix := r.rootPath + "/"
		q = q.Where("substr(?, 1, ?) = ?", bun.Ident(PathColumn), utf8.RuneCountInString(prefix), prefix)
	}

	return q
}

var (
	_ persistpager.Manager[*bun.SelectQuery]    = (*DocumentManager)(nil)
	_ persistpager.Repository[*bun.SelectQuery] = (*Repository)(nil)
)
