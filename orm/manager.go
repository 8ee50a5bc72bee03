package orm

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/Alp4ka/persistpager"
)

// EntityManager binds object classes to gorm models or tables of one database.
type EntityManager struct {
	db *gorm.DB

	mu           sync.RWMutex
	repositories map[persistpager.ObjectClass]*Repository
}

func NewEntityManager(db *gorm.DB) *EntityManager {
	return &EntityManager{
		db:           db,
		repositories: make(map[persistpager.ObjectClass]*Repository),
	}
}

// BindModel maps objectClass to model, a pointer to a gorm model struct.
func (m *EntityManager) BindModel(objectClass persistpager.ObjectClass, model any) *Repository {
	return m.bind(objectClass, func(db *gorm.DB) *gorm.DB {
		return db.Model(model)
	})
}

// BindTable maps objectClass to a plain table.
func (m *EntityManager) BindTable(objectClass persistpager.ObjectClass, table string) *Repository {
	return m.bind(objectClass, func(db *gorm.DB) *gorm.DB {
		return db.Table(table)
	})
}

func (m *EntityManager) bind(objectClass persistpager.ObjectClass, source func(db *gorm.DB) *gorm.DB) *Repository {
	repository := newRepository(m.db, source)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.repositories[objectClass] = repository

	return repository
}

// Classes returns the bound object classes.
func (m *EntityManager) Classes() []persistpager.ObjectClass {
	m.mu.RLock()
	defer m.mu.RUnlock()

	classes := make([]persistpager.ObjectClass, 0, len(m.repositories))
	for objectClass := range m.repositories {
		classes = append(classes, objectClass)
	}

	return classes
}

// GetRepository implements persistpager.Manager.
func (m *EntityManager) GetRepository(_ context.Context, objectClass persistpager.ObjectClass) (persistpager.Repository[*gorm.DB], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	repository, ok := m.repositories[objectClass]
	if !ok {
		return nil, &persistpager.RepositoryNotFoundError{ObjectClass: objectClass}
	}

	return repository, nil
}

// Repository holds the query builder methods of one entity.
type Repository struct {
	db     *gorm.DB
	source func(db *gorm.DB) *gorm.DB

	mu      sync.RWMutex
	methods persistpager.QueryBuilderMethods[*gorm.DB]
}

func newRepository(db *gorm.DB, source func(db *gorm.DB) *gorm.DB) *Repository {
	r := &Repository{
		db:      db,
		source:  source,
		methods: make(persistpager.QueryBuilderMethods[*gorm.DB]),
	}

	return r.Method(persistpager.DefaultQueryBuilderMethod)
}

// Method registers a query builder method applying scopes to the entity query,
// the way gorm's Scopes does.
func (r *Repository) Method(name string, scopes ...func(*gorm.DB) *gorm.DB) *Repository {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.methods.Register(name, func(ctx context.Context) (*gorm.DB, error) {
		db := r.source(r.db.WithContext(ctx))
		if len(scopes) > 0 {
			db = db.Scopes(scopes...)
		}

		return db, db.Error
	})

	return r
}

// QueryBuilderMethod implements persistpager.Repository.
func (r *Repository) QueryBuilderMethod(name string) (persistpager.QueryBuilderFunc[*gorm.DB], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.methods.QueryBuilderMethod(name)
}

var (
	_ persistpager.Manager[*gorm.DB]    = (*EntityManager)(nil)
	_ persistpager.Repository[*gorm.DB] = (*Repository)(nil)
)
