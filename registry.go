package persistpager

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ObjectClass names a persisted entity or document type.
type ObjectClass string

// ManagerRegistry resolves the persistence manager owning an object class.
//
// Implementations return a nil Manager and a nil error when the class is not
// managed; providers turn that into a NoManagerFoundError.
type ManagerRegistry[Q any] interface {
	GetManagerForClass(ctx context.Context, objectClass ObjectClass) (Manager[Q], error)
}

// Manager is a persistence context of one backend.
type Manager[Q any] interface {
	GetRepository(ctx context.Context, objectClass ObjectClass) (Repository[Q], error)
}

// Repository exposes named, zero-argument query builder methods.
type Repository[Q any] interface {
	// QueryBuilderMethod looks a method up by name.
	QueryBuilderMethod(name string) (QueryBuilderFunc[Q], bool)
}

// ManagerRegistryFunc adapts a function to ManagerRegistry.
type ManagerRegistryFunc[Q any] func(ctx context.Context, objectClass ObjectClass) (Manager[Q], error)

func (f ManagerRegistryFunc[Q]) GetManagerForClass(ctx context.Context, objectClass ObjectClass) (Manager[Q], error) {
	return f(ctx, objectClass)
}

// StaticManagerRegistry is a map-backed ManagerRegistry populated at startup.
type StaticManagerRegistry[Q any] struct {
	mu       sync.RWMutex
	managers map[ObjectClass]Manager[Q]
}

func NewStaticManagerRegistry[Q any]() *StaticManagerRegistry[Q] {
	return &StaticManagerRegistry[Q]{
		managers: make(map[ObjectClass]Manager[Q]),
	}
}

// Register binds manager to every given object class, replacing previous bindings.
func (r *StaticManagerRegistry[Q]) Register(manager Manager[Q], objectClasses ...ObjectClass) *StaticManagerRegistry[Q] {
	if r == nil {
		r = NewStaticManagerRegistry[Q]()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.managers == nil {
		r.managers = make(map[ObjectClass]Manager[Q])
	}
	for _, objectClass := range objectClasses {
		r.managers[objectClass] = manager
	}

	return r
}

// GetManagerForClass implements ManagerRegistry.
func (r *StaticManagerRegistry[Q]) GetManagerForClass(_ context.Context, objectClass ObjectClass) (Manager[Q], error) {
	if r == nil {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.managers[objectClass], nil
}

// Classes returns the registered object classes in lexical order.
func (r *StaticManagerRegistry[Q]) Classes() []ObjectClass {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]ObjectClass, 0, len(r.managers))
	for objectClass := range r.managers {
		result = append(result, objectClass)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i] < result[j]
	})

	return result
}

// RepositoryNotFoundError is returned by the bundled managers when asked for a
// class they hold no repository for.
type RepositoryNotFoundError struct {
	ObjectClass ObjectClass
}

func (e *RepositoryNotFoundError) Error() string {
	return fmt.Sprintf("no repository bound for object class %q", e.ObjectClass)
}

var (
	_ ManagerRegistry[any] = (*StaticManagerRegistry[any])(nil)
	_ ManagerRegistry[any] = ManagerRegistryFunc[any](nil)
)
