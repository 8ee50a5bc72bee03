// Package testutil holds testify mocks of the persistpager collaborators shared
// by the backend test suites.
package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/Alp4ka/persistpager"
)

// ManagerRegistryMock mocks persistpager.ManagerRegistry.
type ManagerRegistryMock[Q any] struct {
	mock.Mock
}

func (m *ManagerRegistryMock[Q]) GetManagerForClass(ctx context.Context, objectClass persistpager.ObjectClass) (persistpager.Manager[Q], error) {
	args := m.Called(ctx, objectClass)
	manager, _ := args.Get(0).(persistpager.Manager[Q])

	return manager, args.Error(1)
}

// ManagerMock mocks persistpager.Manager.
type ManagerMock[Q any] struct {
	mock.Mock
}

func (m *ManagerMock[Q]) GetRepository(ctx context.Context, objectClass persistpager.ObjectClass) (persistpager.Repository[Q], error) {
	args := m.Called(ctx, objectClass)
	repository, _ := args.Get(0).(persistpager.Repository[Q])

	return repository, args.Error(1)
}

// ListenerRegistrarMock mocks persistpager.ListenerRegistrar.
type ListenerRegistrarMock[Q any] struct {
	mock.Mock
}

func (m *ListenerRegistrarMock[Q]) Register(ctx context.Context, manager persistpager.Manager[Q], pager *persistpager.Pager, cfg persistpager.Config) error {
	args := m.Called(ctx, manager, pager, cfg)

	return args.Error(0)
}

// RepositoryStub is a repository whose methods return fixed query builders and
// count their invocations.
type RepositoryStub[Q any] struct {
	mu      sync.Mutex
	methods persistpager.QueryBuilderMethods[Q]
	calls   map[string]int
}

func NewRepositoryStub[Q any]() *RepositoryStub[Q] {
	return &RepositoryStub[Q]{
		methods: make(persistpager.QueryBuilderMethods[Q]),
		calls:   make(map[string]int),
	}
}

// Returning registers method name returning queryBuilder.
func (r *RepositoryStub[Q]) Returning(name string, queryBuilder Q) *RepositoryStub[Q] {
	return r.Failing(name, queryBuilder, nil)
}

// Failing registers method name returning queryBuilder and err.
func (r *RepositoryStub[Q]) Failing(name string, queryBuilder Q, err error) *RepositoryStub[Q] {
	r.methods.Register(name, func(context.Context) (Q, error) {
		r.mu.Lock()
		r.calls[name]++
		r.mu.Unlock()

		return queryBuilder, err
	})

	return r
}

// QueryBuilderMethod implements persistpager.Repository.
func (r *RepositoryStub[Q]) QueryBuilderMethod(name string) (persistpager.QueryBuilderFunc[Q], bool) {
	return r.methods.QueryBuilderMethod(name)
}

// Calls returns how many times method name ran.
func (r *RepositoryStub[Q]) Calls(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.calls[name]
}

var (
	_ persistpager.ManagerRegistry[any]   = (*ManagerRegistryMock[any])(nil)
	_ persistpager.Manager[any]           = (*ManagerMock[any])(nil)
	_ persistpager.ListenerRegistrar[any] = (*ListenerRegistrarMock[any])(nil)
	_ persistpager.Repository[any]        = (*RepositoryStub[any])(nil)
)
