package orm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Alp4ka/persistpager"
	"github.com/Alp4ka/persistpager/internal/testutil"
)

const userClass persistpager.ObjectClass = "App\\Entity\\User"

func newRegistry(db *gorm.DB) (*persistpager.StaticManagerRegistry[*gorm.DB], *EntityManager) {
	em := NewEntityManager(db)
	em.BindTable(userClass, "users").
		Method("createActiveQueryBuilder", func(db *gorm.DB) *gorm.DB {
			return db.Where("active = ?", true)
		})

	return persistpager.NewStaticManagerRegistry[*gorm.DB]().Register(em, userClass), em
}

func Test_PagerProvider_DefaultQueryBuilderMethod(t *testing.T) {
	for _, sqlMockFn := range sqlMockFnList {
		dialect, db, dbMock, err := sqlMockFn()
		t.Run(dialect, func(t *testing.T) {
			require.NoError(t, err)

			registry, em := newRegistry(db)
			listeners := new(testutil.ListenerRegistrarMock[*gorm.DB])
			listeners.On("Register", mock.Anything, em, mock.AnythingOfType("*persistpager.Pager"), persistpager.Config{
				persistpager.MaxPerPageKey: 2,
				persistpager.SortKey:       []string{"id desc"},
			}).Return(nil).Once()
			defer listeners.AssertExpectations(t)

			provider, err := NewPagerProvider(registry, listeners, userClass, persistpager.Config{persistpager.MaxPerPageKey: 2})
			require.NoError(t, err)

			pager, err := provider.Provide(context.Background(), persistpager.Config{persistpager.SortKey: []string{"id desc"}})
			require.NoError(t, err)
			require.IsType(t, &Adapter{}, pager.GetAdapter())

			dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM [`\"]users[`\"]$").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
			dbMock.ExpectQuery("^SELECT \\* FROM [`\"]users[`\"] ORDER BY id DESC LIMIT 2 OFFSET 2$").
				WillReturnRows(newUserRows().AddRow(1, "John Doe"))

			nbPages, err := pager.GetNbPages(context.Background())
			require.NoError(t, err)
			require.Equal(t, 2, nbPages)

			items, err := pager.WithCurrentPage(2).GetCurrentPageResults(context.Background())
			require.NoError(t, err)
			require.Len(t, items, 1)

			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func Test_PagerProvider_CustomQueryBuilderMethod(t *testing.T) {
	for _, sqlMockFn := range sqlMockFnList {
		dialect, db, dbMock, err := sqlMockFn()
		t.Run(dialect, func(t *testing.T) {
			require.NoError(t, err)

			registry, _ := newRegistry(db)
			provider, err := NewPagerProvider(registry, persistpager.NopListenerRegistrar[*gorm.DB]{}, userClass, persistpager.Config{
				persistpager.QueryBuilderMethodKey: "createActiveQueryBuilder",
			})
			require.NoError(t, err)

			pager, err := provider.Provide(context.Background(), nil)
			require.NoError(t, err)

			dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM [`\"]users[`\"] WHERE active = (?:\\$\\d|\\?)$").
				WithArgs(true).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

			total, err := pager.GetNbResults(context.Background())
			require.NoError(t, err)
			require.EqualValues(t, 7, total)

			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func Test_PagerProvider_Failures(t *testing.T) {
	_, db, _, err := newGORMMySQLMock()
	require.NoError(t, err)

	registry, _ := newRegistry(db)
	nop := persistpager.NopListenerRegistrar[*gorm.DB]{}

	tests := []struct {
		name        string
		registry    persistpager.ManagerRegistry[*gorm.DB]
		objectClass persistpager.ObjectClass
		override    persistpager.Config
		wantErr     error
	}{
		{
			name:        "no manager",
			registry:    registry,
			objectClass: "App\\Entity\\Unknown",
			wantErr:     persistpager.ErrNoManagerFound,
		},
		{
			name:        "unknown method",
			registry:    registry,
			objectClass: userClass,
			override:    persistpager.Config{persistpager.QueryBuilderMethodKey: "createMissingQueryBuilder"},
			wantErr:     persistpager.ErrUnknownMethod,
		},
		{
			name: "query without model or table",
			registry: persistpager.ManagerRegistryFunc[*gorm.DB](func(context.Context, persistpager.ObjectClass) (persistpager.Manager[*gorm.DB], error) {
				return managerFunc(func(context.Context, persistpager.ObjectClass) (persistpager.Repository[*gorm.DB], error) {
					return persistpager.QueryBuilderMethods[*gorm.DB]{}.Register(persistpager.DefaultQueryBuilderMethod, func(context.Context) (*gorm.DB, error) {
						return db.Where("1 = 1"), nil
					}), nil
				}), nil
			}),
			objectClass: userClass,
			wantErr:     persistpager.ErrUnsupportedQueryBuilderType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewPagerProvider(tt.registry, nop, tt.objectClass, nil)
			require.NoError(t, err)

			pager, err := provider.Provide(context.Background(), tt.override)
			require.Nil(t, pager)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func Test_PagerProvider_ListenerErrorPropagates(t *testing.T) {
	_, db, _, err := newGORMPostgresMock()
	require.NoError(t, err)

	registry, _ := newRegistry(db)
	failure := errors.New("listener failed")
	listeners := persistpager.ListenerRegistrarFunc[*gorm.DB](func(context.Context, persistpager.Manager[*gorm.DB], *persistpager.Pager, persistpager.Config) error {
		return failure
	})

	provider, err := NewPagerProvider(registry, listeners, userClass, nil)
	require.NoError(t, err)

	_, err = provider.Provide(context.Background(), nil)
	require.Same(t, failure, err)
}

func Test_EntityManager_RepositoryNotFound(t *testing.T) {
	_, db, _, err := newGORMMySQLMock()
	require.NoError(t, err)

	em := NewEntityManager(db)
	em.BindModel("User", &tUser{})

	_, err = em.GetRepository(context.Background(), "Article")
	var notFound *persistpager.RepositoryNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, persistpager.ObjectClass("Article"), notFound.ObjectClass)
	require.ElementsMatch(t, []persistpager.ObjectClass{"User"}, em.Classes())

	repository, err := em.GetRepository(context.Background(), "User")
	require.NoError(t, err)

	fn, ok := repository.QueryBuilderMethod(persistpager.DefaultQueryBuilderMethod)
	require.True(t, ok)

	query, err := fn(context.Background())
	require.NoError(t, err)
	require.Equal(t, &tUser{}, query.Statement.Model, fmt.Sprintf("%T", query.Statement.Model))
}

type managerFunc func(ctx context.Context, objectClass persistpager.ObjectClass) (persistpager.Repository[*gorm.DB], error)

func (f managerFunc) GetRepository(ctx context.Context, objectClass persistpager.ObjectClass) (persistpager.Repository[*gorm.DB], error) {
	return f(ctx, objectClass)
}
