package orm

import (
	"context"
	"database/sql/driver"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Alp4ka/persistpager"
)

func Test_NewAdapter_Rejects(t *testing.T) {
	_, db, _, err := newGORMMySQLMock()
	require.NoError(t, err)

	_, err = NewAdapter(nil, nil)
	require.ErrorIs(t, err, persistpager.ErrUnsupportedQueryBuilderType)

	_, err = NewAdapter(db.Where("name = ?", "x"), nil)
	require.ErrorIs(t, err, persistpager.ErrUnsupportedQueryBuilderType)

	_, err = NewAdapter(db.Table("users"), persistpager.Orderings{{Column: "id; drop", Direction: persistpager.DirectionASC}})
	require.Error(t, err)
	require.NotErrorIs(t, err, persistpager.ErrUnsupportedQueryBuilderType)
}

func Test_Adapter_GetNbResults(t *testing.T) {
	tests := []struct {
		name          string
		query         func(db *gorm.DB) *gorm.DB
		expectedQuery string
		expectedArgs  []driver.Value
	}{
		{
			name:          "table",
			query:         func(db *gorm.DB) *gorm.DB { return db.Table("users") },
			expectedQuery: "^SELECT count\\(\\*\\) FROM [`\"]users[`\"]$",
		},
		{
			name:          "table with condition",
			query:         func(db *gorm.DB) *gorm.DB { return db.Table("users").Where("name = ?", "lol") },
			expectedQuery: "^SELECT count\\(\\*\\) FROM [`\"]users[`\"] WHERE name = (?:\\$\\d|\\?)$",
			expectedArgs:  []driver.Value{"lol"},
		},
		{
			name:          "model",
			query:         func(db *gorm.DB) *gorm.DB { return db.Model(&tUser{}) },
			expectedQuery: "^SELECT count\\(\\*\\) FROM [`\"]t_users[`\"]$",
		},
	}

	for _, sqlMockFn := range sqlMockFnList {
		for _, tt := range tests {
			dialect, db, dbMock, err := sqlMockFn()
			t.Run(fmt.Sprintf("%s %s", dialect, tt.name), func(t *testing.T) {
				require.NoError(t, err)

				expectation := dbMock.ExpectQuery(tt.expectedQuery)
				if len(tt.expectedArgs) > 0 {
					expectation = expectation.WithArgs(tt.expectedArgs...)
				}
				expectation.WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

				adapter, err := NewAdapter(tt.query(db), nil)
				require.NoError(t, err)

				total, err := adapter.GetNbResults(context.Background())
				require.NoError(t, err)
				require.EqualValues(t, 42, total)

				assert.NoError(t, dbMock.ExpectationsWereMet())
			})
		}
	}
}

func Test_Adapter_GetSlice(t *testing.T) {
	tests := []struct {
		name          string
		sort          persistpager.Orderings
		offset        int
		length        int
		expectedQuery string
	}{
		{
			name:          "first page without sort",
			offset:        0,
			length:        5,
			expectedQuery: "^SELECT \\* FROM [`\"]users[`\"] LIMIT 5$",
		},
		{
			name:          "offset with sort",
			sort:          persistpager.Orderings{{Column: "id", Direction: persistpager.DirectionDESC}},
			offset:        6,
			length:        3,
			expectedQuery: "^SELECT \\* FROM [`\"]users[`\"] ORDER BY id DESC LIMIT 3 OFFSET 6$",
		},
		{
			name: "multiple orderings",
			sort: persistpager.Orderings{
				{Column: "name", Direction: persistpager.DirectionASC},
				{Column: "id", Direction: persistpager.DirectionDESC},
			},
			offset:        2,
			length:        2,
			expectedQuery: "^SELECT \\* FROM [`\"]users[`\"] ORDER BY name ASC, id DESC LIMIT 2 OFFSET 2$",
		},
	}

	for _, sqlMockFn := range sqlMockFnList {
		for _, tt := range tests {
			dialect, db, dbMock, err := sqlMockFn()
			t.Run(fmt.Sprintf("%s %s", dialect, tt.name), func(t *testing.T) {
				require.NoError(t, err)

				dbMock.ExpectQuery(tt.expectedQuery).
					WillReturnRows(newUserRows().AddRow(1, "John Doe").AddRow(2, "Jane Doe"))

				adapter, err := NewAdapter(db.Table("users"), tt.sort)
				require.NoError(t, err)

				items, err := adapter.GetSlice(context.Background(), tt.offset, tt.length)
				require.NoError(t, err)
				require.Len(t, items, 2)

				row, ok := items[0].(map[string]any)
				require.True(t, ok)
				require.Equal(t, "John Doe", row["name"])

				assert.NoError(t, dbMock.ExpectationsWereMet())
			})
		}
	}
}

func Test_Adapter_GetSlice_HydratesModel(t *testing.T) {
	for _, sqlMockFn := range sqlMockFnList {
		dialect, db, dbMock, err := sqlMockFn()
		t.Run(dialect, func(t *testing.T) {
			require.NoError(t, err)

			dbMock.ExpectQuery("^SELECT \\* FROM [`\"]t_users[`\"] ORDER BY id ASC LIMIT 10 OFFSET 10$").
				WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(11, "John Doe"))

			adapter, err := NewAdapter(db.Model(&tUser{}), persistpager.Orderings{{Column: "id", Direction: persistpager.DirectionASC}})
			require.NoError(t, err)

			items, err := adapter.GetSlice(context.Background(), 10, 10)
			require.NoError(t, err)
			require.Equal(t, []any{&tUser{ID: 11, Name: "John Doe"}}, items)

			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func Test_Adapter_DoesNotMutateQuery(t *testing.T) {
	_, db, dbMock, err := newGORMMySQLMock()
	require.NoError(t, err)

	dbMock.ExpectQuery("^SELECT \\* FROM `users` ORDER BY id ASC LIMIT 2$").
		WillReturnRows(newUserRows().AddRow(1, "a").AddRow(2, "b"))
	dbMock.ExpectQuery("^SELECT \\* FROM `users` ORDER BY id ASC LIMIT 2 OFFSET 2$").
		WillReturnRows(newUserRows().AddRow(3, "c"))
	dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM `users`$").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	adapter, err := NewAdapter(db.Table("users"), persistpager.Orderings{{Column: "id", Direction: persistpager.DirectionASC}})
	require.NoError(t, err)

	ctx := context.Background()
	first, err := adapter.GetSlice(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := adapter.GetSlice(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, second, 1)

	total, err := adapter.GetNbResults(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)

	assert.NoError(t, dbMock.ExpectationsWereMet())
}
