package phpcr

import (
	"regexp"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func newBunPostgresMock() (*bun.DB, sqlmock.Sqlmock, error) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, err
	}

	return bun.NewDB(sqlDB, pgdialect.New()), mock, nil
}

// exactly matches the interpolated query bun sends.
func exactly(query string) string {
	return "^" + regexp.QuoteMeta(query) + "$"
}

func newNodeRows() *sqlmock.Rows {
	return sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("path").OfType("TEXT", ""),
		sqlmock.NewColumn("node_class").OfType("TEXT", ""),
	)
}
