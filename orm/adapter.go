package orm

import (
	"context"
	"fmt"
	"reflect"

	"gorm.io/gorm"

	"github.com/Alp4ka/persistpager"
)

// Adapter pages over a gorm query. The wrapped query is never modified: every
// call runs on a fresh session derived from it.
//
// Results are hydrated into the statement model type when the query has a
// model, and into map[string]any rows otherwise.
type Adapter struct {
	db   *gorm.DB
	sort persistpager.Orderings
}

// NewAdapter validates db and sort. db must carry a model or a table.
func NewAdapter(db *gorm.DB, sort persistpager.Orderings) (*Adapter, error) {
	if db == nil || db.Statement == nil {
		return nil, persistpager.NewUnsupportedQueryBuilderTypeError(Backend, db, "nil query")
	}
	if db.Error != nil {
		return nil, fmt.Errorf("query builder carries an error: %w", db.Error)
	}
	if db.Statement.Model == nil && db.Statement.Table == "" {
		return nil, persistpager.NewUnsupportedQueryBuilderTypeError(Backend, db, "query has neither model nor table")
	}

	if err := sort.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sort: %w", err)
	}

	return &Adapter{
		db:   db,
		sort: sort,
	}, nil
}

// Query returns the wrapped query.
func (a *Adapter) Query() *gorm.DB {
	return a.db
}

// GetNbResults implements persistpager.PagerAdapter.
func (a *Adapter) GetNbResults(ctx context.Context) (int64, error) {
	var total int64

	err := a.session(ctx).Count(&total).Error
	if err != nil {
		return 0, err
	}

	return total, nil
}

// GetSlice implements persistpager.PagerAdapter.
func (a *Adapter) GetSlice(ctx context.Context, offset, length int) ([]any, error) {
	db := a.session(ctx)
	if len(a.sort) > 0 {
		db = db.Order(a.sort.ToSQL())
	}
	if offset > 0 {
		db = db.Offset(offset)
	}
	db = db.Limit(length)

	if model := a.db.Statement.Model; model != nil {
		return a.findModels(db, model)
	}

	var rows []map[string]any
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]any, 0, len(rows))
	for _, row := range rows {
		items = append(items, row)
	}

	return items, nil
}

func (a *Adapter) findModels(db *gorm.DB, model any) ([]any, error) {
	elemType := reflect.TypeOf(model)
	if elemType.Kind() != reflect.Pointer {
		elemType = reflect.PointerTo(elemType)
	}

	dest := reflect.New(reflect.SliceOf(elemType))
	if err := db.Find(dest.Interface()).Error; err != nil {
		return nil, err
	}

	slice := dest.Elem()
	items := make([]any, slice.Len())
	for i := range items {
		items[i] = slice.Index(i).Interface()
	}

	return items, nil
}

func (a *Adapter) session(ctx context.Context) *gorm.DB {
	return a.db.Session(&gorm.Session{Context: ctx})
}

var _ persistpager.PagerAdapter = (*Adapter)(nil)
