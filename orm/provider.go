// Package orm provides pagers over relational entities mapped with gorm.
package orm

import (
	"gorm.io/gorm"

	"github.com/Alp4ka/persistpager"
)

const Backend = "orm"

// PagerProvider builds pagers over gorm queries. The query builder method
// defaults to persistpager.DefaultQueryBuilderMethod.
type PagerProvider struct {
	*persistpager.Provider[*gorm.DB]
}

func NewPagerProvider(
	registry persistpager.ManagerRegistry[*gorm.DB],
	listeners persistpager.ListenerRegistrar[*gorm.DB],
	objectClass persistpager.ObjectClass,
	baseConfig persistpager.Config,
	opts ...persistpager.ProviderOption,
) (*PagerProvider, error) {
	opts = append([]persistpager.ProviderOption{
		persistpager.WithDefaultQueryBuilderMethod(persistpager.DefaultQueryBuilderMethod),
	}, opts...)

	provider, err := persistpager.NewProvider[*gorm.DB](Backend, registry, listeners, objectClass, baseConfig, adapt, opts...)
	if err != nil {
		return nil, err
	}

	return &PagerProvider{Provider: provider}, nil
}

func adapt(db *gorm.DB, cfg persistpager.Config) (persistpager.PagerAdapter, error) {
	sort, err := persistpager.SortFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	return NewAdapter(db, sort)
}

var _ persistpager.PagerProvider = (*PagerProvider)(nil)
