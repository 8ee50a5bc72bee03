// Package phpcr provides pagers over documents stored as nodes of a content
// repository. Nodes live in one SQL table and are queried with bun.
package phpcr

import (
	"github.com/uptrace/bun"

	"github.com/Alp4ka/persistpager"
)

const Backend = "phpcr"

// PagerProvider builds pagers over node queries. The query builder method
// defaults to persistpager.DefaultQueryBuilderMethod.
type PagerProvider struct {
	*persistpager.Provider[*bun.SelectQuery]
}

func NewPagerProvider(
	registry persistpager.ManagerRegistry[*bun.SelectQuery],
	listeners persistpager.ListenerRegistrar[*bun.SelectQuery],
	objectClass persistpager.ObjectClass,
	baseConfig persistpager.Config,
	opts ...persistpager.ProviderOption,
) (*PagerProvider, error) {
	opts = append([]persistpager.ProviderOption{
		persistpager.WithDefaultQueryBuilderMethod(persistpager.DefaultQueryBuilderMethod),
	}, opts...)

	provider, err := persistpager.NewProvider[*bun.SelectQuery](Backend, registry, listeners, objectClass, baseConfig, adapt, opts...)
	if err != nil {
		return nil, err
	}

	return &PagerProvider{Provider: provider}, nil
}

func adapt(query *bun.SelectQuery, cfg persistpager.Config) (persistpager.PagerAdapter, error) {
	sort, err := persistpager.SortFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	return NewAdapter(query, sort)
}

var _ persistpager.PagerProvider = (*PagerProvider)(nil)
