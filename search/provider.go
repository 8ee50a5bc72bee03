// Package search provides pagers over documents of a search engine index.
//
// Unlike the other backends there is no default query builder method: the
// provider configuration must name one in query_builder_method.
package search

import (
	"fmt"

	"github.com/Alp4ka/persistpager"
)

const Backend = "search"

type PagerProvider struct {
	*persistpager.Provider[*Query]
}

// NewPagerProvider returns a provider whose pagers search through searcher.
func NewPagerProvider(
	searcher Searcher,
	registry persistpager.ManagerRegistry[*Query],
	listeners persistpager.ListenerRegistrar[*Query],
	objectClass persistpager.ObjectClass,
	baseConfig persistpager.Config,
	opts ...persistpager.ProviderOption,
) (*PagerProvider, error) {
	if searcher == nil {
		return nil, fmt.Errorf("cannot create pager provider: searcher is nil")
	}

	adapt := func(query *Query, cfg persistpager.Config) (persistpager.PagerAdapter, error) {
		sort, err := persistpager.SortFromConfig(cfg)
		if err != nil {
			return nil, err
		}

		return NewAdapter(searcher, query, sort)
	}

	provider, err := persistpager.NewProvider[*Query](Backend, registry, listeners, objectClass, baseConfig, adapt, opts...)
	if err != nil {
		return nil, err
	}

	return &PagerProvider{Provider: provider}, nil
}

var _ persistpager.PagerProvider = (*PagerProvider)(nil)
