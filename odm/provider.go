// Package odm provides pagers over documents of a DynamoDB single-table store.
package odm

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/Alp4ka/persistpager"
)

const Backend = "odm"

// PagerProvider builds pagers over DynamoDB query inputs. The query builder
// method defaults to persistpager.DefaultQueryBuilderMethod.
type PagerProvider struct {
	*persistpager.Provider[*dynamodb.QueryInput]
}

// NewPagerProvider returns a provider whose pagers send their queries through client.
func NewPagerProvider(
	client dynamodb.QueryAPIClient,
	registry persistpager.ManagerRegistry[*dynamodb.QueryInput],
	listeners persistpager.ListenerRegistrar[*dynamodb.QueryInput],
	objectClass persistpager.ObjectClass,
	baseConfig persistpager.Config,
	opts ...persistpager.ProviderOption,
) (*PagerProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("cannot create pager provider: dynamodb client is nil")
	}

	opts = append([]persistpager.ProviderOption{
		persistpager.WithDefaultQueryBuilderMethod(persistpager.DefaultQueryBuilderMethod),
	}, opts...)

	adapt := func(input *dynamodb.QueryInput, cfg persistpager.Config) (persistpager.PagerAdapter, error) {
		sort, err := persistpager.SortFromConfig(cfg)
		if err != nil {
			return nil, err
		}

		return NewAdapter(client, input, sort)
	}

	provider, err := persistpager.NewProvider[*dynamodb.QueryInput](Backend, registry, listeners, objectClass, baseConfig, adapt, opts...)
	if err != nil {
		return nil, err
	}

	return &PagerProvider{Provider: provider}, nil
}

var _ persistpager.PagerProvider = (*PagerProvider)(nil)
