package odm

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Alp4ka/persistpager"
	"github.com/Alp4ka/persistpager/internal/testutil"
)

const articleClass persistpager.ObjectClass = "Article"

func newRegistry() (*persistpager.StaticManagerRegistry[*dynamodb.QueryInput], *DocumentManager) {
	dm := NewDocumentManager("documents", "EntityTypeIndex")
	dm.Bind(articleClass, "").
		Method("createPublishedQueryBuilder", func(in *dynamodb.QueryInput) {
			in.FilterExpression = aws.String("Published = :p")
			in.ExpressionAttributeValues[":p"] = &types.AttributeValueMemberBOOL{Value: true}
		})

	return persistpager.NewStaticManagerRegistry[*dynamodb.QueryInput]().Register(dm, articleClass), dm
}

func Test_PagerProvider_DefaultQueryBuilderMethod(t *testing.T) {
	client := newFakeQueryClient(5, 10)
	registry, dm := newRegistry()

	listeners := new(testutil.ListenerRegistrarMock[*dynamodb.QueryInput])
	listeners.On("Register", mock.Anything, dm, mock.AnythingOfType("*persistpager.Pager"), persistpager.Config{
		persistpager.MaxPerPageKey: 2,
	}).Return(nil).Once()
	defer listeners.AssertExpectations(t)

	provider, err := NewPagerProvider(client, registry, listeners, articleClass, persistpager.Config{persistpager.MaxPerPageKey: 2})
	require.NoError(t, err)

	pager, err := provider.Provide(context.Background(), nil)
	require.NoError(t, err)

	adapter, ok := pager.GetAdapter().(*Adapter)
	require.True(t, ok)

	input := adapter.Input()
	require.Equal(t, "documents", aws.ToString(input.TableName))
	require.Equal(t, "EntityTypeIndex", aws.ToString(input.IndexName))
	require.Equal(t, map[string]string{"#t": DefaultTypeAttribute}, input.ExpressionAttributeNames)
	require.Equal(t, &types.AttributeValueMemberS{Value: "Article"}, input.ExpressionAttributeValues[":t"])
	require.Nil(t, input.FilterExpression)

	var pages [][]any
	err = pager.Walk(context.Background(), func(page persistpager.Page) error {
		pages = append(pages, page.Items)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, pages, 3)
	require.Len(t, pages[2], 1)
}

func Test_PagerProvider_CustomQueryBuilderMethod(t *testing.T) {
	client := newFakeQueryClient(1, 10)
	registry, _ := newRegistry()

	provider, err := NewPagerProvider(client, registry, persistpager.NopListenerRegistrar[*dynamodb.QueryInput]{}, articleClass, persistpager.Config{
		persistpager.QueryBuilderMethodKey: "createPublishedQueryBuilder",
	})
	require.NoError(t, err)

	pager, err := provider.Provide(context.Background(), persistpager.Config{persistpager.SortKey: []string{"CreatedAt asc"}})
	require.NoError(t, err)

	input := pager.GetAdapter().(*Adapter).Input()
	require.Equal(t, "Published = :p", aws.ToString(input.FilterExpression))
	require.True(t, aws.ToBool(input.ScanIndexForward))
}

func Test_PagerProvider_Failures(t *testing.T) {
	client := newFakeQueryClient(0, 1)
	registry, _ := newRegistry()
	nop := persistpager.NopListenerRegistrar[*dynamodb.QueryInput]{}

	_, err := NewPagerProvider(nil, registry, nop, articleClass, nil)
	require.Error(t, err)

	provider, err := NewPagerProvider(client, registry, nop, "Comment", nil)
	require.NoError(t, err)
	_, err = provider.Provide(context.Background(), nil)
	require.ErrorIs(t, err, persistpager.ErrNoManagerFound)

	provider, err = NewPagerProvider(client, registry, nop, articleClass, nil)
	require.NoError(t, err)
	_, err = provider.Provide(context.Background(), persistpager.Config{persistpager.QueryBuilderMethodKey: "findBy"})
	require.ErrorIs(t, err, persistpager.ErrUnknownMethod)

	dm := NewDocumentManager("", "")
	dm.Bind(articleClass, "")
	provider, err = NewPagerProvider(client, persistpager.NewStaticManagerRegistry[*dynamodb.QueryInput]().Register(dm, articleClass), nop, articleClass, nil)
	require.NoError(t, err)
	_, err = provider.Provide(context.Background(), nil)
	require.ErrorIs(t, err, persistpager.ErrUnsupportedQueryBuilderType)
}
