package odm

import (
	"context"
	"fmt"
	"math"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Alp4ka/persistpager"
)

// Adapter pages over a DynamoDB query. DynamoDB has no offset: a slice walks
// the result pages from the start and skips the first offset items.
//
// The wrapped input is copied before every request and never modified.
type Adapter struct {
	client dynamodb.QueryAPIClient
	input  *dynamodb.QueryInput
}

// NewAdapter validates input. The only ordering DynamoDB knows is the sort key
// traversal order, so sort may hold at most one entry and only its direction
// is used.
func NewAdapter(client dynamodb.QueryAPIClient, input *dynamodb.QueryInput, sort persistpager.Orderings) (*Adapter, error) {
	switch {
	case client == nil:
		return nil, fmt.Errorf("dynamodb client is nil")
	case input == nil:
		return nil, persistpager.NewUnsupportedQueryBuilderTypeError(Backend, input, "nil query input")
	case aws.ToString(input.TableName) == "":
		return nil, persistpager.NewUnsupportedQueryBuilderTypeError(Backend, input, "query input has no table name")
	case aws.ToString(input.KeyConditionExpression) == "":
		return nil, persistpager.NewUnsupportedQueryBuilderTypeError(Backend, input, "query input has no key condition")
	}

	if err := sort.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sort: %w", err)
	}
	if len(sort) > 1 {
		return nil, fmt.Errorf("invalid sort: dynamodb orders by the sort key only, got %d orderings", len(sort))
	}

	in := *input
	if len(sort) == 1 {
		in.ScanIndexForward = aws.Bool(sort[0].Direction.IsAscending())
	}

	return &Adapter{
		client: client,
		input:  &in,
	}, nil
}

// Input returns a copy of the query input the adapter sends.
func (a *Adapter) Input() *dynamodb.QueryInput {
	in := *a.input
	return &in
}

// GetNbResults implements persistpager.PagerAdapter.
func (a *Adapter) GetNbResults(ctx context.Context) (int64, error) {
	in := *a.input
	in.Select = types.SelectCount
	in.ProjectionExpression = nil
	in.ExclusiveStartKey = nil

	var total int64

	paginator := dynamodb.NewQueryPaginator(a.client, &in)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("query error: %w", err)
		}

		total += int64(out.Count)
	}

	return total, nil
}

// GetSlice implements persistpager.PagerAdapter.
func (a *Adapter) GetSlice(ctx context.Context, offset, length int) ([]any, error) {
	if length <= 0 {
		return []any{}, nil
	}

	in := *a.input
	in.ExclusiveStartKey = nil
	if in.Limit == nil {
		in.Limit = aws.Int32(int32(min(offset+length, math.MaxInt32)))
	}

	var (
		skipped int
		items   = make([]any, 0, length)
	)

	paginator := dynamodb.NewQueryPaginator(a.client, &in)
	for paginator.HasMorePages() && len(items) < length {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query error: %w", err)
		}

		for _, item := range out.Items {
			if skipped < offset {
				skipped++
				continue
			}

			var generic map[string]interface{}
			if err = attributevalue.UnmarshalMap(item, &generic); err != nil {
				return nil, fmt.Errorf("failed to unmarshal item: %w", err)
			}
			items = append(items, generic)

			if len(items) == length {
				break
			}
		}
	}

	return items, nil
}

var _ persistpager.PagerAdapter = (*Adapter)(nil)
