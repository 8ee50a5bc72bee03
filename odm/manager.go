package odm

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Alp4ka/persistpager"
)

// DefaultTypeAttribute is the attribute holding the document class of an item.
const DefaultTypeAttribute = "EntityType"

// DocumentManager maps document classes onto one DynamoDB table. Documents of
// every class share the table; a global secondary index keyed by the type
// attribute selects the documents of one class.
type DocumentManager struct {
	table         string
	typeIndex     string
	typeAttribute string

	mu           sync.RWMutex
	repositories map[persistpager.ObjectClass]*Repository
}

// NewDocumentManager returns a manager over table. typeIndex names the GSI
// partitioned by DefaultTypeAttribute; an empty index queries the table key.
func NewDocumentManager(table, typeIndex string) *DocumentManager {
	return &DocumentManager{
		table:         table,
		typeIndex:     typeIndex,
		typeAttribute: DefaultTypeAttribute,
		repositories:  make(map[persistpager.ObjectClass]*Repository),
	}
}

// WithTypeAttribute overrides DefaultTypeAttribute.
func (m *DocumentManager) WithTypeAttribute(attribute string) *DocumentManager {
	if attribute != "" {
		m.typeAttribute = attribute
	}

	return m
}

// Bind registers objectClass. entityType is the value stored in the type
// attribute; the object class itself is used when it is empty.
func (m *DocumentManager) Bind(objectClass persistpager.ObjectClass, entityType string) *Repository {
	if entityType == "" {
		entityType = string(objectClass)
	}

	repository := &Repository{
		manager:    m,
		entityType: entityType,
		methods:    make(persistpager.QueryBuilderMethods[*dynamodb.QueryInput]),
	}
	repository.Method(persistpager.DefaultQueryBuilderMethod)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.repositories[objectClass] = repository

	return repository
}

// GetRepository implements persistpager.Manager.
func (m *DocumentManager) GetRepository(_ context.Context, objectClass persistpager.ObjectClass) (persistpager.Repository[*dynamodb.QueryInput], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	repository, ok := m.repositories[objectClass]
	if !ok {
		return nil, &persistpager.RepositoryNotFoundError{ObjectClass: objectClass}
	}

	return repository, nil
}

// Repository builds query inputs for one document class.
type Repository struct {
	manager    *DocumentManager
	entityType string

	mu      sync.RWMutex
	methods persistpager.QueryBuilderMethods[*dynamodb.QueryInput]
}

// Method registers a query builder method. Each fn refines the class query,
// typically by setting a filter expression.
func (r *Repository) Method(name string, fns ...func(*dynamodb.QueryInput)) *Repository {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.methods.Register(name, func(context.Context) (*dynamodb.QueryInput, error) {
		input := r.newInput()
		for _, fn := range fns {
			fn(input)
		}

		return input, nil
	})

	return r
}

// QueryBuilderMethod implements persistpager.Repository.
func (r *Repository) QueryBuilderMethod(name string) (persistpager.QueryBuilderFunc[*dynamodb.QueryInput], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.methods.QueryBuilderMethod(name)
}

func (r *Repository) newInput() *dynamodb.QueryInput {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.manager.table),
		KeyConditionExpression: aws.String("#t = :t"),
		ExpressionAttributeNames: map[string]string{
			"#t": r.manager.typeAttribute,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: r.entityType},
		},
	}
	if r.manager.typeIndex != "" {
		input.IndexName = aws.String(r.manager.typeIndex)
	}

	return input
}

var (
	_ persistpager.Manager[*dynamodb.QueryInput]    = (*DocumentManager)(nil)
	_ persistpager.Repository[*dynamodb.QueryInput] = (*Repository)(nil)
)
