package persistpager

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// PagerProvider produces a ready-to-use Pager for one object class.
type PagerProvider interface {
	// Provide merges override over the base configuration and builds a pager.
	Provide(ctx context.Context, override Config) (*Pager, error)
}

// AdapterFactory wraps a query builder into a backend PagerAdapter. cfg is the
// effective configuration of the current Provide call.
type AdapterFactory[Q any] func(queryBuilder Q, cfg Config) (PagerAdapter, error)

type providerOptions struct {
	defaultMethod string
	logger        logrus.FieldLogger
}

// ProviderOption customizes a Provider.
type ProviderOption func(*providerOptions)

// WithDefaultQueryBuilderMethod sets the method used when the effective
// configuration names none. An empty name removes the default.
func WithDefaultQueryBuilderMethod(method string) ProviderOption {
	return func(o *providerOptions) {
		o.defaultMethod = method
	}
}

// WithLogger sets the provider logger. The package logger is used otherwise.
func WithLogger(logger logrus.FieldLogger) ProviderOption {
	return func(o *providerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Provider runs the provide pipeline shared by all backends: merge the
// configuration, resolve manager and repository, build the query, wrap it into
// the backend adapter and a Pager, then hand everything to the listener registrar.
//
// A Provider holds no mutable state; it is as safe for concurrent use as its
// registry and repositories.
type Provider[Q any] struct {
	backend     string
	registry    ManagerRegistry[Q]
	listeners   ListenerRegistrar[Q]
	objectClass ObjectClass
	baseConfig  Config
	adapt       AdapterFactory[Q]
	options     providerOptions
}

// NewProvider validates its arguments and returns a Provider. It performs no I/O.
func NewProvider[Q any](
	backend string,
	registry ManagerRegistry[Q],
	listeners ListenerRegistrar[Q],
	objectClass ObjectClass,
	baseConfig Config,
	adapt AdapterFactory[Q],
	opts ...ProviderOption,
) (*Provider[Q], error) {
	switch {
	case registry == nil:
		return nil, errors.New("cannot create pager provider: manager registry is nil")
	case listeners == nil:
		return nil, errors.New("cannot create pager provider: listener registrar is nil")
	case objectClass == "":
		return nil, errors.New("cannot create pager provider: object class is empty")
	case adapt == nil:
		return nil, errors.New("cannot create pager provider: adapter factory is nil")
	}

	options := providerOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	return &Provider[Q]{
		backend:     backend,
		registry:    registry,
		listeners:   listeners,
		objectClass: objectClass,
		baseConfig:  baseConfig.Clone(),
		adapt:       adapt,
		options:     options,
	}, nil
}

// ObjectClass returns the class the provider pages over.
func (p *Provider[Q]) ObjectClass() ObjectClass {
	return p.objectClass
}

// Backend returns the backend name given at construction.
func (p *Provider[Q]) Backend() string {
	return p.backend
}

// BaseConfig returns a copy of the base configuration.
func (p *Provider[Q]) BaseConfig() Config {
	return p.baseConfig.Clone()
}

// Provide implements PagerProvider.
func (p *Provider[Q]) Provide(ctx context.Context, override Config) (*Pager, error) {
	cfg := p.baseConfig.Merge(override)

	manager, err := p.registry.GetManagerForClass(ctx, p.objectClass)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve manager for %q: %w", p.objectClass, err)
	}
	if lo.IsNil(manager) {
		return nil, &NoManagerFoundError{ObjectClass: p.objectClass}
	}

	repository, err := manager.GetRepository(ctx, p.objectClass)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve repository for %q: %w", p.objectClass, err)
	}
	if lo.IsNil(repository) {
		return nil, &RepositoryNotFoundError{ObjectClass: p.objectClass}
	}

	method, err := p.queryBuilderMethod(cfg)
	if err != nil {
		return nil, err
	}

	queryBuilder, err := ResolveQueryBuilder(ctx, repository, p.objectClass, method)
	if err != nil {
		return nil, err
	}

	adapter, err := p.adapt(queryBuilder, cfg)
	if err != nil {
		return nil, err
	}

	pager := NewPager(adapter)
	maxPerPage, ok, err := cfg.Int(MaxPerPageKey)
	if err != nil {
		return nil, err
	}
	if ok {
		pager.WithMaxPerPage(maxPerPage)
	}

	// Listener failures keep their identity.
	if err = p.listeners.Register(ctx, manager, pager, cfg); err != nil {
		return nil, err
	}

	p.logger().WithFields(logrus.Fields{
		"query_builder_method": method,
		"max_per_page":         pager.GetMaxPerPage(),
	}).Debug("pager provided")

	return pager, nil
}

func (p *Provider[Q]) queryBuilderMethod(cfg Config) (string, error) {
	method, err := cfg.String(QueryBuilderMethodKey)
	if err != nil {
		return "", err
	}

	if method == "" {
		method = p.options.defaultMethod
	}
	if method == "" {
		return "", &MissingConfigurationError{Key: QueryBuilderMethodKey}
	}

	return method, nil
}

func (p *Provider[Q]) logger() logrus.FieldLogger {
	logger := p.options.logger
	if logger == nil {
		logger = Logger()
	}

	return logger.WithFields(logrus.Fields{
		"backend":      p.backend,
		"object_class": p.objectClass,
	})
}

var _ PagerProvider = (*Provider[any])(nil)
