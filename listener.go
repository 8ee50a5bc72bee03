package persistpager

import "context"

// ListenerRegistrar attaches listeners around a freshly provided pager. It is
// called once per Provide with the resolved manager and the effective config.
type ListenerRegistrar[Q any] interface {
	Register(ctx context.Context, manager Manager[Q], pager *Pager, cfg Config) error
}

// ListenerRegistrarFunc adapts a function to ListenerRegistrar.
type ListenerRegistrarFunc[Q any] func(ctx context.Context, manager Manager[Q], pager *Pager, cfg Config) error

func (f ListenerRegistrarFunc[Q]) Register(ctx context.Context, manager Manager[Q], pager *Pager, cfg Config) error {
	return f(ctx, manager, pager, cfg)
}

// NopListenerRegistrar registers nothing.
type NopListenerRegistrar[Q any] struct{}

func (NopListenerRegistrar[Q]) Register(context.Context, Manager[Q], *Pager, Config) error {
	return nil
}

var (
	_ ListenerRegistrar[any] = ListenerRegistrarFunc[any](nil)
	_ ListenerRegistrar[any] = NopListenerRegistrar[any]{}
)
