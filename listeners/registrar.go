// Package listeners attaches the per-page hooks requested by a provider
// configuration to freshly provided pagers.
package listeners

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Alp4ka/persistpager"
)

const (
	// ClearObjectManagerKey asks for the manager to be cleared after every page.
	ClearObjectManagerKey = "clear_object_manager"
	// SleepKey is a pause in microseconds taken after every page.
	SleepKey = "sleep"
)

// Clearer is implemented by managers holding per-page state, such as an
// identity map, that can be released between pages.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Registrar implements persistpager.ListenerRegistrar.
type Registrar[Q any] struct {
	logger logrus.FieldLogger
}

// Option customizes a Registrar.
type Option func(*registrarOptions)

type registrarOptions struct {
	logger logrus.FieldLogger
}

// WithLogger sets the registrar logger. The persistpager package logger is used otherwise.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *registrarOptions) {
		o.logger = logger
	}
}

func NewRegistrar[Q any](opts ...Option) *Registrar[Q] {
	options := registrarOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	return &Registrar[Q]{logger: options.logger}
}

// Register implements persistpager.ListenerRegistrar.
func (r *Registrar[Q]) Register(_ context.Context, manager persistpager.Manager[Q], pager *persistpager.Pager, cfg persistpager.Config) error {
	clearManager, err := cfg.Bool(ClearObjectManagerKey)
	if err != nil {
		return err
	}

	pause, err := cfg.Microseconds(SleepKey)
	if err != nil {
		return err
	}

	logger := r.log()

	if clearManager {
		clearer, ok := manager.(Clearer)
		if ok {
			pager.AddPageListener(func(ctx context.Context, _ persistpager.Page) error {
				return clearer.Clear(ctx)
			})
		} else {
			logger.Warnf("%s is set but the manager %T cannot be cleared", ClearObjectManagerKey, manager)
		}
	}

	if pause > 0 {
		pager.AddPageListener(func(ctx context.Context, _ persistpager.Page) error {
			return sleep(ctx, pause)
		})
	}

	pager.AddPageListener(func(_ context.Context, page persistpager.Page) error {
		logger.WithFields(logrus.Fields{
			"page":  page.Number,
			"size":  page.Size,
			"items": len(page.Items),
		}).Debug("page fetched")

		return nil
	})

	return nil
}

func (r *Registrar[Q]) log() logrus.FieldLogger {
	if r.logger != nil {
		return r.logger
	}

	return persistpager.Logger()
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ persistpager.ListenerRegistrar[any] = (*Registrar[any])(nil)
