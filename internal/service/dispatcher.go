package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Dispatcher runs background work the caller never waits for. Whatever the
// job returns is logged and then dropped.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, job func(ctx context.Context) error)
}

// DetachedDispatcher starts every job on its own goroutine. The job context
// keeps the request's values but is never cancelled, so work outlives the
// response that triggered it.
type DetachedDispatcher struct {
	log *zap.Logger
}

func NewDetachedDispatcher(log *zap.Logger) *DetachedDispatcher {
	return &DetachedDispatcher{log: log}
}

func (d *DetachedDispatcher) Dispatch(ctx context.Context, name string, job func(ctx context.Context) error) {
	detached := context.WithoutCancel(ctx)

	go run(detached, d.log, name, job)
}

// SyncDispatcher runs the job inline with the same failure boundary as
// DetachedDispatcher. Tests use it to observe background effects.
type SyncDispatcher struct {
	log *zap.Logger
}

func NewSyncDispatcher(log *zap.Logger) *SyncDispatcher {
	return &SyncDispatcher{log: log}
}

func (d *SyncDispatcher) Dispatch(ctx context.Context, name string, job func(ctx context.Context) error) {
	run(context.WithoutCancel(ctx), d.log, name, job)
}

func run(ctx context.Context, log *zap.Logger, name string, job func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("background job panicked", zap.String("job", name), zap.Error(fmt.Errorf("%v", r)))
		}
	}()

	if err := job(ctx); err != nil {
		log.Error("background job failed", zap.String("job", name), zap.Error(err))
		return
	}

	log.Debug("background job finished", zap.String("job", name))
}
