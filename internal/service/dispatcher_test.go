package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type ctxKey struct{}

func TestDetachedDispatcher_OutlivesCaller(t *testing.T) {
	d := NewDetachedDispatcher(zap.NewNop())
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "req-1"))

	done := make(chan error, 1)
	started := make(chan struct{})
	d.Dispatch(ctx, "job", func(ctx context.Context) error {
		close(started)
		<-time.After(10 * time.Millisecond)
		assert.Equal(t, "req-1", ctx.Value(ctxKey{}))
		done <- ctx.Err()
		return nil
	})

	<-started
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("job did not finish")
	}
}

func TestSyncDispatcher_SwallowsFailures(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	d := NewSyncDispatcher(zap.New(core))

	require.NotPanics(t, func() {
		d.Dispatch(context.Background(), "fails", func(context.Context) error {
			return &PersistenceError{Key: "t", Err: errors.New("quota")}
		})
		d.Dispatch(context.Background(), "panics", func(context.Context) error {
			panic("boom")
		})
		d.Dispatch(context.Background(), "ok", func(context.Context) error {
			return nil
		})
	})

	assert.Equal(t, 1, logs.FilterMessage("background job failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("background job panicked").Len())
	assert.Equal(t, 1, logs.FilterMessage("background job finished").Len())
}
