package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingSweeper struct {
	calls chan struct{}
}

func (r *recordingSweeper) Sweep() int {
	select {
	case r.calls <- struct{}{}:
	default:
	}
	return 1
}

func TestAttachmentJanitor_SweepsPeriodically(t *testing.T) {
	sweeper := &recordingSweeper{calls: make(chan struct{}, 1)}
	janitor, err := NewAttachmentJanitor(sweeper, 5*time.Millisecond)
	assert.NoError(t, err)

	ctx, cancelFn := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- janitor.Start(ctx)
	}()

	select {
	case <-sweeper.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor never swept")
	}

	cancelFn()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}
