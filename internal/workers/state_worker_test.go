package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) Sweep() int {
	s.calls.Add(1)
	return 1
}

func TestStateWorker_SweepsUntilCancelled(t *testing.T) {
	sw := &countingSweeper{}
	ctx, cancel := context.WithCancel(context.Background())

	NewStateWorker(sw, 5*time.Millisecond).Start(ctx)

	assert.Eventually(t, func() bool { return sw.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	time.Sleep(20 * time.Millisecond)
	stopped := sw.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, sw.calls.Load())
}

func TestNewStateWorker_DefaultInterval(t *testing.T) {
	w := NewStateWorker(&countingSweeper{}, 0)
	assert.Equal(t, 10*time.Minute, w.interval)
}
