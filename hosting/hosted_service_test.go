package hosting

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingService 阻塞到 Stop 被调用
type blockingService struct {
	started atomic.Bool
	stopped atomic.Bool
	done    chan struct{}
	stopErr error
}

func newBlocking() *blockingService {
	return &blockingService{done: make(chan struct{})}
}

func (s *blockingService) Start(ctx context.Context) error {
	s.started.Store(true)
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *blockingService) Stop(context.Context) error {
	s.stopped.Store(true)
	close(s.done)
	return s.stopErr
}

type failingService struct{}

func (failingService) Start(context.Context) error { return errors.New("port in use") }
func (failingService) Stop(context.Context) error  { return nil }

func TestStartStopAll(t *testing.T) {
	m := NewHostedServiceManager(nil)
	a, b := newBlocking(), newBlocking()
	m.Add("a", a)
	m.Add("b", b)
	assert.Equal(t, 2, m.Len())

	errCh := m.StartAll(context.Background())
	assert.Eventually(t, func() bool { return a.started.Load() && b.started.Load() }, time.Second, 10*time.Millisecond)

	require.NoError(t, m.StopAll(context.Background()))
	m.Wait()
	assert.True(t, a.stopped.Load())
	assert.True(t, b.stopped.Load())
	assert.Empty(t, errCh)
}

func TestStartErrorIsReported(t *testing.T) {
	m := NewHostedServiceManager(nil)
	m.Add("web", failingService{})

	errCh := m.StartAll(context.Background())
	select {
	case err := <-errCh:
		assert.ErrorContains(t, err, "web")
		assert.ErrorContains(t, err, "port in use")
	case <-time.After(time.Second):
		t.Fatal("expected start error")
	}
}

func TestStopErrorsAreJoined(t *testing.T) {
	m := NewHostedServiceManager(nil)
	a := newBlocking()
	a.stopErr = errors.New("timeout")
	m.Add("a", a)

	m.StartAll(context.Background())
	err := m.StopAll(context.Background())
	assert.ErrorContains(t, err, "a: timeout")
	m.Wait()
}

func TestContextCancelStopsServices(t *testing.T) {
	m := NewHostedServiceManager(nil)
	m.Add("a", newBlocking())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := m.StartAll(ctx)
	cancel()
	m.Wait()
	assert.Empty(t, errCh, "context cancellation is not an error")
}
