package webconsole

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-console/internal/usecase/console"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func setupRegistry(t *testing.T, ttl time.Duration) (*Registry, *MockRemote, *fakeClock) {
	remote := new(MockRemote)
	clk := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(remote, RegistryConfig{SessionTTL: ttl}, zaptest.NewLogger(t))
	r.now = clk.now
	t.Cleanup(r.Close)
	return r, remote, clk
}

func TestRegistry_CreateAndGet(t *testing.T) {
	r, _, _ := setupRegistry(t, time.Minute)

	s := r.Create()
	require.NotEmpty(t, s.ID)
	require.NotNil(t, s.Store)
	require.NotNil(t, s.Notices)

	got, ok := r.Get(s.ID)
	assert.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())

	_, ok = r.Get("unknown")
	assert.False(t, ok)
}

func TestRegistry_SessionsAreIsolated(t *testing.T) {
	r, _, _ := setupRegistry(t, time.Minute)

	a := r.Create()
	b := r.Create()
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotSame(t, a.Store, b.Store)
}

func TestRegistry_GetEvictsExpired(t *testing.T) {
	r, _, clk := setupRegistry(t, time.Minute)
	s := r.Create()

	clk.t = clk.t.Add(30 * time.Second)
	_, ok := r.Get(s.ID)
	require.True(t, ok, "access refreshes the idle timer")

	clk.t = clk.t.Add(45 * time.Second)
	_, ok = r.Get(s.ID)
	require.True(t, ok)

	clk.t = clk.t.Add(2 * time.Minute)
	_, ok = r.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
	assert.ErrorIs(t, s.Store.Dispatch(context.Background(), console.BeginAdd{}), console.ErrStoreClosed)
}

func TestRegistry_Sweep(t *testing.T) {
	r, _, clk := setupRegistry(t, time.Minute)
	old := r.Create()

	clk.t = clk.t.Add(50 * time.Second)
	fresh := r.Create()

	clk.t = clk.t.Add(20 * time.Second)
	assert.Equal(t, 1, r.Sweep())

	_, ok := r.Get(fresh.ID)
	assert.True(t, ok)
	_, ok = r.Get(old.ID)
	assert.False(t, ok)
}

func TestRegistry_RunClosesOnCancel(t *testing.T) {
	r, _, _ := setupRegistry(t, time.Minute)
	s := r.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.Equal(t, 0, r.Len())
	assert.ErrorIs(t, s.Store.Load(context.Background()), console.ErrStoreClosed)
}

func TestNewRegistry_DefaultTTL(t *testing.T) {
	r := NewRegistry(new(MockRemote), RegistryConfig{}, zaptest.NewLogger(t))
	assert.Equal(t, DefaultSessionTTL, r.cfg.SessionTTL)
}
