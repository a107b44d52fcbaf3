package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/profile-lookup/internal/model"
	"github.com/sakif/profile-lookup/internal/render"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRegistry(t *testing.T, fetcher *fakeFetcher, ttl time.Duration) (*Registry, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := NewRegistry(Deps{
		Cache:   newFakeCache(),
		Fetcher: fetcher,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, ttl)
	r.now = clock.Now
	t.Cleanup(r.Close)
	return r, clock
}

func TestRegistry_GetCreatesOnce(t *testing.T) {
	r, _ := newTestRegistry(t, &fakeFetcher{}, time.Minute)

	a := r.Get("a")
	assert.Same(t, a, r.Get("a"))
	assert.NotSame(t, a, r.Get("b"))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, render.StatusDisabled, a.State.Status())
}

func TestRegistry_SessionsAreIndependent(t *testing.T) {
	r, _ := newTestRegistry(t, &fakeFetcher{}, time.Minute)

	a, b := r.Get("a"), r.Get("b")
	a.Input("!!!")
	b.Input("octocat")

	assert.Equal(t, render.StatusDisabled, a.State.Status())
	assert.Equal(t, render.StatusReady, b.State.Status())
	assert.Equal(t, "!!!", a.State.Snapshot().Input)
	assert.Equal(t, "octocat", b.State.Snapshot().Input)
}

func TestSession_Lookup(t *testing.T) {
	fetcher := &fakeFetcher{profile: &model.Profile{Login: "octocat"}}
	r, _ := newTestRegistry(t, fetcher, time.Minute)

	res := r.Get("a").Lookup(context.Background(), "octocat")

	assert.True(t, res.Accepted)
	assert.Equal(t, SourceNetwork, res.Source)
	assert.Equal(t, "octocat", r.Get("a").State.Snapshot().Card.Login)
}

func TestRegistry_SweepEvictsIdle(t *testing.T) {
	r, clock := newTestRegistry(t, &fakeFetcher{}, time.Minute)

	r.Get("old")
	clock.Advance(45 * time.Second)
	r.Get("fresh")
	clock.Advance(30 * time.Second)

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())

	fresh := r.Get("fresh")
	assert.Equal(t, 1, r.Len(), "fresh survived the sweep")
	assert.NotNil(t, fresh)
}

func TestRegistry_SweepKeepsBusySessions(t *testing.T) {
	fetcher := &fakeFetcher{
		profile: &model.Profile{Login: "octocat"},
		entered: make(chan struct{}, 1),
		gate:    make(chan struct{}),
	}
	r, clock := newTestRegistry(t, fetcher, time.Minute)

	s := r.Get("busy")
	s.Input("octocat")
	done := make(chan Result, 1)
	go func() { done <- s.Controller.Submit(context.Background()) }()
	<-fetcher.entered

	clock.Advance(time.Hour)
	assert.Equal(t, 0, r.Sweep())
	assert.Equal(t, 1, r.Len())

	close(fetcher.gate)
	<-done
	assert.Equal(t, 1, r.Sweep())
}

func TestRegistry_GetSweepsPeriodically(t *testing.T) {
	r, clock := newTestRegistry(t, &fakeFetcher{}, time.Minute)

	r.Get("stale")
	clock.Advance(time.Hour)

	for i := 0; i < sweepEvery; i++ {
		r.Get("live")
	}
	require.Equal(t, 1, r.Len())
	assert.Same(t, r.Get("live"), r.Get("live"))
}

func TestRegistry_LookupOnce(t *testing.T) {
	fetcher := &fakeFetcher{profile: &model.Profile{Login: "octocat"}}
	r, _ := newTestRegistry(t, fetcher, time.Minute)

	res := r.LookupOnce(context.Background(), "Octocat")
	require.Nil(t, res.Err)
	assert.Equal(t, SourceNetwork, res.Source)
	assert.Equal(t, "octocat", res.Profile.Login)
	assert.Zero(t, r.Len(), "no session is created")

	res = r.LookupOnce(context.Background(), "octocat")
	assert.Equal(t, SourceCache, res.Source, "the cache is shared")
	assert.Equal(t, 1, fetcher.Calls())

	res = r.LookupOnce(context.Background(), "-bad")
	require.NotNil(t, res.Err)
	assert.Equal(t, "Github username is not valid.", res.Err.Message)
}

func TestRegistry_DefaultTTL(t *testing.T) {
	r := NewRegistry(Deps{}, 0)
	assert.Equal(t, DefaultSessionTTL, r.ttl)
}
