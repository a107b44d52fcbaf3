package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/profile-lookup/internal/apperror"
	"github.com/sakif/profile-lookup/internal/model"
	"github.com/sakif/profile-lookup/internal/render"
)

// Fetcher retrieves a profile from the remote API.
type Fetcher interface {
	FetchUser(ctx context.Context, handle string) (*model.Profile, error)
}

// ProfileCache stores profiles and not-found markers by normalized handle.
type ProfileCache interface {
	Get(ctx context.Context, handle string) (*model.Profile, bool, error)
	Put(ctx context.Context, handle string, p *model.Profile) error
}

// CachePolicy decides which failed fetches leave a not-found marker behind.
type CachePolicy string

const (
	// CacheStrict caches successes and confirmed 404s only. Rate limits and
	// transport errors are retried on the next submit.
	CacheStrict CachePolicy = "strict"
	// CacheLegacy caches a not-found marker after any failed fetch.
	CacheLegacy CachePolicy = "legacy"
)

// Options tunes a Controller.
type Options struct {
	ErrorDismiss time.Duration
	CachePolicy  CachePolicy
}

// Deps are the collaborators shared by every Controller.
type Deps struct {
	Cache   ProfileCache
	Fetcher Fetcher
	Logger  *slog.Logger
	Options Options
}

// Source says where a lookup's answer came from.
type Source string

const (
	SourceNone    Source = ""
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
)

// Result describes what a Submit did.
type Result struct {
	// Accepted is false when the submit was dropped (a lookup was running,
	// or the submit control was not ready).
	Accepted bool
	Source   Source
	Profile  *model.Profile
	// Err is the error the banner is now showing, if any.
	Err *apperror.AppError
}

// Controller drives one page: it owns the submit control's status, the
// single in-flight slot and the error banner.
//
// CONCURRENCY:
// mu guards input and inflight. It is never held across the cache read or
// the network call; inflight is what keeps a second submit out while the
// first one waits.
type Controller struct {
	mu       sync.Mutex
	input    string
	inflight bool

	surface render.Surface
	banner  *Banner
	cache   ProfileCache
	fetcher Fetcher
	policy  CachePolicy
	logger  *slog.Logger
}

// NewController creates a Controller drawing on surface. The submit
// control starts disabled, since the input starts empty.
func NewController(deps Deps, surface render.Surface) *Controller {
	policy := deps.Options.CachePolicy
	if policy == "" {
		policy = CacheStrict
	}

	c := &Controller{
		surface: surface,
		banner:  NewBanner(surface, deps.Options.ErrorDismiss),
		cache:   deps.Cache,
		fetcher: deps.Fetcher,
		policy:  policy,
		logger:  deps.Logger,
	}

	c.mu.Lock()
	c.updateStatusLocked()
	c.mu.Unlock()

	return c
}

// Input records a change of the handle input and re-validates it.
// While a lookup is loading the status is left alone.
func (c *Controller) Input(raw string) render.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.input = raw
	return c.updateStatusLocked()
}

// Busy reports whether a lookup is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight
}

// Close cancels the banner's pending dismissal.
func (c *Controller) Close() {
	c.banner.Stop()
}

func (c *Controller) updateStatusLocked() render.Status {
	if c.surface.Status() == render.StatusLoading {
		return render.StatusLoading
	}

	st := render.StatusDisabled
	if Validate(c.input).Valid {
		st = render.StatusReady
	}
	c.surface.SetStatus(st)
	return st
}

// Submit looks up the handle currently in the input.
//
// A submit while a lookup is in flight is dropped silently. Otherwise the
// input is re-validated; an invalid handle shows an error and stops there.
// A valid handle is answered from the cache when possible and from the
// network otherwise.
//
// The network call is not tied to ctx's cancellation: a lookup that has
// started always runs to completion so its result lands in the cache.
func (c *Controller) Submit(ctx context.Context) Result {
	c.mu.Lock()
	if c.inflight || c.surface.Status() == render.StatusLoading {
		c.mu.Unlock()
		droppedSubmits.Inc()
		return Result{}
	}

	h := Validate(c.input)
	if !h.Valid {
		c.mu.Unlock()
		return c.fail(SourceNone, apperror.InvalidHandle())
	}
	if c.surface.Status() != render.StatusReady {
		c.mu.Unlock()
		droppedSubmits.Inc()
		return Result{}
	}

	c.inflight = true
	c.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	handle := h.Normalized

	if res, ok := c.fromCache(ctx, handle); ok {
		c.release()
		return res
	}

	return c.fromNetwork(ctx, handle)
}

// fromCache answers the lookup from the cache. ok is false on a miss.
// Unreadable entries and store failures count as misses: the fetch that
// follows overwrites whatever is there.
func (c *Controller) fromCache(ctx context.Context, handle string) (Result, bool) {
	p, found, err := c.cache.Get(ctx, handle)
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, apperror.ErrCorrupt) {
			level = slog.LevelWarn
		}
		c.logger.Log(ctx, level, "cache read failed, refetching",
			slog.String("handle", handle),
			slog.String("error", err.Error()),
		)
		return Result{}, false
	}
	if !found {
		return Result{}, false
	}

	if p.IsNotFound() {
		return c.fail(SourceCache, apperror.NotFoundCached()), true
	}

	render.Render(c.surface, p)
	lookupsTotal.WithLabelValues(sourceCache, "ok").Inc()
	c.logger.Debug("profile served from cache", slog.String("handle", handle))

	return Result{Accepted: true, Source: SourceCache, Profile: p}, true
}

// fromNetwork fetches handle, records the outcome in the cache and renders.
// The submit control shows loading for the duration of the fetch.
func (c *Controller) fromNetwork(ctx context.Context, handle string) Result {
	c.surface.SetStatus(render.StatusLoading)
	defer c.finishLoading()

	p, err := c.fetch(ctx, handle)
	if err == nil && (p == nil || p.Login == "") {
		err = apperror.NotFoundRemote()
	}
	if err != nil {
		appErr := asAppError(err)

		if appErr.Kind == apperror.KindNotFoundRemote || c.policy == CacheLegacy {
			c.store(ctx, handle, model.NotFoundMarker())
		}
		return c.fail(SourceNetwork, appErr)
	}

	c.store(ctx, handle, p)
	render.Render(c.surface, p)
	lookupsTotal.WithLabelValues(sourceNetwork, "ok").Inc()

	c.logger.Info("profile fetched",
		slog.String("handle", handle),
		slog.String("login", p.Login),
	)

	return Result{Accepted: true, Source: SourceNetwork, Profile: p}
}

func (c *Controller) fetch(ctx context.Context, handle string) (*model.Profile, error) {
	fetchesInflight.Inc()
	defer fetchesInflight.Dec()

	start := time.Now()
	p, err := c.fetcher.FetchUser(ctx, handle)

	outcome := "ok"
	if err != nil {
		outcome = asAppError(err).Kind.String()
	}
	fetchDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	return p, err
}

// store writes p to the cache. A failed write is logged and otherwise
// ignored: the user still sees the result, it just is not remembered.
func (c *Controller) store(ctx context.Context, handle string, p *model.Profile) {
	if err := c.cache.Put(ctx, handle, p); err != nil {
		c.logger.Error("cache write failed",
			slog.String("handle", handle),
			slog.String("error", err.Error()),
		)
	}
}

// finishLoading frees the in-flight slot and re-derives the status from the
// current input.
func (c *Controller) finishLoading() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inflight = false
	c.surface.SetStatus(render.StatusDisabled)
	c.updateStatusLocked()
}

// release frees the in-flight slot after a lookup that never started loading.
func (c *Controller) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight = false
}

// fail shows appErr on the banner and builds the matching Result.
func (c *Controller) fail(source Source, appErr *apperror.AppError) Result {
	c.banner.Show(appErr.BannerText())

	label := sourceNone
	switch source {
	case SourceCache:
		label = sourceCache
	case SourceNetwork:
		label = sourceNetwork
	}
	lookupsTotal.WithLabelValues(label, appErr.Kind.String()).Inc()

	c.logger.Info("lookup failed",
		slog.String("source", label),
		slog.String("kind", appErr.Kind.String()),
		slog.String("message", appErr.Message),
	)

	return Result{Accepted: source != SourceNone, Source: source, Err: appErr}
}

// asAppError coerces any fetch error into the taxonomy. Errors that carry
// no classification are treated as transport failures.
func asAppError(err error) *apperror.AppError {
	if appErr, ok := apperror.As(err); ok {
		return appErr
	}
	return apperror.Transport(fmt.Sprint(err), err)
}
