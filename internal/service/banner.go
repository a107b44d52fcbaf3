package service

import (
	"sync"
	"time"

	"github.com/sakif/profile-lookup/internal/render"
)

// DefaultErrorDismiss is how long an error stays on screen.
const DefaultErrorDismiss = 5 * time.Second

// Banner shows one error at a time and hides it after a fixed delay.
// Showing a new error cancels the pending dismissal and starts a fresh one.
type Banner struct {
	mu      sync.Mutex
	surface render.Surface
	delay   time.Duration
	timer   *time.Timer
	gen     uint64 // bumped on every Show; a timer only dismisses its own generation
}

// NewBanner creates a Banner writing to surface.
func NewBanner(surface render.Surface, delay time.Duration) *Banner {
	if delay <= 0 {
		delay = DefaultErrorDismiss
	}
	return &Banner{surface: surface, delay: delay}
}

// Show displays msg and (re)starts the dismiss timer.
func (b *Banner) Show(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}
	b.gen++
	gen := b.gen

	b.surface.ShowError(msg)
	b.timer = time.AfterFunc(b.delay, func() { b.dismiss(gen) })
}

// dismiss hides the banner unless a newer message replaced it meanwhile.
func (b *Banner) dismiss(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.gen {
		return
	}
	b.timer = nil
	b.surface.HideError()
}

// Stop cancels a pending dismissal without touching what is shown.
func (b *Banner) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
}
