// Package playback enforces the single-active-player rule across a
// virtualized feed: at most one video is ever playing or audible,
// process-wide, no matter how many items are mounted.
package playback

import (
	"sync"

	"github.com/clipstream/clipstream-go/pkg/logger"
)

// State describes a player handle's current condition
type State struct {
	IsLoaded  bool
	IsPlaying bool
}

// Player is the handle a renderable item exposes to the coordinator. Every
// method may fail once the underlying resource is torn down; the
// coordinator treats such failures as benign.
type Player interface {
	PlaybackState() (State, error)
	Play() error
	Pause() error
}

// Coordinator tracks the single currently-active player handle. One
// instance lives at the feed screen's composition root.
type Coordinator struct {
	mu     sync.Mutex
	active Player

	muted         bool
	muteListeners map[int]func(bool)
	nextListener  int
}

// NewCoordinator creates a coordinator with nothing active
func NewCoordinator() *Coordinator {
	return &Coordinator{
		muteListeners: make(map[int]func(bool)),
	}
}

// Activate makes p the active handle. Any previously active handle that
// reports itself playing is paused first; errors from a stale handle are
// expected under list virtualization and are swallowed.
func (c *Coordinator) Activate(p Player) {
	if p == nil {
		return
	}

	c.mu.Lock()
	prev := c.active
	c.active = p
	c.mu.Unlock()

	if prev != nil && prev != p {
		c.pauseQuietly(prev)
	}

	st, err := p.PlaybackState()
	if err != nil {
		logger.Debug("Active handle state unavailable", "error", err)
		return
	}
	if st.IsLoaded && !st.IsPlaying {
		if err := p.Play(); err != nil {
			logger.Debug("Playback start failed", "error", err)
		}
	}
}

// Deactivate pauses and clears p only if it is the active handle. A stale
// handle that scrolled away after losing the active slot is a no-op.
func (c *Coordinator) Deactivate(p Player) {
	if p == nil {
		return
	}

	c.mu.Lock()
	if c.active != p {
		c.mu.Unlock()
		return
	}
	c.active = nil
	c.mu.Unlock()

	c.pauseQuietly(p)
}

// Release unconditionally pauses whatever is active and clears it. Called
// on screen blur or unmount so nothing keeps playing in the background.
func (c *Coordinator) Release() {
	c.mu.Lock()
	prev := c.active
	c.active = nil
	c.mu.Unlock()

	if prev != nil {
		c.pauseQuietly(prev)
	}
}

// Active returns the current active handle, or nil
func (c *Coordinator) Active() Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Coordinator) pauseQuietly(p Player) {
	st, err := p.PlaybackState()
	if err != nil {
		// Handle already unmounted; nothing to pause
		logger.Debug("Skipping pause of stale handle", "error", err)
		return
	}
	if !st.IsPlaying {
		return
	}
	if err := p.Pause(); err != nil {
		logger.Debug("Pause of previous handle failed", "error", err)
	}
}

// Muted returns the shared feed-wide mute state
func (c *Coordinator) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// SetMuted sets the shared mute state. Any visible item's tap gesture may
// call this; every subscriber is notified of the new value.
func (c *Coordinator) SetMuted(muted bool) {
	c.mu.Lock()
	if c.muted == muted {
		c.mu.Unlock()
		return
	}
	c.muted = muted
	fns := make([]func(bool), 0, len(c.muteListeners))
	for _, fn := range c.muteListeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(muted)
	}
}

// OnMuteChange subscribes to mute-state changes and returns an unsubscribe
// function
func (c *Coordinator) OnMuteChange(fn func(bool)) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.muteListeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.muteListeners, id)
		c.mu.Unlock()
	}
}
