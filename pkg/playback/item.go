package playback

import (
	"sync"

	"github.com/clipstream/clipstream-go/pkg/logger"
)

// ItemState is the lifecycle of one feed item's player
type ItemState int

const (
	ItemInactive ItemState = iota
	ItemLoading
	ItemReady
	ItemPlaying
	ItemPaused
	// ItemDegraded shows the static thumbnail with a play affordance after
	// a playback engine failure
	ItemDegraded
	ItemUnmounted
)

func (s ItemState) String() string {
	switch s {
	case ItemInactive:
		return "inactive"
	case ItemLoading:
		return "loading"
	case ItemReady:
		return "ready"
	case ItemPlaying:
		return "playing"
	case ItemPaused:
		return "paused"
	case ItemDegraded:
		return "degraded"
	case ItemUnmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

// Item wraps a raw playback engine handle with the per-item state machine
// and the degraded-thumbnail fallback. It implements Player, so the
// coordinator drives it like any other handle.
//
// Failure policy: one retry per activation. A decode or codec error marks
// the item degraded for the rest of the current activation; the next
// Activated call restores one fresh attempt.
type Item struct {
	mu     sync.Mutex
	postID string
	engine Player
	state  ItemState

	retryBudget int
}

// NewItem wraps an engine handle for a post
func NewItem(postID string, engine Player) *Item {
	return &Item{
		postID:      postID,
		engine:      engine,
		state:       ItemInactive,
		retryBudget: 1,
	}
}

// State returns the item's lifecycle state
func (it *Item) State() ItemState {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.state
}

// PostID returns the post this item renders
func (it *Item) PostID() string {
	return it.postID
}

// Activated resets the per-activation retry budget. Call when the item
// scrolls into view and is about to be handed to the coordinator.
func (it *Item) Activated() {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.state == ItemUnmounted {
		return
	}
	it.retryBudget = 1
	if it.state == ItemDegraded {
		it.state = ItemInactive
	}
}

// Unmount marks the item gone. Later coordinator calls become benign errors.
func (it *Item) Unmount() {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.state = ItemUnmounted
}

// PlaybackState implements Player. A degraded or unmounted item reports
// unloaded so the coordinator never auto-plays it.
func (it *Item) PlaybackState() (State, error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	switch it.state {
	case ItemUnmounted:
		return State{}, ErrUnmounted
	case ItemDegraded:
		return State{}, nil
	}

	st, err := it.engine.PlaybackState()
	if err != nil {
		return State{}, err
	}

	// Keep the machine in step with what the engine reports
	switch {
	case st.IsPlaying:
		it.state = ItemPlaying
	case st.IsLoaded && it.state != ItemPaused:
		it.state = ItemReady
	case !st.IsLoaded && it.state == ItemInactive:
		it.state = ItemLoading
	}

	return st, nil
}

// Play implements Player. Engine errors degrade the item to its thumbnail
// presentation instead of propagating; one retry is attempted per
// activation.
func (it *Item) Play() error {
	it.mu.Lock()
	defer it.mu.Unlock()

	switch it.state {
	case ItemUnmounted:
		return ErrUnmounted
	case ItemDegraded:
		// Terminal for this activation; the thumbnail stays up
		return nil
	}

	for {
		err := it.engine.Play()
		if err == nil {
			it.state = ItemPlaying
			return nil
		}

		if it.retryBudget > 0 {
			it.retryBudget--
			logger.Debug("Playback failed, retrying once", "post_id", it.postID, "error", err)
			continue
		}

		logger.Warn("Playback failed, degrading to thumbnail", "post_id", it.postID, "error", err)
		it.state = ItemDegraded
		return nil
	}
}

// Pause implements Player
func (it *Item) Pause() error {
	it.mu.Lock()
	defer it.mu.Unlock()

	switch it.state {
	case ItemUnmounted:
		return ErrUnmounted
	case ItemDegraded:
		return nil
	}

	if err := it.engine.Pause(); err != nil {
		return err
	}
	it.state = ItemPaused
	return nil
}
