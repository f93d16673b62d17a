package playback

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlayer is a controllable player handle
type fakePlayer struct {
	loaded  bool
	playing bool

	playCalls  int
	pauseCalls int

	stateErr error
	playErr  error
	pauseErr error
}

func (p *fakePlayer) PlaybackState() (State, error) {
	if p.stateErr != nil {
		return State{}, p.stateErr
	}
	return State{IsLoaded: p.loaded, IsPlaying: p.playing}, nil
}

func (p *fakePlayer) Play() error {
	p.playCalls++
	if p.playErr != nil {
		return p.playErr
	}
	p.playing = true
	return nil
}

func (p *fakePlayer) Pause() error {
	p.pauseCalls++
	if p.pauseErr != nil {
		return p.pauseErr
	}
	p.playing = false
	return nil
}

func TestActivatePausesPreviousPlayerOnce(t *testing.T) {
	c := NewCoordinator()
	a := &fakePlayer{loaded: true}
	b := &fakePlayer{loaded: true}

	c.Activate(a)
	require.True(t, a.playing)

	c.Activate(b)

	assert.Equal(t, 1, a.pauseCalls)
	assert.False(t, a.playing)
	assert.True(t, b.playing)
}

func TestAtMostOnePlayerIsEverPlaying(t *testing.T) {
	c := NewCoordinator()
	players := []*fakePlayer{
		{loaded: true}, {loaded: true}, {loaded: true}, {loaded: true},
	}

	for _, p := range players {
		c.Activate(p)

		playing := 0
		for _, q := range players {
			if q.playing {
				playing++
			}
		}
		assert.LessOrEqual(t, playing, 1)
		assert.True(t, p.playing, "most recently activated handle should be the playing one")
	}
}

func TestActivateDoesNotPlayUnloadedHandle(t *testing.T) {
	c := NewCoordinator()
	p := &fakePlayer{loaded: false}

	c.Activate(p)

	assert.Equal(t, 0, p.playCalls)
	assert.Same(t, p, c.Active().(*fakePlayer))
}

func TestActivateSwallowsStaleHandleErrors(t *testing.T) {
	c := NewCoordinator()
	stale := &fakePlayer{loaded: true}
	c.Activate(stale)

	// Handle unmounted while it was active
	stale.stateErr = errors.New("view destroyed")

	next := &fakePlayer{loaded: true}
	c.Activate(next)

	assert.True(t, next.playing)
	assert.Same(t, next, c.Active().(*fakePlayer))
}

func TestActivateSamePlayerTwiceDoesNotSelfPause(t *testing.T) {
	c := NewCoordinator()
	p := &fakePlayer{loaded: true}

	c.Activate(p)
	c.Activate(p)

	assert.Equal(t, 0, p.pauseCalls)
	assert.True(t, p.playing)
}

func TestDeactivateOnlyAffectsActiveHandle(t *testing.T) {
	c := NewCoordinator()
	a := &fakePlayer{loaded: true}
	b := &fakePlayer{loaded: true}

	c.Activate(a)
	c.Activate(b)

	// a already lost the active slot; deactivating it must not touch b
	c.Deactivate(a)
	assert.True(t, b.playing)
	assert.NotNil(t, c.Active())

	c.Deactivate(b)
	assert.False(t, b.playing)
	assert.Nil(t, c.Active())
}

func TestReleaseStopsEverything(t *testing.T) {
	c := NewCoordinator()
	p := &fakePlayer{loaded: true}
	c.Activate(p)

	c.Release()

	assert.False(t, p.playing)
	assert.Nil(t, c.Active())

	// Release with nothing active is a no-op
	c.Release()
}

func TestMuteStateIsSharedAndObservable(t *testing.T) {
	c := NewCoordinator()
	assert.False(t, c.Muted())

	var seen []bool
	unsub := c.OnMuteChange(func(muted bool) {
		seen = append(seen, muted)
	})

	c.SetMuted(true)
	c.SetMuted(true) // no change, no notification
	c.SetMuted(false)

	assert.Equal(t, []bool{true, false}, seen)

	unsub()
	c.SetMuted(true)
	assert.Len(t, seen, 2)
}

func TestItemDegradesAfterRetryAndRecoversOnNextActivation(t *testing.T) {
	engine := &fakePlayer{loaded: true, playErr: errors.New("decode failure")}
	it := NewItem("p1", engine)
	it.Activated()

	// First activation: initial attempt plus one retry, then degrade
	err := it.Play()
	require.NoError(t, err, "playback errors must not propagate")
	assert.Equal(t, 2, engine.playCalls)
	assert.Equal(t, ItemDegraded, it.State())

	// Degraded is terminal for this activation
	require.NoError(t, it.Play())
	assert.Equal(t, 2, engine.playCalls)

	// Next activation gets a fresh attempt
	engine.playErr = nil
	it.Activated()
	require.NoError(t, it.Play())
	assert.Equal(t, ItemPlaying, it.State())
}

func TestDegradedItemReportsUnloaded(t *testing.T) {
	engine := &fakePlayer{loaded: true, playErr: errors.New("unsupported codec")}
	it := NewItem("p1", engine)
	it.Activated()
	require.NoError(t, it.Play())
	require.Equal(t, ItemDegraded, it.State())

	st, err := it.PlaybackState()
	require.NoError(t, err)
	assert.False(t, st.IsLoaded)
	assert.False(t, st.IsPlaying)
}

func TestUnmountedItemReturnsBenignError(t *testing.T) {
	engine := &fakePlayer{loaded: true}
	it := NewItem("p1", engine)
	it.Unmount()

	_, err := it.PlaybackState()
	assert.ErrorIs(t, err, ErrUnmounted)
	assert.ErrorIs(t, it.Play(), ErrUnmounted)
	assert.ErrorIs(t, it.Pause(), ErrUnmounted)

	// The coordinator shrugs at an unmounted active handle
	c := NewCoordinator()
	c.Activate(it)
	c.Release()
}

func TestItemDrivenByCoordinator(t *testing.T) {
	c := NewCoordinator()
	engineA := &fakePlayer{loaded: true}
	engineB := &fakePlayer{loaded: true}
	itemA := NewItem("a", engineA)
	itemB := NewItem("b", engineB)

	itemA.Activated()
	c.Activate(itemA)
	require.Equal(t, ItemPlaying, itemA.State())

	itemB.Activated()
	c.Activate(itemB)

	assert.Equal(t, ItemPaused, itemA.State())
	assert.Equal(t, ItemPlaying, itemB.State())
	assert.Equal(t, 1, engineA.pauseCalls)
}
