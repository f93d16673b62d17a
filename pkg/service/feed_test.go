package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/clipstream/clipstream-go/pkg/api"
	"github.com/clipstream/clipstream-go/pkg/client"
	"github.com/clipstream/clipstream-go/pkg/likes"
	"github.com/clipstream/clipstream-go/pkg/playback"
	"github.com/clipstream/clipstream-go/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLikesAPI answers batch checks locally
type stubLikesAPI struct {
	mu       sync.Mutex
	statuses map[string]api.LikeStatus
	batches  [][]string
}

func (s *stubLikesAPI) ToggleLike(postID string) (*api.LikeStatus, error) {
	st := s.statuses[postID]
	return &st, nil
}

func (s *stubLikesAPI) BatchStatus(postIDs []string) (map[string]api.LikeStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batches = append(s.batches, append([]string(nil), postIDs...))
	result := make(map[string]api.LikeStatus, len(postIDs))
	for _, id := range postIDs {
		result[id] = s.statuses[id]
	}
	return result, nil
}

// fakeEngine is a minimal playback handle
type fakeEngine struct {
	playing    bool
	pauseCalls int
}

func (e *fakeEngine) PlaybackState() (playback.State, error) {
	return playback.State{IsLoaded: true, IsPlaying: e.playing}, nil
}

func (e *fakeEngine) Play() error {
	e.playing = true
	return nil
}

func (e *fakeEngine) Pause() error {
	e.pauseCalls++
	e.playing = false
	return nil
}

func newTestFeedService(remote likes.API) (*FeedService, *likes.Manager, *playback.Coordinator) {
	st := store.NewStore()
	manager := likes.NewManager(remote, st, nil, likes.Options{FlushInterval: time.Hour, BatchLimit: 100})
	coordinator := playback.NewCoordinator()
	return NewFeedService(st, manager, coordinator), manager, coordinator
}

func TestBrowseMarksVisiblePostsAndReconciles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/feed", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(api.FeedResponse{
			Posts: []api.Post{
				{ID: "p1", Username: "ada", MediaType: "video"},
				{ID: "p2", Username: "lin", MediaType: "image"},
			},
			HasMore: false,
		})
	}))
	defer srv.Close()
	client.SetBaseURL(srv.URL)

	remote := &stubLikesAPI{statuses: map[string]api.LikeStatus{
		"p1": {IsLiked: true, LikeCount: 4},
		"p2": {IsLiked: false, LikeCount: 1},
	}}
	fs, manager, _ := newTestFeedService(remote)
	defer manager.Close()

	require.NoError(t, fs.Browse(context.Background(), 1, 20))

	remote.mu.Lock()
	defer remote.mu.Unlock()
	require.Len(t, remote.batches, 1)
	assert.ElementsMatch(t, []string{"p1", "p2"}, remote.batches[0])
	assert.True(t, manager.IsLiked("p1"))
	assert.Equal(t, uint64(4), manager.LikeCount("p1"))
	assert.False(t, manager.IsLiked("p2"))
}

func TestAdvancePausesPreviousVideoExactlyOnce(t *testing.T) {
	remote := &stubLikesAPI{statuses: map[string]api.LikeStatus{}}
	fs, manager, _ := newTestFeedService(remote)
	defer manager.Close()

	engineA := &fakeEngine{}
	engineB := &fakeEngine{}
	itemA := playback.NewItem("a", engineA)
	itemB := playback.NewItem("b", engineB)

	fs.Advance(api.Post{ID: "a", MediaType: "video"}, itemA)
	require.True(t, engineA.playing)

	fs.Advance(api.Post{ID: "b", MediaType: "video"}, itemB)

	assert.Equal(t, 1, engineA.pauseCalls)
	assert.False(t, engineA.playing)
	assert.True(t, engineB.playing)
}

func TestAdvanceSkipsPlaybackForImages(t *testing.T) {
	remote := &stubLikesAPI{statuses: map[string]api.LikeStatus{}}
	fs, manager, coordinator := newTestFeedService(remote)
	defer manager.Close()

	fs.Advance(api.Post{ID: "img1", MediaType: "image"}, nil)

	assert.Nil(t, coordinator.Active())
	assert.Equal(t, 1, manager.PendingCount())
}

func TestLeaveFeedReleasesActivePlayer(t *testing.T) {
	remote := &stubLikesAPI{statuses: map[string]api.LikeStatus{}}
	fs, manager, coordinator := newTestFeedService(remote)
	defer manager.Close()

	engine := &fakeEngine{}
	item := playback.NewItem("a", engine)
	fs.Advance(api.Post{ID: "a", MediaType: "video"}, item)
	require.True(t, engine.playing)

	fs.LeaveFeed()

	assert.False(t, engine.playing)
	assert.Nil(t, coordinator.Active())
}
