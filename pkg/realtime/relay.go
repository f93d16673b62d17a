package realtime

import (
	"github.com/clipstream/clipstream-go/pkg/logger"
	"github.com/clipstream/clipstream-go/pkg/store"
)

// LikeEvent is the payload of post_liked / post_unliked messages. OwnAction
// is set when the delta originates from the current user on another device,
// which is the only case that changes liked-set membership.
type LikeEvent struct {
	PostID    string `json:"post_id"`
	UserID    string `json:"user_id"`
	LikeCount uint64 `json:"like_count"`
	OwnAction bool   `json:"own_action"`
}

// CountEvent is the payload of like_count_update messages
type CountEvent struct {
	PostID    string `json:"post_id"`
	LikeCount uint64 `json:"like_count"`
}

// LikesRelay merges realtime like deltas into the likes store. Deltas may
// race with in-flight optimistic toggles and batch checks; membership
// changes union into the liked set and counts overwrite key-wise, so every
// path converges on the most recent server truth it saw.
type LikesRelay struct {
	store  *store.Store
	unsubs []func()
}

// NewLikesRelay creates a relay over the given store
func NewLikesRelay(st *store.Store) *LikesRelay {
	return &LikesRelay{store: st}
}

// Attach subscribes the relay to a message source. Call Detach to stop.
func (r *LikesRelay) Attach(src Source) {
	r.unsubs = append(r.unsubs,
		src.On(MessageTypePostLiked, r.handleLiked),
		src.On(MessageTypePostUnliked, r.handleUnliked),
		src.On(MessageTypeLikeCountUpdate, r.handleCountUpdate),
	)
}

// Detach unsubscribes from all message types
func (r *LikesRelay) Detach() {
	for _, unsub := range r.unsubs {
		unsub()
	}
	r.unsubs = nil
}

func (r *LikesRelay) handleLiked(payload []byte) {
	var ev LikeEvent
	if err := json.Unmarshal(payload, &ev); err != nil || ev.PostID == "" {
		logger.Warn("Invalid post_liked payload dropped", "error", err)
		return
	}

	if ev.OwnAction {
		r.store.MergeLikedPosts([]string{ev.PostID})
	}
	r.store.MergeLikeCounts(map[string]uint64{ev.PostID: ev.LikeCount})
}

func (r *LikesRelay) handleUnliked(payload []byte) {
	var ev LikeEvent
	if err := json.Unmarshal(payload, &ev); err != nil || ev.PostID == "" {
		logger.Warn("Invalid post_unliked payload dropped", "error", err)
		return
	}

	if ev.OwnAction {
		r.store.RemoveLikedPost(ev.PostID)
	}
	r.store.MergeLikeCounts(map[string]uint64{ev.PostID: ev.LikeCount})
}

func (r *LikesRelay) handleCountUpdate(payload []byte) {
	var ev CountEvent
	if err := json.Unmarshal(payload, &ev); err != nil || ev.PostID == "" {
		logger.Warn("Invalid like_count_update payload dropped", "error", err)
		return
	}

	r.store.MergeLikeCounts(map[string]uint64{ev.PostID: ev.LikeCount})
}
