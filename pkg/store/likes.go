// Package store holds the client-side source of truth for like state.
//
// The store is a process-wide, observable value: the likes manager, the
// realtime relay and any number of mounted views read and mutate it
// concurrently, so every operation takes the internal lock and no
// operation returns an error.
package store

import "sync"

// EventKind identifies what changed in the store
type EventKind string

const (
	EventLiked    EventKind = "liked"
	EventUnliked  EventKind = "unliked"
	EventCounts   EventKind = "counts"
	EventReplaced EventKind = "replaced"
	EventCleared  EventKind = "cleared"
)

// Event is delivered to subscribers on every mutation. PostID is empty for
// whole-store events (replace, clear, bulk count merges).
type Event struct {
	Kind   EventKind
	PostID string
}

// Store is the canonical client-side view of liked posts and like counts
type Store struct {
	mu         sync.RWMutex
	likedPosts map[string]struct{}
	likeCounts map[string]uint64

	listenerMu   sync.RWMutex
	listeners    map[int]func(Event)
	nextListener int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		likedPosts: make(map[string]struct{}),
		likeCounts: make(map[string]uint64),
		listeners:  make(map[int]func(Event)),
	}
}

// Subscribe registers a listener for store events and returns an
// unsubscribe function. Listeners are invoked synchronously after the
// mutation is committed.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.listenerMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		delete(s.listeners, id)
		s.listenerMu.Unlock()
	}
}

func (s *Store) emit(ev Event) {
	s.listenerMu.RLock()
	fns := make([]func(Event), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenerMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// SetLikedPosts replaces the full known-liked set. Used only by full-sync
// paths (cache restore, login). Batch reconciliation must use
// MergeLikedPosts so it cannot clobber an in-flight optimistic like.
func (s *Store) SetLikedPosts(ids []string) {
	s.mu.Lock()
	s.likedPosts = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.likedPosts[id] = struct{}{}
	}
	s.mu.Unlock()

	s.emit(Event{Kind: EventReplaced})
}

// MergeLikedPosts unions ids into the liked set
func (s *Store) MergeLikedPosts(ids []string) {
	if len(ids) == 0 {
		return
	}

	s.mu.Lock()
	for _, id := range ids {
		s.likedPosts[id] = struct{}{}
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.emit(Event{Kind: EventLiked, PostID: id})
	}
}

// MergeLikeCounts overwrites counts key-wise
func (s *Store) MergeLikeCounts(counts map[string]uint64) {
	if len(counts) == 0 {
		return
	}

	s.mu.Lock()
	for id, count := range counts {
		s.likeCounts[id] = count
	}
	s.mu.Unlock()

	s.emit(Event{Kind: EventCounts})
}

// AddLikedPost marks a single post liked
func (s *Store) AddLikedPost(id string) {
	s.mu.Lock()
	s.likedPosts[id] = struct{}{}
	s.mu.Unlock()

	s.emit(Event{Kind: EventLiked, PostID: id})
}

// RemoveLikedPost removes a single post from the liked set
func (s *Store) RemoveLikedPost(id string) {
	s.mu.Lock()
	delete(s.likedPosts, id)
	s.mu.Unlock()

	s.emit(Event{Kind: EventUnliked, PostID: id})
}

// SetLikeStatus applies a server-authoritative status for one post,
// overwriting both set membership and the count
func (s *Store) SetLikeStatus(id string, liked bool, count uint64) {
	s.mu.Lock()
	if liked {
		s.likedPosts[id] = struct{}{}
	} else {
		delete(s.likedPosts, id)
	}
	s.likeCounts[id] = count
	s.mu.Unlock()

	kind := EventUnliked
	if liked {
		kind = EventLiked
	}
	s.emit(Event{Kind: kind, PostID: id})
}

// IsLiked reports whether the post is in the liked set, defaulting to false
func (s *Store) IsLiked(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.likedPosts[id]
	return ok
}

// LikeCount returns the known like count for a post, defaulting to 0
func (s *Store) LikeCount(id string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.likeCounts[id]
}

// Snapshot returns the current (liked, count) pair for a post as one
// consistent read, for optimistic-update rollback
func (s *Store) Snapshot(id string) (bool, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, liked := s.likedPosts[id]
	return liked, s.likeCounts[id]
}

// LikedPostIDs returns a copy of the liked set
func (s *Store) LikedPostIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.likedPosts))
	for id := range s.likedPosts {
		ids = append(ids, id)
	}
	return ids
}

// LikeCounts returns a copy of the count map
func (s *Store) LikeCounts() map[string]uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]uint64, len(s.likeCounts))
	for id, count := range s.likeCounts {
		counts[id] = count
	}
	return counts
}

// Clear empties the store (logout, full cache clear)
func (s *Store) Clear() {
	s.mu.Lock()
	s.likedPosts = make(map[string]struct{})
	s.likeCounts = make(map[string]uint64)
	s.mu.Unlock()

	s.emit(Event{Kind: EventCleared})
}
