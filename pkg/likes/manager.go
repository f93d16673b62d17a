// Package likes reconciles client-local like state against the server:
// visible posts are queued and checked in batches on a fixed cadence, and
// user toggles apply optimistically with exact rollback on failure.
package likes

import (
	"sync"
	"time"

	"github.com/clipstream/clipstream-go/pkg/api"
	"github.com/clipstream/clipstream-go/pkg/cache"
	"github.com/clipstream/clipstream-go/pkg/logger"
	"github.com/clipstream/clipstream-go/pkg/store"
)

// API is the remote like service the manager talks to
type API interface {
	ToggleLike(postID string) (*api.LikeStatus, error)
	BatchStatus(postIDs []string) (map[string]api.LikeStatus, error)
}

// restAPI delegates to the shared HTTP client wrappers
type restAPI struct{}

func (restAPI) ToggleLike(postID string) (*api.LikeStatus, error) {
	return api.ToggleLike(postID)
}

func (restAPI) BatchStatus(postIDs []string) (map[string]api.LikeStatus, error) {
	return api.BatchStatus(postIDs)
}

// NewRestAPI returns the production API backed by pkg/api
func NewRestAPI() API {
	return restAPI{}
}

// Options configure the background batch checker
type Options struct {
	// FlushInterval is the cadence of the batch-status timer
	FlushInterval time.Duration
	// BatchLimit caps how many post IDs go into one batch-status request
	BatchLimit int
}

// DefaultOptions check visible posts every 400ms, up to 100 per request
func DefaultOptions() Options {
	return Options{
		FlushInterval: 400 * time.Millisecond,
		BatchLimit:    api.MaxBatchSize,
	}
}

// Manager owns the pending-check queue, the checked set and the optimistic
// toggle path. One instance lives at the app's composition root; views call
// it instead of touching the store directly.
type Manager struct {
	api   API
	store *store.Store
	cache *cache.Cache // nil when running without persistence

	mu         sync.Mutex
	pending    []string            // enqueue order preserved
	pendingSet map[string]struct{} // membership for dedup
	checked    map[string]struct{}

	opts    Options
	done    chan struct{}
	started bool
	wg      sync.WaitGroup
}

// NewManager creates a manager. cache may be nil to disable persistence.
func NewManager(remote API, st *store.Store, c *cache.Cache, opts Options) *Manager {
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultOptions().FlushInterval
	}
	if opts.BatchLimit <= 0 || opts.BatchLimit > api.MaxBatchSize {
		opts.BatchLimit = api.MaxBatchSize
	}

	return &Manager{
		api:        remote,
		store:      st,
		cache:      c,
		pendingSet: make(map[string]struct{}),
		checked:    make(map[string]struct{}),
		opts:       opts,
		done:       make(chan struct{}),
	}
}

// Start restores persisted state into the store and launches the batch
// timer. The restore is a full sync, so it replaces the liked set rather
// than merging.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	if m.cache != nil {
		m.store.SetLikedPosts(m.cache.LikedPostIDs())
		m.store.MergeLikeCounts(m.cache.LikeCounts())
	}

	m.wg.Add(1)
	go m.flushLoop()
}

// Close stops the batch timer. Pending IDs are dropped; they re-enqueue on
// next visibility.
func (m *Manager) Close() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	m.mu.Unlock()

	close(m.done)
	m.wg.Wait()
}

func (m *Manager) flushLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.Flush()
		}
	}
}

// MarkVisible enqueues a post for its next batched status check. Idempotent:
// posts already checked this session, already known liked, or already queued
// are not enqueued again.
func (m *Manager) MarkVisible(postID string) {
	if postID == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.checked[postID]; ok {
		return
	}
	if m.store.IsLiked(postID) {
		return
	}
	if _, ok := m.pendingSet[postID]; ok {
		return
	}

	m.pending = append(m.pending, postID)
	m.pendingSet[postID] = struct{}{}
}

// Flush drains up to BatchLimit queued IDs and issues one batch-status
// call. A failed batch is dropped without requeue: the IDs stay unchecked,
// so the posts re-enqueue the next time they become visible.
func (m *Manager) Flush() {
	m.mu.Lock()
	if len(m.pending) == 0 {
		m.mu.Unlock()
		return
	}

	n := len(m.pending)
	if n > m.opts.BatchLimit {
		n = m.opts.BatchLimit
	}
	batch := make([]string, n)
	copy(batch, m.pending[:n])
	m.pending = m.pending[n:]
	for _, id := range batch {
		delete(m.pendingSet, id)
	}
	m.mu.Unlock()

	statuses, err := m.api.BatchStatus(batch)
	if err != nil {
		logger.Warn("Batch like-status check failed, dropping batch", "count", len(batch), "error", err)
		return
	}

	m.mu.Lock()
	for id := range statuses {
		m.checked[id] = struct{}{}
	}
	m.mu.Unlock()

	// Union the liked set: a full replace here could clobber a like the
	// user made while this request was in flight.
	liked := make([]string, 0, len(statuses))
	counts := make(map[string]uint64, len(statuses))
	for id, st := range statuses {
		if st.IsLiked {
			liked = append(liked, id)
		}
		counts[id] = st.LikeCount
	}
	m.store.MergeLikedPosts(liked)
	m.store.MergeLikeCounts(counts)

	m.persist()
}

// ToggleLike flips the like state for a post. The optimistic state is
// applied synchronously before the network call; the server response
// overwrites it on success, and the exact pre-toggle snapshot is restored
// on failure.
func (m *Manager) ToggleLike(postID string) (*api.LikeStatus, error) {
	wasLiked, prevCount := m.store.Snapshot(postID)

	// Optimistic flip, applied before the call so the UI never waits
	if wasLiked {
		next := uint64(0)
		if prevCount > 0 {
			next = prevCount - 1
		}
		m.store.SetLikeStatus(postID, false, next)
	} else {
		m.store.SetLikeStatus(postID, true, prevCount+1)
	}

	status, err := m.api.ToggleLike(postID)
	if err != nil {
		// Restore the captured snapshot exactly, not the inverse of the
		// guess: rapid repeated toggles must not compound drift.
		m.store.SetLikeStatus(postID, wasLiked, prevCount)
		logger.Warn("Like toggle failed, rolled back", "post_id", postID, "error", err)
		return nil, err
	}

	// Server response wins over the optimistic guess, even when another
	// device raced us.
	m.store.SetLikeStatus(postID, status.IsLiked, status.LikeCount)

	m.mu.Lock()
	m.checked[postID] = struct{}{}
	m.mu.Unlock()

	m.persist()
	return status, nil
}

// IsLiked reads the current liked state, defaulting to false
func (m *Manager) IsLiked(postID string) bool {
	return m.store.IsLiked(postID)
}

// LikeCount reads the current like count, defaulting to 0
func (m *Manager) LikeCount(postID string) uint64 {
	return m.store.LikeCount(postID)
}

// ClearCheckedCache empties the checked set so subsequently visible posts
// are re-verified against the server (pull-to-refresh)
func (m *Manager) ClearCheckedCache() {
	m.mu.Lock()
	m.checked = make(map[string]struct{})
	m.mu.Unlock()
}

// PendingCount reports how many posts await a batch check
func (m *Manager) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func (m *Manager) persist() {
	if m.cache == nil {
		return
	}
	if err := m.cache.SaveLikedPostIDs(m.store.LikedPostIDs()); err != nil {
		logger.Warn("Failed to persist liked posts", "error", err)
	}
	if err := m.cache.SaveLikeCounts(m.store.LikeCounts()); err != nil {
		logger.Warn("Failed to persist like counts", "error", err)
	}
}
