package realtime

import (
	"math/rand"
	"sync"
	"time"

	"github.com/clipstream/clipstream-go/pkg/logger"
	"github.com/google/uuid"
)

// Simulator is an in-process Source for demos and tests. It exposes the
// same subscription surface as the websocket client and can generate a
// stream of like deltas for a set of post IDs.
type Simulator struct {
	listenersMu  sync.RWMutex
	listeners    map[MessageType]map[int]func([]byte)
	nextListener int

	done chan struct{}
	once sync.Once
}

// NewSimulator creates an idle simulator
func NewSimulator() *Simulator {
	return &Simulator{
		listeners: make(map[MessageType]map[int]func([]byte)),
		done:      make(chan struct{}),
	}
}

// On implements Source
func (s *Simulator) On(msgType MessageType, fn func(payload []byte)) func() {
	s.listenersMu.Lock()
	if s.listeners[msgType] == nil {
		s.listeners[msgType] = make(map[int]func([]byte))
	}
	id := s.nextListener
	s.nextListener++
	s.listeners[msgType][id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners[msgType], id)
		s.listenersMu.Unlock()
	}
}

// Emit encodes payload and delivers it synchronously to subscribers of
// msgType
func (s *Simulator) Emit(msgType MessageType, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Simulator payload marshal failed", "error", err)
		return
	}

	s.listenersMu.RLock()
	fns := make([]func([]byte), 0, len(s.listeners[msgType]))
	for _, fn := range s.listeners[msgType] {
		fns = append(fns, fn)
	}
	s.listenersMu.RUnlock()

	for _, fn := range fns {
		fn(data)
	}
}

// Run emits random like deltas for postIDs on the given interval until
// Stop is called
func (s *Simulator) Run(postIDs []string, interval time.Duration) {
	if len(postIDs) == 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		counts := make(map[string]uint64, len(postIDs))
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				postID := postIDs[rand.Intn(len(postIDs))]
				counts[postID]++
				s.Emit(MessageTypePostLiked, LikeEvent{
					PostID:    postID,
					UserID:    uuid.NewString(),
					LikeCount: counts[postID],
				})
			}
		}
	}()
}

// Stop halts Run
func (s *Simulator) Stop() {
	s.once.Do(func() {
		close(s.done)
	})
}
