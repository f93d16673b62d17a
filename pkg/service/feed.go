// Package service is the use-case layer the commands call into.
package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipstream/clipstream-go/pkg/api"
	"github.com/clipstream/clipstream-go/pkg/likes"
	"github.com/clipstream/clipstream-go/pkg/logger"
	"github.com/clipstream/clipstream-go/pkg/playback"
	"github.com/clipstream/clipstream-go/pkg/realtime"
	"github.com/clipstream/clipstream-go/pkg/store"
	"github.com/fatih/color"
)

// FeedService drives the feed: it pages posts, marks them visible so the
// likes manager can batch-check them, and hands video items to the
// playback coordinator as the "viewport" advances.
type FeedService struct {
	store       *store.Store
	manager     *likes.Manager
	coordinator *playback.Coordinator
}

// NewFeedService wires the feed use case
func NewFeedService(st *store.Store, manager *likes.Manager, coordinator *playback.Coordinator) *FeedService {
	return &FeedService{
		store:       st,
		manager:     manager,
		coordinator: coordinator,
	}
}

// Browse fetches up to maxPages feed pages, marks every post visible and
// prints each post with its current like state once the batch checks have
// settled
func (fs *FeedService) Browse(ctx context.Context, maxPages, pageSize int) error {
	heading := color.New(color.FgCyan, color.Bold)
	liked := color.New(color.FgRed)

	var posts []api.Post
	for page := 1; page <= maxPages; page++ {
		resp, err := api.GetFeed(page, pageSize)
		if err != nil {
			return fmt.Errorf("failed to fetch feed page %d: %w", page, err)
		}

		for _, post := range resp.Posts {
			fs.manager.MarkVisible(post.ID)
		}
		posts = append(posts, resp.Posts...)

		if !resp.HasMore {
			break
		}
	}

	// Let the batch checker settle before rendering
	fs.manager.Flush()

	heading.Printf("Feed (%d posts)\n\n", len(posts))
	for _, post := range posts {
		marker := "♡"
		if fs.manager.IsLiked(post.ID) {
			marker = liked.Sprint("♥")
		}
		fmt.Printf("%s  @%-16s %-6d likes  %s\n", marker, post.Username, fs.manager.LikeCount(post.ID), post.Caption)
	}

	return nil
}

// Watch browses the feed once, then keeps merging realtime like deltas
// into the store and re-printing affected posts until Ctrl-C or context
// cancellation. src is the live relay connection or a simulator.
func (fs *FeedService) Watch(ctx context.Context, src realtime.Source) error {
	if err := fs.Browse(ctx, 1, 20); err != nil {
		// Still worth watching deltas with an empty feed
		logger.Warn("Initial feed fetch failed", "error", err)
		fmt.Println("Feed unavailable, watching realtime updates only.")
	}

	relay := realtime.NewLikesRelay(fs.store)
	relay.Attach(src)
	defer relay.Detach()

	unsub := fs.store.Subscribe(func(ev store.Event) {
		if ev.PostID == "" {
			return
		}
		logger.Debug("Store event", "kind", ev.Kind, "post_id", ev.PostID)
		fmt.Printf("  %s %s → %d likes\n", time.Now().Format("15:04:05"), ev.PostID, fs.store.LikeCount(ev.PostID))
	})
	defer unsub()

	fmt.Println("\nWatching for like updates. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		fmt.Println("\nStopped watching.")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Advance simulates the viewport moving to a new feed item: the previous
// active video pauses, the new one becomes the single active player, and
// the post is marked visible for its like-status check
func (fs *FeedService) Advance(post api.Post, item *playback.Item) {
	fs.manager.MarkVisible(post.ID)

	if post.MediaType != "video" || item == nil {
		return
	}

	item.Activated()
	fs.coordinator.Activate(item)
}

// LeaveFeed releases the active player so nothing keeps playing once the
// feed screen is gone
func (fs *FeedService) LeaveFeed() {
	fs.coordinator.Release()
}
