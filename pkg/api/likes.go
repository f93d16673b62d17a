package api

import (
	"fmt"

	"github.com/clipstream/clipstream-go/pkg/client"
	clierrors "github.com/clipstream/clipstream-go/pkg/errors"
	"github.com/clipstream/clipstream-go/pkg/logger"
)

// MaxBatchSize is the largest number of post IDs accepted by the
// batch-status endpoint in a single request.
const MaxBatchSize = 100

// LikeStatus is the server-authoritative like state for one post
type LikeStatus struct {
	IsLiked   bool   `json:"is_liked"`
	LikeCount uint64 `json:"like_count"`
}

// BatchStatusRequest is the request body for a batch like-status check
type BatchStatusRequest struct {
	PostIDs []string `json:"post_ids"`
}

// BatchStatusResponse maps post IDs to their like status
type BatchStatusResponse struct {
	Statuses map[string]LikeStatus `json:"statuses"`
}

// ToggleLike flips the current user's like on a post and returns the
// authoritative server state
func ToggleLike(postID string) (*LikeStatus, error) {
	logger.Debug("Toggling like", "post_id", postID)

	var status LikeStatus
	resp, err := client.GetClient().
		R().
		SetResult(&status).
		Post(fmt.Sprintf("/api/v1/likes/posts/%s/toggle", postID))

	if err != nil {
		return nil, clierrors.NetworkError("failed to toggle like", err)
	}

	if !resp.IsSuccess() {
		return nil, clierrors.HTTPError(resp.StatusCode(), resp.Status())
	}

	return &status, nil
}

// GetLikeStatus fetches the like status for a single post. Used as a
// fallback when a batch check is not warranted.
func GetLikeStatus(postID string) (*LikeStatus, error) {
	logger.Debug("Fetching like status", "post_id", postID)

	var status LikeStatus
	resp, err := client.GetClient().
		R().
		SetResult(&status).
		Get(fmt.Sprintf("/api/v1/likes/posts/%s/status", postID))

	if err != nil {
		return nil, clierrors.NetworkError("failed to fetch like status", err)
	}

	if !resp.IsSuccess() {
		return nil, clierrors.HTTPError(resp.StatusCode(), resp.Status())
	}

	return &status, nil
}

// BatchStatus resolves like status for up to MaxBatchSize posts in one call
func BatchStatus(postIDs []string) (map[string]LikeStatus, error) {
	if len(postIDs) == 0 {
		return map[string]LikeStatus{}, nil
	}
	if len(postIDs) > MaxBatchSize {
		return nil, clierrors.ValidationError(
			fmt.Sprintf("batch-status accepts at most %d post IDs, got %d", MaxBatchSize, len(postIDs)))
	}

	logger.Debug("Checking like status batch", "count", len(postIDs))

	var response BatchStatusResponse
	resp, err := client.GetClient().
		R().
		SetBody(BatchStatusRequest{PostIDs: postIDs}).
		SetResult(&response).
		Post("/api/v1/likes/posts/batch-status")

	if err != nil {
		return nil, clierrors.NetworkError("failed to check like statuses", err)
	}

	if !resp.IsSuccess() {
		return nil, clierrors.HTTPError(resp.StatusCode(), resp.Status())
	}

	if response.Statuses == nil {
		response.Statuses = map[string]LikeStatus{}
	}

	return response.Statuses, nil
}
