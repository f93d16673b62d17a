package api

import (
	"fmt"

	"github.com/clipstream/clipstream-go/pkg/client"
	clierrors "github.com/clipstream/clipstream-go/pkg/errors"
	"github.com/clipstream/clipstream-go/pkg/logger"
)

// Post is a single feed item
type Post struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Caption      string `json:"caption"`
	MediaType    string `json:"media_type"` // "video" or "image"
	MediaURL     string `json:"media_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	LikeCount    uint64 `json:"like_count"`
	CommentCount uint64 `json:"comment_count"`
	CreatedAt    string `json:"created_at"`
}

// FeedResponse is a page of feed posts
type FeedResponse struct {
	Posts    []Post `json:"posts"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	HasMore  bool   `json:"has_more"`
}

// GetFeed retrieves a page of the user's feed
func GetFeed(page, pageSize int) (*FeedResponse, error) {
	logger.Debug("Fetching feed", "page", page, "page_size", pageSize)

	var response FeedResponse
	resp, err := client.GetClient().
		R().
		SetQueryParams(map[string]string{
			"page":      fmt.Sprintf("%d", page),
			"page_size": fmt.Sprintf("%d", pageSize),
		}).
		SetResult(&response).
		Get("/api/v1/feed")

	if err != nil {
		return nil, clierrors.NetworkError("failed to fetch feed", err)
	}

	if !resp.IsSuccess() {
		return nil, clierrors.HTTPError(resp.StatusCode(), resp.Status())
	}

	return &response, nil
}
