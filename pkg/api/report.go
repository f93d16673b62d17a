package api

import (
	"fmt"

	"github.com/clipstream/clipstream-go/pkg/client"
	clierrors "github.com/clipstream/clipstream-go/pkg/errors"
	"github.com/clipstream/clipstream-go/pkg/logger"
)

// ReportRequest is the request body for reporting a post
type ReportRequest struct {
	Reason      string `json:"reason"`
	Description string `json:"description,omitempty"`
}

// ReportPost reports a post for moderation. Reporting the same post twice
// returns a conflict the caller can distinguish from ordinary failures.
func ReportPost(postID, reason, description string) error {
	logger.Debug("Reporting post", "post_id", postID, "reason", reason)

	resp, err := client.GetClient().
		R().
		SetBody(ReportRequest{Reason: reason, Description: description}).
		Post(fmt.Sprintf("/api/v1/posts/%s/report", postID))

	if err != nil {
		return clierrors.NetworkError("failed to report post", err)
	}

	if resp.StatusCode() == 409 {
		return clierrors.AlreadyDoneError("you have already reported this post")
	}

	if !resp.IsSuccess() {
		return clierrors.HTTPError(resp.StatusCode(), resp.Status())
	}

	return nil
}
