package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
)

// ListCommentsParams holds the parameters for a comment listing request
type ListCommentsParams struct {
	// ObjectID is the post, reel, or comment whose comments to list.
	ObjectID string

	// IncludeReplies requests nested reply authors
	// (comments.limit(10){from}) so callers can check for an existing
	// page reply without a second request per comment.
	IncludeReplies bool
}

// ListComments retrieves every comment attached to an object, following
// the next-cursor continuation until the upstream reports no further
// page.
func (c *FacebookClient) ListComments(ctx context.Context, pageToken string, params ListCommentsParams) ([]CommentData, error) {
	log := c.logger.WithFields(logrus.Fields{
		"method":    "ListComments",
		"object_id": params.ObjectID,
	})

	fields := "id,message,from,created_time"
	if params.IncludeReplies {
		fields += ",comments.limit(10){from}"
	}

	query := url.Values{}
	query.Set("access_token", pageToken)
	query.Set("fields", fields)
	query.Set("filter", "stream")
	query.Set("limit", strconv.Itoa(c.config.CommentPageSize))

	var all []CommentData
	next := c.objectURL(params.ObjectID + "/comments")
	useQuery := query

	for next != "" {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := c.makeRequest(ctx, "GET", next, useQuery, nil)
		if err != nil {
			log.WithError(err).Error("failed to fetch comments")
			return nil, err
		}

		listing, err := func() (*CommentListing, error) {
			defer resp.Body.Close()
			if err := c.handleResponse(resp, "list_comments"); err != nil {
				return nil, err
			}
			var listing CommentListing
			if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
				return nil, fmt.Errorf("failed to decode comment listing: %w", err)
			}
			return &listing, nil
		}()
		if err != nil {
			return nil, err
		}

		all = append(all, listing.Data...)

		// paging.next is a fully qualified URL carrying its own cursor
		// and token parameters
		next = ""
		useQuery = nil
		if listing.Paging != nil {
			next = listing.Paging.Next
		}
	}

	log.WithField("comment_count", len(all)).Debug("Fetched comments")
	return all, nil
}
