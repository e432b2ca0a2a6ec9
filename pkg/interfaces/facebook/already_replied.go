package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"
)

// AlreadyReplied lists the replies attached to targetID and reports
// whether any reply's author is the page itself. An empty or absent
// reply list means false. Transport failure surfaces as an error so the
// caller decides the fallback policy.
func (c *FacebookClient) AlreadyReplied(ctx context.Context, pageToken, targetID, pageID string) (bool, error) {
	log := c.logger.WithFields(logrus.Fields{
		"method":    "AlreadyReplied",
		"target_id": targetID,
		"page_id":   pageID,
	})

	query := url.Values{}
	query.Set("access_token", pageToken)
	query.Set("fields", "from")

	resp, err := c.makeRequest(ctx, "GET", c.objectURL(targetID+"/comments"), query, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if err := c.handleResponse(resp, "list_comments"); err != nil {
		return false, err
	}

	var listing CommentListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return false, fmt.Errorf("failed to decode reply listing: %w", err)
	}

	for _, reply := range listing.Data {
		if reply.From != nil && reply.From.ID == pageID {
			log.Debug("Page has already replied")
			return true, nil
		}
	}

	return false, nil
}

// PageRepliedIn checks nested reply data already fetched with a comment
// listing. It reports (replied, known): known is false when the listing
// did not include nested replies, in which case the caller should fall
// back to AlreadyReplied.
func PageRepliedIn(comment CommentData, pageID string) (replied, known bool) {
	if comment.Comments == nil {
		return false, false
	}
	for _, reply := range comment.Comments.Data {
		if reply.From != nil && reply.From.ID == pageID {
			return true, true
		}
	}
	return false, true
}
