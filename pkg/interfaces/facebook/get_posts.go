package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
)

// ContentType selects which content listing to scan.
type ContentType string

const (
	ContentPost ContentType = "post"
	ContentReel ContentType = "reel"
)

// ListContent enumerates recent content ids for a page, up to limit.
// The type-specific listing (posts or reels) is tried first; when it
// yields nothing, the general feed listing is used as a fallback so a
// page that only publishes the other kind still gets scanned.
func (c *FacebookClient) ListContent(ctx context.Context, pageToken, pageID string, contentType ContentType, limit int) ([]ContentItem, error) {
	log := c.logger.WithFields(logrus.Fields{
		"method":       "ListContent",
		"page_id":      pageID,
		"content_type": contentType,
	})

	if limit <= 0 {
		limit = c.config.PostScanLimit
	}

	edge := "posts"
	if contentType == ContentReel {
		edge = "video_reels"
	}

	items, err := c.listEdge(ctx, pageToken, pageID, edge, limit)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		log.Debug("Type-specific listing empty, falling back to feed")
		items, err = c.listEdge(ctx, pageToken, pageID, "feed", limit)
		if err != nil {
			return nil, err
		}
	}

	log.WithField("content_count", len(items)).Debug("Fetched content listing")
	return items, nil
}

func (c *FacebookClient) listEdge(ctx context.Context, pageToken, pageID, edge string, limit int) ([]ContentItem, error) {
	query := url.Values{}
	query.Set("access_token", pageToken)
	query.Set("fields", "id")
	query.Set("limit", strconv.Itoa(limit))

	resp, err := c.makeRequest(ctx, "GET", c.objectURL(pageID+"/"+edge), query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.handleResponse(resp, "list_posts"); err != nil {
		return nil, err
	}

	var listing ContentListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode content listing: %w", err)
	}

	if len(listing.Data) > limit {
		listing.Data = listing.Data[:limit]
	}
	return listing.Data, nil
}
