package facebook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
)

// PostReply creates a reply comment attached to targetID (a comment or
// post id) and returns the platform-assigned id of the new reply.
func (c *FacebookClient) PostReply(ctx context.Context, pageToken, targetID, message string) (string, error) {
	log := c.logger.WithFields(logrus.Fields{
		"method":    "PostReply",
		"target_id": targetID,
	})
	log.Debug("attempting to post reply")

	// Pace outbound writes
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body := map[string]string{
		"message":      message,
		"access_token": pageToken,
	}

	resp, err := c.makeRequest(ctx, "POST", c.objectURL(targetID+"/comments"), nil, body)
	if err != nil {
		log.WithError(err).Error("failed to post reply")
		return "", err
	}
	defer resp.Body.Close()

	if err := c.handleResponse(resp, "post_reply"); err != nil {
		return "", err
	}

	var posted postResponse
	if err := json.NewDecoder(resp.Body).Decode(&posted); err != nil {
		return "", fmt.Errorf("failed to decode post response: %w", err)
	}
	if posted.ID == "" {
		return "", &APIError{Op: "post_reply", Status: resp.StatusCode, Body: "response missing reply id"}
	}

	log.WithField("reply_comment_id", posted.ID).Debug("successfully posted reply")
	return posted.ID, nil
}
