package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/replykit/pagebot/pkg/webhook"
)

// VerifyWebhook handles GET /webhook
//
// Facebook performs a one-time subscription handshake: it sends
// hub.mode=subscribe with a challenge, and expects the raw challenge
// echoed back when the verify token matches.
func (s *Server) VerifyWebhook(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	if mode == "subscribe" && token == s.verifyToken {
		s.logger.Info("Webhook verified")
		return c.String(http.StatusOK, challenge)
	}

	s.logger.WithFields(logrus.Fields{
		"mode": mode,
	}).Warn("Webhook verification rejected")
	return c.NoContent(http.StatusForbidden)
}

// ReceiveWebhook handles POST /webhook
//
// Always responds 200 to valid page events, even when nothing was
// stored; Facebook retries and eventually disables subscriptions that
// keep failing.
func (s *Server) ReceiveWebhook(c echo.Context) error {
	var event webhook.Event
	if err := c.Bind(&event); err != nil {
		return s.errorJSON(c, http.StatusBadRequest, err)
	}

	result, err := s.ingestor.Ingest(c.Request().Context(), &event)
	if err != nil {
		if err == webhook.ErrNotPageEvent {
			return s.errorJSON(c, http.StatusBadRequest, err)
		}
		s.logger.WithError(err).Error("Webhook ingestion failed")
		return s.errorJSON(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"stored":  result.Stored,
		"skipped": result.Skipped,
	})
}
