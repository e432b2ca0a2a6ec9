package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/replykit/pagebot/pkg/interfaces/facebook"
	"github.com/replykit/pagebot/pkg/orchestrator"
)

// TriggerRequest selects what a manually triggered run processes. With
// no body the run behaves exactly like a scheduled one, minus the
// global-pause check.
type TriggerRequest struct {
	ShadowMode  bool   `json:"shadowMode"`
	PageID      string `json:"pageId"`
	PostID      string `json:"postId"`
	Limit       int    `json:"limit"`
	ContentType string `json:"contentType"`
	AccessToken string `json:"accessToken"`
}

type TriggerResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Results *orchestrator.Result `json:"results"`
}

// TriggerRun handles POST /api/process-replies
func (s *Server) TriggerRun(c echo.Context) error {
	var req TriggerRequest
	if err := c.Bind(&req); err != nil {
		return s.errorJSON(c, http.StatusBadRequest, err)
	}

	opts := orchestrator.Options{
		Manual:      true,
		ShadowMode:  req.ShadowMode,
		PageID:      req.PageID,
		PostID:      req.PostID,
		Limit:       req.Limit,
		ContentType: facebook.ContentType(req.ContentType),
		AccessToken: req.AccessToken,
	}

	result, err := s.orchestrator.Run(c.Request().Context(), opts)
	if err != nil {
		s.logger.WithError(err).Error("Manual run failed")
		return s.errorJSON(c, http.StatusInternalServerError, err)
	}

	s.logger.WithFields(logrus.Fields{
		"processed": result.Processed,
		"replied":   result.Replied,
		"skipped":   result.Skipped,
		"failed":    result.Failed,
	}).Info("Manual run completed")

	return c.JSON(http.StatusOK, TriggerResponse{
		Success: true,
		Message: result.Message,
		Results: result,
	})
}
