package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/replykit/pagebot/pkg/db/models"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200

	defaultRunsLimit = 10
	maxRunsLimit     = 100
)

// GetActivity handles GET /api/activity
//
// Query parameters: status (comment status filter), pageId, limit.
func (s *Server) GetActivity(c echo.Context) error {
	var status models.CommentStatus
	if raw := c.QueryParam("status"); raw != "" {
		status = models.CommentStatus(raw)
		switch status {
		case models.StatusPending, models.StatusProcessing,
			models.StatusReplied, models.StatusSkipped, models.StatusFailed:
		default:
			return s.errorJSON(c, http.StatusBadRequest, fmt.Errorf("invalid status %q", raw))
		}
	}

	limit := parseLimit(c.QueryParam("limit"), defaultActivityLimit, maxActivityLimit)

	comments, err := s.comments.Recent(c.Request().Context(), status, c.QueryParam("pageId"), limit)
	if err != nil {
		return s.errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, comments)
}

// GetRuns handles GET /api/runs
func (s *Server) GetRuns(c echo.Context) error {
	limit := parseLimit(c.QueryParam("limit"), defaultRunsLimit, maxRunsLimit)

	runs, err := s.runs.Recent(c.Request().Context(), limit)
	if err != nil {
		return s.errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, runs)
}

func parseLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
