package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/replykit/pagebot/pkg/store"
)

// StatsResponse aggregates comment and page counters for the dashboard.
type StatsResponse struct {
	store.Stats

	TotalPages  int64   `json:"totalPages"`
	ActivePages int64   `json:"activePages"`
	ReplyRate   float64 `json:"replyRate"`
}

// GetStats handles GET /api/stats
//
// Optional pageId query parameter scopes the comment counters to one
// page; page counts are always global.
func (s *Server) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := s.comments.CountStats(ctx, c.QueryParam("pageId"))
	if err != nil {
		return s.errorJSON(c, http.StatusInternalServerError, err)
	}

	total, active, err := s.pages.Counts(ctx)
	if err != nil {
		return s.errorJSON(c, http.StatusInternalServerError, err)
	}

	resp := StatsResponse{
		Stats:       stats,
		TotalPages:  total,
		ActivePages: active,
	}
	if stats.TotalComments > 0 {
		resp.ReplyRate = float64(stats.TotalReplies) / float64(stats.TotalComments) * 100
	}

	return c.JSON(http.StatusOK, resp)
}
