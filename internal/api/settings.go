package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/replykit/pagebot/pkg/db/models"
)

// GetSettings handles GET /api/settings
//
// Returns stored settings, or the defaults when none have been saved
// yet.
func (s *Server) GetSettings(c echo.Context) error {
	settings, err := s.settings.Load(c.Request().Context())
	if err != nil {
		return s.errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles POST /api/settings
func (s *Server) UpdateSettings(c echo.Context) error {
	var settings models.Settings
	if err := c.Bind(&settings); err != nil {
		return s.errorJSON(c, http.StatusBadRequest, err)
	}

	settings.Normalize()
	if err := s.settings.Save(c.Request().Context(), &settings); err != nil {
		return s.errorJSON(c, http.StatusInternalServerError, err)
	}

	s.logger.Info("Settings updated")
	return c.JSON(http.StatusOK, settings)
}
