package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/replykit/pagebot/pkg/db/models"
	"github.com/replykit/pagebot/pkg/store"
)

// ListPages handles GET /api/pages
func (s *Server) ListPages(c echo.Context) error {
	pages, err := s.pages.List(c.Request().Context())
	if err != nil {
		return s.errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, pages)
}

type createPageRequest struct {
	PageID      string `json:"pageId"`
	Name        string `json:"name"`
	AccessToken string `json:"accessToken"`

	// Pointer so an omitted field defaults to enabled.
	AutoReply *bool `json:"autoReply"`
}

// CreatePage handles POST /api/pages
func (s *Server) CreatePage(c echo.Context) error {
	var req createPageRequest
	if err := c.Bind(&req); err != nil {
		return s.errorJSON(c, http.StatusBadRequest, err)
	}
	if req.PageID == "" || req.AccessToken == "" {
		return s.errorJSON(c, http.StatusBadRequest, fmt.Errorf("pageId and accessToken are required"))
	}

	autoReply := true
	if req.AutoReply != nil {
		autoReply = *req.AutoReply
	}

	page := models.Page{
		PageID:      req.PageID,
		Name:        req.Name,
		AccessToken: req.AccessToken,
		AutoReply:   autoReply,
	}
	if err := s.pages.Create(c.Request().Context(), &page); err != nil {
		return s.errorJSON(c, http.StatusInternalServerError, err)
	}

	s.logger.WithField("page_id", page.PageID).Info("Page registered")
	return c.JSON(http.StatusCreated, page)
}

type updatePageRequest struct {
	ID          uint    `json:"id"`
	Name        *string `json:"name"`
	AccessToken *string `json:"accessToken"`
	AutoReply   *bool   `json:"autoReply"`
	Status      *string `json:"status"`
}

// UpdatePage handles PUT /api/pages
//
// Partial update: only fields present in the body are written. Moving a
// page back to active clears its pause metadata.
func (s *Server) UpdatePage(c echo.Context) error {
	var req updatePageRequest
	if err := c.Bind(&req); err != nil {
		return s.errorJSON(c, http.StatusBadRequest, err)
	}
	if req.ID == 0 {
		return s.errorJSON(c, http.StatusBadRequest, fmt.Errorf("id is required"))
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.AccessToken != nil {
		updates["access_token"] = *req.AccessToken
	}
	if req.AutoReply != nil {
		updates["auto_reply"] = *req.AutoReply
	}
	if req.Status != nil {
		status := models.PageStatus(*req.Status)
		if status != models.PageActive && status != models.PagePaused {
			return s.errorJSON(c, http.StatusBadRequest, fmt.Errorf("invalid status %q", *req.Status))
		}
		updates["status"] = status
		if status == models.PageActive {
			updates["pause_reason"] = ""
		}
	}
	if len(updates) == 0 {
		return s.errorJSON(c, http.StatusBadRequest, fmt.Errorf("no fields to update"))
	}

	if err := s.pages.Update(c.Request().Context(), req.ID, updates); err != nil {
		if errors.Is(err, store.ErrPageNotFound) {
			return s.errorJSON(c, http.StatusNotFound, err)
		}
		return s.errorJSON(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// DeletePage handles DELETE /api/pages
func (s *Server) DeletePage(c echo.Context) error {
	idParam := c.QueryParam("id")
	id, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil || id == 0 {
		return s.errorJSON(c, http.StatusBadRequest, fmt.Errorf("valid id query parameter is required"))
	}

	if err := s.pages.Delete(c.Request().Context(), uint(id)); err != nil {
		if errors.Is(err, store.ErrPageNotFound) {
			return s.errorJSON(c, http.StatusNotFound, err)
		}
		return s.errorJSON(c, http.StatusInternalServerError, err)
	}

	s.logger.WithField("id", id).Info("Page removed")
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
