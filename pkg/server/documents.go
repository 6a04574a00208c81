package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"crimson/pkg/schema"
	"crimson/pkg/storage"
	"crimson/pkg/utils"
)

// GET /api/documents
func (s *Server) handleListDocuments(c echo.Context) error {
	if s.Store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage not configured")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	docs, err := s.Store.ListDocuments(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, utils.ErrJSON(err.Error()))
	}
	return c.JSON(http.StatusOK, docs)
}

// GET /api/documents/:id
func (s *Server) handleGetDocument(c echo.Context) error {
	if s.Store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage not configured")
	}
	ctx := c.Request().Context()

	doc, err := s.Store.GetDocument(ctx, c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, utils.ErrJSON(err.Error()))
	}

	assets, err := s.Store.ListAssets(ctx, doc.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, utils.ErrJSON(err.Error()))
	}
	return c.JSON(http.StatusOK, schema.Result{Document: doc, Assets: assets})
}

// DELETE /api/documents/:id
func (s *Server) handleDeleteDocument(c echo.Context) error {
	if s.Store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage not configured")
	}
	id := c.Param("id")
	if _, err := s.Store.GetDocument(c.Request().Context(), id); errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	if err := s.Store.DeleteDocument(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, utils.ErrJSON(err.Error()))
	}
	if s.Files != nil {
		_ = s.Files.Delete(id)
	}
	return c.NoContent(http.StatusNoContent)
}
