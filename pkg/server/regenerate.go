package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"crimson/pkg/pipeline"
	"crimson/pkg/schema"
	"crimson/pkg/storage"
)

// POST /api/documents/:id/assets/:role/regenerate
//
// Recomputes the prompt for one asset from the stored document and
// regenerates just that image. The escalation stage is a pure function of
// the stored section position and intensity, so the regenerated image stays
// visually consistent with its siblings. Concurrent requests for the same
// asset are coalesced into one backend call.
func (s *Server) handleRegenerate(c echo.Context) error {
	if s.Store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage not configured")
	}
	if s.Pipeline == nil || s.Pipeline.Images == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "image backend not configured")
	}

	id, role := c.Param("id"), c.Param("role")
	asset, err := s.regen.Force(id + "/" + role)
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	if err != nil {
		log.Error("asset regeneration failed", "document", id, "role", role, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "regeneration failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, asset)
}

// regenerateAsset is the flight-group work function, keyed
// "{documentID}/{role}". It runs on the server context so a client that
// gives up does not abandon a generation siblings may be waiting on.
func (s *Server) regenerateAsset(key string) (schema.Asset, error) {
	id, role, ok := strings.Cut(key, "/")
	if !ok {
		return schema.Asset{}, fmt.Errorf("malformed asset key %q", key)
	}

	doc, err := s.Store.GetDocument(s.Ctx, id)
	if err != nil {
		return schema.Asset{}, err
	}

	req, err := pipeline.ImageRequest(doc, role)
	if err != nil {
		return schema.Asset{}, err
	}

	asset := schema.Asset{DocumentID: id, Role: role, Prompt: req.Prompt}
	data, err := s.Pipeline.Images.Generate(s.Ctx, req)
	if err != nil {
		asset.Error = err.Error()
		_ = s.Store.UpsertAsset(s.Ctx, &asset)
		return schema.Asset{}, err
	}

	if s.Files != nil {
		path, err := s.Files.Store(key, data)
		if err != nil {
			return schema.Asset{}, fmt.Errorf("storing asset: %w", err)
		}
		asset.Path = path
	}
	if err := s.Store.UpsertAsset(s.Ctx, &asset); err != nil {
		return schema.Asset{}, err
	}

	log.Info("asset regenerated", "document", id, "role", role, "path", asset.Path)
	return asset, nil
}
