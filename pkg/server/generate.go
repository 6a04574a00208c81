package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"crimson/pkg/schema"
	"crimson/pkg/utils"
)

// sseEmitter maps pipeline events onto named SSE events.
type sseEmitter struct {
	w *utils.SSEWriter
}

func (e sseEmitter) Status(s schema.Status) error { return e.w.Event(schema.EventStatus, s) }
func (e sseEmitter) Result(r schema.Result) error { return e.w.Event(schema.EventResult, r) }
func (e sseEmitter) Error(v schema.Error) error   { return e.w.Event(schema.EventError, v) }

// POST /api/generate
func (s *Server) handleGenerate(c echo.Context) error {
	var req schema.GenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if req.Intensity < 0 || req.Intensity > 10 {
		return echo.NewHTTPError(http.StatusBadRequest, "intensity must be 1-10, or 0 for the default")
	}

	log.Info("starting generation", "title", req.Title, "story_type", req.StoryType,
		"intensity", req.Intensity, "length", req.Length)

	w := utils.NewSSEWriter(c)
	defer w.Close()

	if err := s.Pipeline.Run(c.Request().Context(), &req, sseEmitter{w}); err != nil {
		// already surfaced to the client as an error event
		log.Error("generation failed", "error", err)
	}
	return nil
}
