package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"crimson/pkg/files"
	"crimson/pkg/flight"
	"crimson/pkg/pipeline"
	"crimson/pkg/schema"
	"crimson/pkg/storage"
)

type Server struct {
	Echo     *echo.Echo
	Pipeline *pipeline.Pipeline
	Store    *storage.Store
	Files    *files.Store
	Ctx      context.Context

	regen *flight.Group[string, schema.Asset]
}

func NewServer(ctx context.Context, pipe *pipeline.Pipeline, store *storage.Store, fs *files.Store) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	s := &Server{
		Echo:     e,
		Pipeline: pipe,
		Store:    store,
		Files:    fs,
		Ctx:      ctx,
	}
	s.regen = flight.New(time.Minute, s.regenerateAsset)

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/healthz", s.handleHealth)

	api := s.Echo.Group("/api")
	api.POST("/generate", s.handleGenerate) // SSE progress stream
	api.GET("/documents", s.handleListDocuments)
	api.GET("/documents/:id", s.handleGetDocument)
	api.DELETE("/documents/:id", s.handleDeleteDocument)
	api.POST("/documents/:id/assets/:role/regenerate", s.handleRegenerate)

	if s.Files != nil {
		s.Echo.Static("/images", s.Files.Root())
	}
}

func (s *Server) Start(addr string) error {
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(200, map[string]string{"status": "ok"})
}
