// Package server exposes the orchestrator over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/zen-systems/convogate/pkg/orchestrator"
	"github.com/zen-systems/convogate/pkg/outcome"
)

// Server hosts the chat endpoint in front of an orchestrator.
type Server struct {
	echo *echo.Echo
	orch *orchestrator.Orchestrator
}

// ChatRequest is the inbound message body.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the final answer plus the full orchestration result.
type ChatResponse struct {
	Messages []string        `json:"messages"`
	Result   *outcome.Result `json:"result"`
}

// New creates the HTTP server for an orchestrator.
func New(orch *orchestrator.Orchestrator) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, orch: orch}
	e.POST("/chat", s.handleChat)
	e.GET("/healthz", s.handleHealth)
	return s
}

// Start begins serving on the given address and blocks.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler returns the underlying HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := s.orch.Handle(c.Request().Context(), req.Message)
	if err != nil {
		if orchestrator.IsValidation(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		var exhausted *orchestrator.ExhaustedError
		if errors.As(err, &exhausted) {
			return echo.NewHTTPError(http.StatusBadGateway, exhausted.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, ChatResponse{
		Messages: []string{result.FinalAnswer},
		Result:   result,
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
