package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"stockadvisor/internal/logger"
	"stockadvisor/internal/session"
)

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type analyzeRequest struct {
	Symbol string `json:"symbol"`
}

type compareRequest struct {
	Symbols []string `json:"symbols"`
}

// POST /api/chat
func (s *Server) handleChat(c echo.Context) error {
	ctx := c.Request().Context()

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.UserID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id is required"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	result, err := s.orch.ProcessMessage(ctx, req.UserID, req.Message)
	if err != nil {
		logger.ErrorWithErr(ctx, "Chat turn failed", err, "user_id", req.UserID)
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(http.StatusOK, result)
}

// POST /api/analyze
func (s *Server) handleAnalyze(c echo.Context) error {
	ctx := c.Request().Context()

	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Symbol == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "symbol is required"})
	}

	result := s.orch.AnalyzeSymbol(ctx, req.Symbol)
	if !result.Success {
		return c.JSON(http.StatusBadRequest, result)
	}
	return c.JSON(http.StatusOK, result)
}

// POST /api/compare
func (s *Server) handleCompare(c echo.Context) error {
	ctx := c.Request().Context()

	var req compareRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := s.orch.CompareSymbols(ctx, req.Symbols)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

// GET /api/news?limit=
func (s *Server) handleNews(c echo.Context) error {
	ctx := c.Request().Context()

	limit := s.cfg.News.MarketLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
		}
		limit = n
	}

	result := s.orch.MarketNews(ctx, limit)
	if !result.Success {
		return c.JSON(http.StatusBadRequest, result)
	}
	return c.JSON(http.StatusOK, result)
}

// GET /api/tools
func (s *Server) handleTools(c echo.Context) error {
	tools := s.orch.Tools()
	return c.JSON(http.StatusOK, map[string]any{
		"tools": tools,
		"count": len(tools),
	})
}

// GET /api/health
func (s *Server) handleHealth(c echo.Context) error {
	ctx := c.Request().Context()

	ollamaUp := s.orch.Healthy(ctx)
	status := "healthy"
	if !ollamaUp {
		status = "degraded"
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":           status,
		"ollama_available": ollamaUp,
		"timestamp":        time.Now().Format(time.RFC3339),
	})
}

// DELETE /api/context/:user_id
func (s *Server) handleClearContext(c echo.Context) error {
	userID := c.Param("user_id")
	s.orch.ClearSession(userID)
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Context cleared for user " + userID,
	})
}

// GET /api/watchlist/:user_id
func (s *Server) handleGetWatchlist(c echo.Context) error {
	userID := c.Param("user_id")

	var watched []string
	s.sessions.With(userID, func(sess *session.Session) {
		watched = append([]string{}, sess.Watchlist...)
	})
	return c.JSON(http.StatusOK, map[string]any{
		"user_id": userID,
		"watched": watched,
	})
}

// POST /api/watchlist/:user_id/:symbol
func (s *Server) handleWatch(c echo.Context) error {
	userID := c.Param("user_id")
	symbol := c.Param("symbol")
	if strings.TrimSpace(symbol) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "symbol is required"})
	}

	var watched []string
	s.sessions.With(userID, func(sess *session.Session) {
		sess.WatchStock(symbol)
		watched = append([]string{}, sess.Watchlist...)
	})
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"user_id": userID,
		"watched": watched,
	})
}

// DELETE /api/watchlist/:user_id/:symbol
func (s *Server) handleUnwatch(c echo.Context) error {
	userID := c.Param("user_id")
	symbol := c.Param("symbol")

	var watched []string
	s.sessions.With(userID, func(sess *session.Session) {
		sess.UnwatchStock(symbol)
		watched = append([]string{}, sess.Watchlist...)
	})
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"user_id": userID,
		"watched": watched,
	})
}
