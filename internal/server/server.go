package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"stockadvisor/internal/agent"
	"stockadvisor/internal/session"
	"stockadvisor/internal/store"
)

// Server is the HTTP front of the advisor: a thin echo layer over the
// orchestrator and the session store.
type Server struct {
	echo     *echo.Echo
	orch     *agent.Orchestrator
	sessions *session.Store
	cfg      *store.Config
}

func New(orch *agent.Orchestrator, sessions *session.Store, cfg *store.Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Server.FrontendOrigin},
		AllowMethods: []string{echo.GET, echo.POST, echo.DELETE},
	}))

	s := &Server{echo: e, orch: orch, sessions: sessions, cfg: cfg}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.echo.Group("/api")
	api.POST("/chat", s.handleChat)
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/compare", s.handleCompare)
	api.GET("/news", s.handleNews)
	api.GET("/tools", s.handleTools)
	api.GET("/health", s.handleHealth)
	api.DELETE("/context/:user_id", s.handleClearContext)

	api.GET("/watchlist/:user_id", s.handleGetWatchlist)
	api.POST("/watchlist/:user_id/:symbol", s.handleWatch)
	api.DELETE("/watchlist/:user_id/:symbol", s.handleUnwatch)
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
