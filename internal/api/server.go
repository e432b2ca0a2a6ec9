package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/replykit/pagebot/pkg/orchestrator"
	"github.com/replykit/pagebot/pkg/store"
	"github.com/replykit/pagebot/pkg/webhook"
)

// Server exposes the management and ingestion HTTP surface: the run
// trigger, the webhook endpoint, settings/pages CRUD, and the read-only
// activity/runs/stats queries.
type Server struct {
	echo   *echo.Echo
	logger *logrus.Logger

	orchestrator *orchestrator.Orchestrator
	ingestor     *webhook.Ingestor
	comments     *store.CommentStore
	pages        *store.PageStore
	settings     *store.SettingsStore
	runs         *store.RunStore

	verifyToken string
}

type ServerConfig struct {
	Orchestrator *orchestrator.Orchestrator
	Ingestor     *webhook.Ingestor
	Comments     *store.CommentStore
	Pages        *store.PageStore
	Settings     *store.SettingsStore
	Runs         *store.RunStore
	Logger       *logrus.Logger

	// VerifyToken is the shared token for the webhook verification
	// handshake.
	VerifyToken string
}

func NewServer(config ServerConfig) (*Server, error) {
	if config.Orchestrator == nil {
		return nil, fmt.Errorf("orchestrator is required")
	}
	if config.Ingestor == nil {
		return nil, fmt.Errorf("ingestor is required")
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:         e,
		logger:       config.Logger,
		orchestrator: config.Orchestrator,
		ingestor:     config.Ingestor,
		comments:     config.Comments,
		pages:        config.Pages,
		settings:     config.Settings,
		runs:         config.Runs,
		verifyToken:  config.VerifyToken,
	}

	s.initRoutes()
	return s, nil
}

func (s *Server) initRoutes() {
	s.echo.GET("/api/health", s.GetHealth)

	s.echo.POST("/api/process-replies", s.TriggerRun)

	s.echo.GET("/webhook", s.VerifyWebhook)
	s.echo.POST("/webhook", s.ReceiveWebhook)

	s.echo.GET("/api/settings", s.GetSettings)
	s.echo.POST("/api/settings", s.UpdateSettings)

	s.echo.GET("/api/pages", s.ListPages)
	s.echo.POST("/api/pages", s.CreatePage)
	s.echo.PUT("/api/pages", s.UpdatePage)
	s.echo.DELETE("/api/pages", s.DeletePage)

	s.echo.GET("/api/activity", s.GetActivity)
	s.echo.GET("/api/runs", s.GetRuns)
	s.echo.GET("/api/stats", s.GetStats)
}

// Start begins serving on the given address, blocking until shutdown.
func (s *Server) Start(addr string) error {
	s.logger.WithField("addr", addr).Info("Starting HTTP server")
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying router, primarily for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// GetHealth handles GET /api/health
func (s *Server) GetHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) errorJSON(c echo.Context, status int, err error) error {
	return c.JSON(status, errorResponse{Error: err.Error()})
}
