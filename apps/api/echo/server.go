package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/session"
)

type Server struct {
	conf     *core.Config
	logger   core.Logger
	app      *echo.Echo
	auth     *auth
	disp     *session.Dispatcher
	svc      session.Services
	errors   chan error
	shutdown chan os.Signal
}

// NewServer returns the JSON front-end. Every change goes through disp, reads may use svc directly.
func NewServer(conf *core.Config, logger core.Logger, disp *session.Dispatcher, svc session.Services) *Server {
	s := &Server{
		conf:     conf,
		logger:   logger,
		app:      echo.New(),
		auth:     newAuth(conf),
		disp:     disp,
		svc:      svc,
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger)
	s.app.Debug = s.conf.Debug && !s.conf.TestMode

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.auth.config)

	registerPaperAPI(v1, jwt, s.auth, s.disp, s.svc)
}

// Start listens until the server is shut down. Failures are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Paper API!")
}
