package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/posbridge/internal/device"
	"github.com/nerrad567/posbridge/internal/events"
	"github.com/nerrad567/posbridge/internal/infrastructure/config"
	"github.com/nerrad567/posbridge/internal/infrastructure/database"
	"github.com/nerrad567/posbridge/internal/infrastructure/logging"
	"github.com/nerrad567/posbridge/internal/journal"
	"github.com/nerrad567/posbridge/internal/session"
)

// gracefulShutdownTimeout bounds how long Close waits for in-flight HTTP requests.
const gracefulShutdownTimeout = 10 * time.Second

// TokenValidator checks a presented token against the shared secret.
type TokenValidator interface {
	Validate(token string) bool
}

// ConnectionStatus reports whether an optional upstream client is connected.
type ConnectionStatus interface {
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
// Journal, DB, MQTT and Bus are optional.
type Deps struct {
	Server     config.ServerConfig
	WS         config.WebSocketConfig
	Logger     *logging.Logger
	Registry   *device.Registry
	Dispatcher *session.Dispatcher
	Gate       TokenValidator
	Journal    journal.Repository
	DB         *database.DB
	MQTT       ConnectionStatus
	Bus        *events.Bus
	Version    string
}

// Server is the HTTP and websocket front end of the bridge.
type Server struct {
	cfg        config.ServerConfig
	wsCfg      config.WebSocketConfig
	logger     *logging.Logger
	registry   *device.Registry
	dispatcher *session.Dispatcher
	gate       TokenValidator
	journal    journal.Repository
	db         *database.DB
	mqtt       ConnectionStatus
	bus        *events.Bus
	version    string

	hub       *Hub
	startTime time.Time

	// ctx is the parent of every connection context; cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates a server. It does not listen until Start is called, but
// Handler can be used immediately.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("device registry is required")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if deps.Gate == nil {
		return nil, fmt.Errorf("security gate is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:        deps.Server,
		wsCfg:      deps.WS,
		logger:     deps.Logger,
		registry:   deps.Registry,
		dispatcher: deps.Dispatcher,
		gate:       deps.Gate,
		journal:    deps.Journal,
		db:         deps.DB,
		mqtt:       deps.MQTT,
		bus:        deps.Bus,
		version:    deps.Version,
		hub:        NewHub(deps.Logger),
		startTime:  time.Now(),
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Handler returns the router serving the websocket endpoint and /api/v1.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start binds the listener and serves in the background. A bind failure is
// returned here so the caller can exit.
func (s *Server) Start(_ context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	s.mu.Lock()
	s.server = srv
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("websocket server listening", "address", ln.Addr().String(), "path", s.wsCfg.Path)

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close stops accepting, closes every websocket connection and waits up to
// gracefulShutdownTimeout for in-flight HTTP requests.
func (s *Server) Close() error {
	s.cancel()
	s.hub.CloseAll()

	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// Hub returns the websocket connection tracker.
func (s *Server) Hub() *Hub {
	return s.hub
}
