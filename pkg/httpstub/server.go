package httpstub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/getmockd/stubserver/pkg/expect"
	"github.com/getmockd/stubserver/pkg/logging"
	"github.com/getmockd/stubserver/pkg/requestlog"
)

// DefaultHost is the interface stub servers bind to.
const DefaultHost = "localhost"

// shutdownTimeout bounds how long Stop waits for in-flight handlers before
// closing their connections.
const shutdownTimeout = 5 * time.Second

type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// Server is an HTTP stub server. It owns its expectation registry.
type Server struct {
	host     string
	port     int
	log      *slog.Logger
	registry *expect.Registry
	requests requestlog.Logger
	handler  *Handler
	baseDir  string

	mu         sync.Mutex
	state      state
	listener   net.Listener
	httpServer *http.Server
	done       chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithHost overrides the bind host. Defaults to localhost.
func WithHost(host string) Option {
	return func(s *Server) {
		s.host = host
	}
}

// WithBaseDir resolves relative file response paths against dir.
func WithBaseDir(dir string) Option {
	return func(s *Server) {
		s.baseDir = dir
	}
}

// WithRequestLog records served requests to l instead of a private
// in-memory store.
func WithRequestLog(l requestlog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.requests = l
		}
	}
}

// New creates a server that will listen on port. Port 0 asks the OS for a
// free port; Port reports it after Run.
func New(port int, opts ...Option) *Server {
	s := &Server{
		host:     DefaultHost,
		port:     port,
		log:      logging.Nop(),
		registry: expect.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.requests == nil {
		s.requests = requestlog.NewMemoryStore(requestlog.DefaultCapacity)
	}
	s.handler = NewHandler(s.registry,
		WithHandlerLogger(s.log),
		WithHandlerRequestLog(s.requests),
		WithHandlerBaseDir(s.baseDir),
	)
	return s
}

// Run binds the listener and starts serving in the background. The socket
// is accepting connections when Run returns.
func (s *Server) Run() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateRunning {
		return ErrAlreadyRunning
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("httpstub: listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}
	done := make(chan struct{})

	s.listener = ln
	s.httpServer = srv
	s.done = done
	s.state = stateRunning

	s.log.Info("starting HTTP stub", "addr", ln.Addr().String(), "expectations", s.registry.Len())
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP stub serve error", "error", err)
		}
	}()
	return nil
}

// Stop shuts the server down and returns once the serve loop and every
// in-flight handler have finished.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateRunning {
		return ErrNotRunning
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
		if err := s.httpServer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("HTTP close: %w", err))
		}
	}
	<-s.done

	s.state = stateStopped
	s.log.Info("stopped HTTP stub", "addr", s.listener.Addr().String(), "pending", len(s.registry.Pending()))
	return errors.Join(errs...)
}

// Verify reports the expectations no request consumed as a
// *expect.VerificationError. It must be called after Stop.
func (s *Server) Verify() error {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()

	if st != stateStopped {
		return ErrVerifyBeforeStop
	}
	return s.registry.Verify()
}

// Expect starts declaring an expectation for method and urlPattern.
func (s *Server) Expect(method, urlPattern string) *ExpectationBuilder {
	return &ExpectationBuilder{
		server: s,
		exp: &expect.Expectation{
			Matcher: expect.Matcher{Method: method, URLPattern: urlPattern},
		},
	}
}

// Add registers a fully built expectation.
func (s *Server) Add(e *expect.Expectation) error {
	if err := s.registry.Add(e); err != nil {
		return err
	}
	s.log.Debug("expectation added", "expectation_id", e.ID, "method", e.Matcher.Method, "url", e.Matcher.URLPattern)
	return nil
}

// Registry returns the server's expectation registry.
func (s *Server) Registry() *expect.Registry {
	return s.registry
}

// Handler returns the request handler, for use without a listener.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the bound address, or nil before Run.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Port returns the bound port, or the configured port before Run.
func (s *Server) Port() int {
	if addr, ok := s.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return s.port
}

// URL returns the base URL clients should use.
func (s *Server) URL() string {
	return "http://" + net.JoinHostPort(s.host, strconv.Itoa(s.Port()))
}

// Requests returns the recorded requests, oldest first. It is empty when a
// request log without query support was supplied.
func (s *Server) Requests() []*requestlog.Entry {
	if store, ok := s.requests.(requestlog.Store); ok {
		return store.List(&requestlog.Filter{Protocol: requestlog.ProtocolHTTP})
	}
	return nil
}
