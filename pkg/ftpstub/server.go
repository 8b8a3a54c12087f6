package ftpstub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net"
	"strconv"
	"sync"

	"github.com/getmockd/stubserver/pkg/filestore"
	"github.com/getmockd/stubserver/pkg/logging"
	"github.com/getmockd/stubserver/pkg/requestlog"
)

// DefaultHost is the interface stub servers bind to.
const DefaultHost = "localhost"

// DefaultWelcome is the greeting sent with the 220 reply.
const DefaultWelcome = "FTP stub server ready."

type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// Server is an FTP stub server backed by an in-memory file store.
type Server struct {
	host     string
	port     int
	log      *slog.Logger
	store    *filestore.Store
	welcome  string
	requests requestlog.Logger

	mu       sync.Mutex // lifecycle
	state    state
	listener net.Listener

	// dialContext opens active-mode data connections.
	dialContext func(ctx context.Context, network, addr string) (net.Conn, error)

	connMu  sync.Mutex
	closing bool
	conns   map[io.Closer]struct{}
	stopCtx context.Context // canceled by Stop
	cancel  context.CancelFunc
	wg      sync.WaitGroup
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

// WithStore serves files from store instead of a private empty one.
func WithStore(store *filestore.Store) Option {
	return func(s *Server) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWelcome sets the text of the 220 greeting.
func WithWelcome(msg string) Option {
	return func(s *Server) {
		if msg != "" {
			s.welcome = msg
		}
	}
}

// WithHost overrides the bind host. Defaults to localhost.
func WithHost(host string) Option {
	return func(s *Server) {
		s.host = host
	}
}

// WithRequestLog records transfers to l instead of a private in-memory store.
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
		host:    DefaultHost,
		port:    port,
		log:     logging.Nop(),
		welcome: DefaultWelcome,
	}
	s.dialContext = (&net.Dialer{Timeout: dataConnTimeout}).DialContext
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = filestore.New()
	}
	if s.requests == nil {
		s.requests = requestlog.NewMemoryStore(requestlog.DefaultCapacity)
	}
	return s
}

// Run binds the control listener and starts accepting sessions in the
// background. The socket is accepting connections when Run returns.
func (s *Server) Run() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateRunning {
		return ErrAlreadyRunning
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("ftpstub: listen on %s: %w", addr, err)
	}

	s.connMu.Lock()
	s.closing = false
	s.conns = make(map[io.Closer]struct{})
	s.stopCtx, s.cancel = context.WithCancel(context.Background())
	s.connMu.Unlock()

	s.listener = ln
	s.state = stateRunning

	s.log.Info("starting FTP stub", "addr", ln.Addr().String(), "files", s.store.Len())
	s.wg.Add(1)
	go s.serve(ln)
	return nil
}

// Stop closes the listener and every open control connection, data
// connection and passive listener, then waits for all sessions to exit.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateRunning {
		return ErrNotRunning
	}

	s.connMu.Lock()
	s.closing = true
	conns := s.conns
	s.conns = make(map[io.Closer]struct{})
	s.cancel()
	s.connMu.Unlock()

	err := s.listener.Close()
	for c := range maps.Keys(conns) {
		_ = c.Close()
	}
	s.wg.Wait()

	s.state = stateStopped
	s.log.Info("stopped FTP stub", "addr", s.listener.Addr().String(), "files", s.store.Len())
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("ftpstub: close listener: %w", err)
	}
	return nil
}

func (s *Server) serve(ln net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || s.isClosing() {
				return
			}
			s.log.Error("accept error", "error", err)
			continue
		}
		if !s.track(conn) {
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			newSession(s, conn).serve()
		}()
	}
}

// stopping returns a context that is canceled when Stop begins, so blocking
// dials give up instead of holding Stop.
func (s *Server) stopping() context.Context {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.stopCtx
}

func (s *Server) isClosing() bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.closing
}

// track registers c so Stop can close it. It closes c and returns false if
// the server is already stopping.
func (s *Server) track(c io.Closer) bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.closing {
		_ = c.Close()
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c io.Closer) {
	s.connMu.Lock()
	delete(s.conns, c)
	s.connMu.Unlock()
	_ = c.Close()
}

// AddFile seeds name with content.
func (s *Server) AddFile(name, content string) {
	s.store.Store(name, []byte(content))
}

// File returns the bytes stored under name.
func (s *Server) File(name string) ([]byte, bool) {
	return s.store.Retrieve(name)
}

// Files returns the content stored under name, or "" if it was never stored.
func (s *Server) Files(name string) string {
	data, ok := s.store.Retrieve(name)
	if !ok {
		return ""
	}
	return string(data)
}

// Store returns the server's file store.
func (s *Server) Store() *filestore.Store {
	return s.store
}

// Addr returns the bound control address, or nil before Run.
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

// Requests returns the recorded transfers, oldest first. It is empty when a
// request log without query support was supplied.
func (s *Server) Requests() []*requestlog.Entry {
	if store, ok := s.requests.(requestlog.Store); ok {
		return store.List(&requestlog.Filter{Protocol: requestlog.ProtocolFTP})
	}
	return nil
}
