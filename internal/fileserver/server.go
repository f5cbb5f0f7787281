// Package fileserver serves the bundled web assets on loopback.
package fileserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"notifyy/internal/config"
)

// LoopbackHost is the only interface the server ever binds.
const LoopbackHost = "127.0.0.1"

var (
	// ErrRootMissing means the web root does not exist or is not a directory.
	ErrRootMissing = errors.New("web root not found")
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("file server already started")
)

// Binding describes where the server is listening. It never changes after a
// successful Start.
type Binding struct {
	Host string
	Port int
	Root string
}

// Addr returns host:port.
func (b Binding) Addr() string {
	return net.JoinHostPort(b.Host, strconv.Itoa(b.Port))
}

// URL returns the address users open in a browser.
func (b Binding) URL() string {
	return fmt.Sprintf("http://localhost:%d/", b.Port)
}

// ListenFunc has the signature of net.Listen.
type ListenFunc func(network, address string) (net.Listener, error)

// Option configures a Server.
type Option func(*Server)

// WithListenFunc replaces net.Listen, mainly so tests can simulate busy ports.
func WithListenFunc(fn ListenFunc) Option {
	return func(s *Server) {
		s.listen = fn
	}
}

// Server is a static file server bound to the first free loopback port at or
// above the preferred one.
type Server struct {
	root   string
	logger *zap.Logger
	listen ListenFunc

	mu         sync.Mutex
	started    bool
	binding    Binding
	httpServer *http.Server
	serveDone  chan struct{}
}

// New creates a server for root. Nothing is bound until Start.
func New(root string, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		root:   root,
		logger: logger.Named("fileserver"),
		listen: net.Listen,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start verifies the root, binds a port and begins serving in the background.
// It returns once the listener is bound. Address-in-use moves on to the next
// port without limit; any other bind error is returned as is.
func (s *Server) Start(preferredPort int) (Binding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return s.binding, ErrAlreadyStarted
	}

	info, err := os.Stat(s.root)
	if err != nil || !info.IsDir() {
		return Binding{}, fmt.Errorf("%w: %s", ErrRootMissing, s.root)
	}

	ln, port, err := s.bind(preferredPort)
	if err != nil {
		return Binding{}, err
	}

	s.started = true
	s.binding = Binding{Host: LoopbackHost, Port: port, Root: s.root}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: config.ServerReadHeaderTimeout,
		IdleTimeout:       config.ServerIdleTimeout,
		ErrorLog:          zap.NewStdLog(s.logger),
	}
	s.serveDone = make(chan struct{})

	go s.serve(s.httpServer, ln, s.serveDone)

	s.logger.Info("File server started",
		zap.String("addr", s.binding.Addr()),
		zap.String("root", s.root),
		zap.Int("preferred_port", preferredPort))

	return s.binding, nil
}

func (s *Server) bind(port int) (net.Listener, int, error) {
	for {
		addr := net.JoinHostPort(LoopbackHost, strconv.Itoa(port))
		ln, err := s.listen("tcp", addr)
		if err == nil {
			if port == 0 {
				if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
					port = tcp.Port
				}
			}
			return ln, port, nil
		}
		if !isAddrInUse(err) {
			return nil, 0, fmt.Errorf("failed to bind %s: %w", addr, err)
		}
		s.logger.Debug("Port in use, trying next", zap.Int("port", port))
		port++
	}
}

func (s *Server) serve(srv *http.Server, ln net.Listener, done chan struct{}) {
	defer close(done)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("File server stopped unexpectedly", zap.Error(err))
	}
}

// Binding returns the bound address, or the zero Binding before Start.
func (s *Server) Binding() Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.binding
}

// Handler returns the HTTP handler serving the web root. Only GET and HEAD
// are routed; other methods get 405.
func (s *Server) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.root))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/*", files.ServeHTTP)
	r.Head("/*", files.ServeHTTP)
	return r
}

// Close stops accepting connections and waits for in-flight requests until
// ctx expires. It is safe to call more than once and before Start.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	done := s.serveDone
	s.httpServer = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Warn("File server forced shutdown", zap.Error(err))
		_ = srv.Close()
		return fmt.Errorf("file server shutdown: %w", err)
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
	s.logger.Info("File server stopped")
	return nil
}
