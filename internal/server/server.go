package server

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultWorkers bounds session concurrency when the config does not.
const DefaultWorkers = 32

// Config holds the listener settings.
type Config struct {
	// Addr is the TCP listen address, e.g. ":5001".
	Addr string
	// Workers is the session pool size; <= 0 means DefaultWorkers.
	Workers int
	// AcceptRate throttles accepted connections per second; 0 disables.
	AcceptRate float64
}

// Server accepts connections and runs each one's session on a pooled
// worker. When all workers are busy the accept loop blocks, which is the
// backpressure mechanism: pending connections queue in the kernel.
type Server struct {
	cfg     Config
	router  *Router
	log     zerolog.Logger
	limiter *rate.Limiter

	listener  net.Listener
	conns     chan net.Conn
	done      chan struct{}
	closeOnce sync.Once
	workers   sync.WaitGroup
}

func New(cfg Config, router *Router, logger zerolog.Logger) *Server {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	s := &Server{
		cfg:    cfg,
		router: router,
		log:    logger,
		conns:  make(chan net.Conn),
		done:   make(chan struct{}),
	}
	if cfg.AcceptRate > 0 {
		burst := int(cfg.AcceptRate)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.AcceptRate), burst)
	}
	return s
}

// Listen binds the TCP listener without serving yet, so callers can learn
// the bound address before the first connection arrives.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln
	return nil
}

// Addr reports the bound listen address, nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve runs the accept loop until Close or a listener fault. It returns
// after in-flight sessions have drained.
func (s *Server) Serve() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	for i := 0; i < s.cfg.Workers; i++ {
		s.workers.Add(1)
		go s.worker()
	}
	s.log.Info().
		Str("addr", s.listener.Addr().String()).
		Int("workers", s.cfg.Workers).
		Msg("bankd listening")

	err := s.acceptLoop()
	close(s.conns)
	s.workers.Wait()
	return err
}

func (s *Server) acceptLoop() error {
	for {
		if s.limiter != nil {
			if err := s.limiter.Wait(context.Background()); err != nil {
				return err
			}
		}
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
			}
			return fmt.Errorf("accept: %w", err)
		}
		select {
		case s.conns <- conn:
		case <-s.done:
			conn.Close()
			return nil
		}
	}
}

func (s *Server) worker() {
	defer s.workers.Done()
	for conn := range s.conns {
		NewSession(conn, s.router, s.log).Run()
	}
}

// Close stops accepting connections. Sessions already handed to workers
// run to completion; Serve returns once they drain.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
	})
}
