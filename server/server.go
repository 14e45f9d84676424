package server

import (
	"net"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"vaultd/store"
)

// Server manages listener lifecycle and client connection goroutines,
// adapted from the teacher's ready/shuttingDown channel pattern and
// extended with the registry, metrics and MaxConnections gating that
// spec.md §4.5 and §9 (Open Question 2) require.
type Server struct {
	cfg   Config
	store store.Store

	registry *registry
	metrics  *metrics
	log      zerolog.Logger

	ln           net.Listener
	wg           sync.WaitGroup
	ready        chan struct{} // closed once the listener is bound
	shuttingDown chan struct{} // closed once to broadcast shutdown

	// sem gates concurrently accepted connections when cfg.MaxConnections
	// is set. A nil sem means unbounded.
	sem chan struct{}
}

func NewServer(cfg Config, st store.Store, reg prometheus.Registerer, log zerolog.Logger) *Server {
	var sem chan struct{}
	if cfg.MaxConnections > 0 {
		sem = make(chan struct{}, cfg.MaxConnections)
	}
	return &Server{
		cfg:          cfg,
		store:        st,
		registry:     newRegistry(),
		metrics:      newMetrics(reg),
		log:          log,
		ready:        make(chan struct{}),
		shuttingDown: make(chan struct{}),
		sem:          sem,
	}
}

// Addr blocks until the listener is bound and returns its address.
// Useful for tests that bind to ":0" and need the chosen port.
func (s *Server) Addr() net.Addr {
	<-s.ready
	return s.ln.Addr()
}

// ActiveConnections reports the live handler count, for tests and
// diagnostics.
func (s *Server) ActiveConnections() int {
	return s.registry.count()
}

// Start binds the listener and accepts connections until Stop is
// called. It returns nil on intentional shutdown and the listen error
// otherwise.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.BindAddr)
	if err != nil {
		s.log.Error().Err(err).Str("addr", s.cfg.BindAddr).Msg("listen failed")
		return err
	}

	s.ln = ln
	close(s.ready)
	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.shuttingDown:
				return nil
			default:
				s.log.Warn().Err(err).Msg("accept error")
				continue
			}
		}

		if s.sem != nil {
			select {
			case s.sem <- struct{}{}:
			default:
				// Over MaxConnections: accept and immediately close so
				// the listener backlog still drains, rather than
				// leaving the peer's connect() hanging.
				s.log.Warn().Msg("max connections reached, rejecting")
				conn.Close()
				continue
			}
		}

		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			defer func() {
				if s.sem != nil {
					<-s.sem
				}
			}()
			s.handleConnection(c, s.shuttingDown)
		}(conn)
	}
}

// Stop stops accepting new connections and broadcasts shutdown to
// every active handler. Per spec.md §4.5, it does not wait for
// handlers to drain — each live handler exits on its own next loop
// iteration, independently of when Stop returns. Callers that want
// drain semantics call Wait afterward.
func (s *Server) Stop() {
	<-s.ready
	close(s.shuttingDown)
	if s.ln != nil {
		s.ln.Close()
	}
}

// Wait blocks until every handler goroutine spawned by Start has
// exited. It is the external coordination point spec.md §4.5 calls
// for ("callers wanting drain semantics must coordinate externally"),
// kept separate from Stop so shutdown broadcast and drain-wait remain
// independently observable.
func (s *Server) Wait() {
	s.wg.Wait()
}
