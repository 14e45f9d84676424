package server

import (
	"bufio"
	"errors"
	"io"
	"net"

	"github.com/rs/zerolog"

	"vaultd/protocol"
)

// handleConnection owns the full lifecycle of one accepted connection:
// reading framed requests, dispatching to the store, writing framed
// responses, and honoring the shutdown broadcast. Per spec.md §4.4,
// commands on this connection are processed strictly in order and
// responses return in the same order, since this loop is single-
// threaded with respect to its own connection.
func (s *Server) handleConnection(conn net.Conn, shutdown <-chan struct{}) {
	defer conn.Close()

	id := s.registry.add()
	s.metrics.connectionsActive.Inc()
	s.metrics.connectionsTotal.Inc()
	defer func() {
		s.registry.remove(id)
		s.metrics.connectionsActive.Dec()
	}()

	log := s.log.With().Str("remote", conn.RemoteAddr().String()).Logger()

	lines := make(chan string)
	readErrs := make(chan error, 1)
	go readLines(conn, lines, readErrs)

	for {
		select {
		case <-shutdown:
			// Exit without draining pending reads; responses already
			// written are not revoked, per spec.md §4.4.
			return

		case err := <-readErrs:
			if errors.Is(err, io.EOF) {
				return
			}
			log.Warn().Err(err).Msg("connection read error")
			return

		case line, ok := <-lines:
			if !ok {
				return
			}
			if !s.handleLine(conn, &log, line) {
				return
			}
		}
	}
}

// handleLine parses and executes a single request line, writing the
// response. It returns false when the connection should be closed
// (write failure).
func (s *Server) handleLine(conn net.Conn, log *zerolog.Logger, line string) bool {
	cmd, err := protocol.Parse(line)
	if err != nil {
		s.metrics.parseErrorsTotal.Inc()
		return s.writeResponse(conn, log, protocol.Err(err.Error()))
	}

	resp := execute(cmd, s.store)
	s.metrics.commandsTotal.WithLabelValues(verbLabel(cmd.Kind)).Inc()
	return s.writeResponse(conn, log, resp)
}

func (s *Server) writeResponse(conn net.Conn, log *zerolog.Logger, resp protocol.Response) bool {
	if _, err := conn.Write(protocol.Marshal(resp)); err != nil {
		log.Warn().Err(err).Msg("write failed, closing connection")
		return false
	}
	return true
}

func verbLabel(k protocol.CommandKind) string {
	switch k {
	case protocol.KindSet:
		return "SET"
	case protocol.KindGet:
		return "GET"
	case protocol.KindDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// readLines feeds complete request lines to out, one per line
// terminator (\r\n or \n accepted). A trailing, unterminated fragment
// at connection close is discarded rather than treated as a request —
// the protocol has no out-of-band framing to recognize it as complete.
// readLines closes out on EOF and reports any other read error on
// errs. There is no per-request timeout imposed here, per spec.md
// §4.4 — back-pressure on slow clients comes from the transport's own
// buffering.
func readLines(conn net.Conn, out chan<- string, errs chan<- error) {
	defer close(out)
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err == nil {
			// Empty lines (spec.md §4.1) are forwarded too, so the
			// dispatcher can reply with the mandated "Empty command"
			// error rather than silently swallowing them.
			out <- trimLineEnding(line)
			continue
		}
		if !errors.Is(err, io.EOF) {
			errs <- err
		}
		return
	}
}

func trimLineEnding(s string) string {
	n := len(s)
	for n > 0 && (s[n-1] == '\n' || s[n-1] == '\r') {
		n--
	}
	return s[:n]
}
