/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package session

import (
	"net"
	"time"

	"github.com/BeeBeansTechnologies/sitcpy/internal/logging"
	"github.com/BeeBeansTechnologies/sitcpy/state"
)

// pollInterval is the socket readability ceiling used by every
// command-server session loop, per spec §5.
const pollInterval = 100 * time.Millisecond

// maxRecvChunk bounds a single recv call.
const maxRecvChunk = 64 * 1024

// Session represents one accepted TCP connection running a Handler's
// read/frame/dispatch loop until the peer closes or the handler ends it.
type Session struct {
	conn    net.Conn
	handler Handler
	state   *state.State
	log     logging.Logger

	// LineSeparator is the terminator this session last saw on the
	// wire; text handlers use it so replies echo the client's style.
	LineSeparator []byte
}

// NewSession wraps conn with handler, ready to Run.
func NewSession(conn net.Conn, handler Handler, log logging.Logger) *Session {
	if log == nil {
		log = logging.Discard()
	}
	return &Session{
		conn:          conn,
		handler:       handler,
		state:         state.New(),
		log:           log,
		LineSeparator: []byte("\r\n"),
	}
}

// RemoteAddr returns the peer's network address.
func (s *Session) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

// Write sends raw bytes to the peer.
func (s *Session) Write(p []byte) (int, error) { return s.conn.Write(p) }

// Close ends the session's socket.
func (s *Session) Close() error { return s.conn.Close() }

// State returns the session's lifecycle state.
func (s *Session) State() *state.State { return s.state }

// Handler returns the Handler driving this session.
func (s *Session) Handler() Handler { return s.handler }

// Run drives the read/frame/dispatch loop described in spec §4.6
// until the peer closes, the handler ends the session, or Stop is
// called from another goroutine.
func (s *Session) Run() {
	s.state.Transit(state.Running)
	defer func() {
		s.state.Transit(state.Stopped)
		s.conn.Close()
	}()

	s.handler.OnStart(s)

	var residual []byte
	buf := make([]byte, maxRecvChunk)

	for s.state.Current() < state.Stopping {
		s.conn.SetReadDeadline(time.Now().Add(pollInterval))
		n, err := s.conn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				s.handler.OnIdle(s)
				continue
			}
			// Peer closed or socket error: stop the session.
			return
		}
		if n == 0 {
			return
		}

		data := append(residual, buf[:n]...)
		residual = nil

		for {
			pos := s.handler.FindDelimiter(s, data)
			if pos < 0 {
				residual = data
				break
			}
			msg := data[:pos]
			data = data[pos:]
			if !s.handler.OnData(s, msg) {
				return
			}
			if s.state.Current() >= state.Stopping {
				return
			}
		}

		s.handler.OnIdle(s)
	}
}

// Stop requests the session end at its next poll.
func (s *Session) Stop() {
	s.state.Transit(state.Stopping)
}
