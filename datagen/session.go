/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package datagen

import (
	"net"
	"time"

	"github.com/BeeBeansTechnologies/sitcpy/internal/logging"
	"github.com/BeeBeansTechnologies/sitcpy/state"
)

const writePoll = 100 * time.Millisecond

// Session continuously writes generator bursts to one accepted TCP
// connection until the peer disconnects or Stop is called. Incoming
// bytes are never read; this is a push-only variant of the session
// framework's read/frame/dispatch loop.
type Session struct {
	conn  net.Conn
	gen   Generator
	state *state.State
	log   logging.Logger
}

// NewSession wraps conn, writing bursts from gen once Run is called.
func NewSession(conn net.Conn, gen Generator, log logging.Logger) *Session {
	if log == nil {
		log = logging.Discard()
	}
	return &Session{conn: conn, gen: gen, state: state.New(), log: log}
}

// State returns the session's lifecycle state.
func (s *Session) State() *state.State { return s.state }

// Stop requests the write loop end at its next poll.
func (s *Session) Stop() { s.state.Transit(state.Stopping) }

// Run drives the write loop until the peer disconnects, Stop is
// called, or a write error occurs. Writer errors terminate the
// session cleanly (no panic, no retry).
func (s *Session) Run() {
	s.state.Transit(state.Running)
	defer func() {
		s.state.Transit(state.Stopped)
		s.conn.Close()
	}()

	for s.state.Current() < state.Stopping {
		s.conn.SetWriteDeadline(time.Now().Add(writePoll))
		data := s.gen.CreateData(s.gen.UnitCount())
		if _, err := s.conn.Write(data); err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return
		}
	}
}
