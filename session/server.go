/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package session

import (
	"context"
	"fmt"
	"net"
	"reflect"
	"sync"
	"time"

	"github.com/BeeBeansTechnologies/sitcpy/internal/logging"
	"github.com/BeeBeansTechnologies/sitcpy/state"
)

// HandlerFactory builds a fresh Handler instance per accepted
// connection, so per-session mutable state (e.g. a text session's
// line-terminator style) is never shared between connections.
type HandlerFactory func() Handler

// Server accepts TCP connections on one listener and spawns a Session
// per client, all driven by handlers built from a HandlerFactory.
// Exactly one accept goroutine handles new connections and reaps
// finished sessions.
type Server struct {
	newHandler HandlerFactory
	log        logging.Logger

	state *state.State

	mu       sync.Mutex
	ln       net.Listener
	sessions []*Session
}

// NewServer returns a Server that will build one handler per
// connection via newHandler. A nil log discards output.
func NewServer(newHandler HandlerFactory, log logging.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	return &Server{
		newHandler: newHandler,
		log:        log,
		state:      state.New(),
	}
}

// State returns the server's lifecycle state.
func (srv *Server) State() *state.State { return srv.state }

// Start binds addr ("host:port", port 0 for an ephemeral port) and
// spawns the accept loop. It returns the bound address.
func (srv *Server) Start(ctx context.Context, addr string) (string, error) {
	srv.state.Transit(state.Starting)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("session: listen %s: %w", addr, err)
	}
	srv.ln = ln
	srv.state.Transit(state.Running)

	go srv.acceptLoop(ctx)

	return ln.Addr().String(), nil
}

// Stop transitions the server to Stopping, closes the listener, and
// asks every live session to stop, joining with a bounded wait. Safe
// to call after the server has already shut down on its own (e.g. a
// remote "exit" command), in which case it only joins.
func (srv *Server) Stop(ctx context.Context) error {
	var err error
	if srv.state.Current() < state.Stopping {
		err = srv.shutdown()
	}

	srv.mu.Lock()
	sessions := append([]*Session(nil), srv.sessions...)
	srv.mu.Unlock()

	deadline, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	for _, s := range sessions {
		s.State().Wait(deadline, state.Stopped)
	}

	srv.state.Wait(ctx, state.Stopped)
	return err
}

// shutdown transitions to Stopping, closes the listener, and asks
// every live session to stop. It does not join them; callers that
// need the join (Stop) do that separately.
func (srv *Server) shutdown() error {
	srv.state.Transit(state.Stopping)
	var err error
	if srv.ln != nil {
		err = srv.ln.Close()
	}

	srv.mu.Lock()
	sessions := append([]*Session(nil), srv.sessions...)
	srv.mu.Unlock()

	for _, s := range sessions {
		s.Stop()
	}
	return err
}

func (srv *Server) acceptLoop(ctx context.Context) {
	defer srv.state.Transit(state.Stopped)

	type tcpListener interface {
		SetDeadline(time.Time) error
	}

	for srv.state.Current() < state.Stopping {
		if srv.anySessionRequestedExit() {
			srv.shutdown()
			return
		}

		if dl, ok := srv.ln.(tcpListener); ok {
			dl.SetDeadline(time.Now().Add(100 * time.Millisecond))
		}
		conn, err := srv.ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				srv.reap()
				continue
			}
			return
		}

		handler := srv.newHandler()
		s := NewSession(conn, handler, srv.log)
		srv.mu.Lock()
		srv.sessions = append(srv.sessions, s)
		srv.mu.Unlock()
		go s.Run()

		if srv.anySessionRequestedExit() {
			srv.shutdown()
			return
		}
		srv.reap()
	}
}

// anySessionRequestedExit reports whether any tracked session's handler
// has set its exit flag (via the built-in "exit" command), in which
// case the whole server shuts down, matching the original CuiServer's
// is_exit() check against its single shared handler.
func (srv *Server) anySessionRequestedExit() bool {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	for _, s := range srv.sessions {
		if eh, ok := s.Handler().(interface{ IsExit() bool }); ok && eh.IsExit() {
			return true
		}
	}
	return false
}

func (srv *Server) reap() {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	live := srv.sessions[:0]
	for _, s := range srv.sessions {
		// A finished session whose handler requested exit is kept so
		// the next anySessionRequestedExit check still sees it.
		eh, ok := s.Handler().(interface{ IsExit() bool })
		if s.State().Current() != state.Stopped || (ok && eh.IsExit()) {
			live = append(live, s)
		}
	}
	srv.sessions = live
}

// BindAddr satisfies ServerInfo for the built-in "state" command.
func (srv *Server) BindAddr() string {
	if srv.ln == nil {
		return "not initialized yet"
	}
	return srv.ln.Addr().String()
}

// HandlerTag satisfies ServerInfo, reporting the concrete handler type.
func (srv *Server) HandlerTag() string {
	return reflect.TypeOf(srv.newHandler()).String()
}

// SessionPeers satisfies ServerInfo, listing each live session's peer address.
func (srv *Server) SessionPeers() []string {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	out := make([]string, len(srv.sessions))
	for i, s := range srv.sessions {
		out[i] = s.RemoteAddr().String()
	}
	return out
}
