/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package datagen

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/BeeBeansTechnologies/sitcpy/internal/logging"
	"github.com/BeeBeansTechnologies/sitcpy/state"
)

// DefaultPort is the TCP port the data-generator server binds by
// default on the device emulator.
const DefaultPort = 24242

// NewGenerator builds a fresh Generator per accepted connection so
// independent clients don't share mutable counter state.
type NewGenerator func() Generator

// Server accepts TCP connections and spawns a push-mode Session per
// client, each backed by its own Generator instance.
type Server struct {
	newGen NewGenerator
	log    logging.Logger
	state  *state.State

	mu       sync.Mutex
	ln       net.Listener
	sessions []*Session
}

// NewServer returns a Server. A nil log discards output.
func NewServer(newGen NewGenerator, log logging.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	return &Server{newGen: newGen, log: log, state: state.New()}
}

// State returns the server's lifecycle state.
func (srv *Server) State() *state.State { return srv.state }

// Start binds addr ("" for DefaultPort) and spawns the accept loop.
func (srv *Server) Start(ctx context.Context, addr string) (string, error) {
	if addr == "" {
		addr = fmt.Sprintf(":%d", DefaultPort)
	}
	srv.state.Transit(state.Starting)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("datagen: listen %s: %w", addr, err)
	}
	srv.ln = ln
	srv.state.Transit(state.Running)

	go srv.acceptLoop(ctx)
	return ln.Addr().String(), nil
}

// Stop transitions to Stopping, closes the listener, and stops every
// live session with a bounded wait.
func (srv *Server) Stop(ctx context.Context) error {
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

	deadline, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	for _, s := range sessions {
		s.State().Wait(deadline, state.Stopped)
	}

	srv.state.Wait(ctx, state.Stopped)
	return err
}

func (srv *Server) acceptLoop(ctx context.Context) {
	defer srv.state.Transit(state.Stopped)

	type deadliner interface{ SetDeadline(time.Time) error }

	for srv.state.Current() < state.Stopping {
		if dl, ok := srv.ln.(deadliner); ok {
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

		s := NewSession(conn, srv.newGen(), srv.log)
		srv.mu.Lock()
		srv.sessions = append(srv.sessions, s)
		srv.mu.Unlock()
		go s.Run()
		srv.reap()
	}
}

func (srv *Server) reap() {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	live := srv.sessions[:0]
	for _, s := range srv.sessions {
		if s.State().Current() != state.Stopped {
			live = append(live, s)
		}
	}
	srv.sessions = live
}
