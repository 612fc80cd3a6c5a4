/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

// Package session implements the line-oriented TCP session framework:
// a per-connection read/frame/dispatch loop driven by a pluggable
// Handler, a reflective command dispatcher with built-in commands,
// a TCP accept server, and a minimal prompt-matching client. Grounded
// on the original sitcpy cui.py module.
package session

// Handler is the capability set a session driver implements. Not every
// capability matters to every variant — TextHandler only needs framing
// and data callbacks, CommandHandler adds dispatch on top.
type Handler interface {
	// OnStart is invoked once when the session begins, before the
	// read loop starts polling the socket.
	OnStart(s *Session)

	// FindDelimiter returns the offset one past the end of the next
	// complete message in buf (i.e. buf[:pos] is the message with its
	// terminator still attached, buf[pos:] is the residual for the
	// next frame), or -1 if more bytes are needed. Handlers that track
	// which terminator style they last saw record it on s.
	FindDelimiter(s *Session, buf []byte) int

	// OnData is invoked with one delimited message, terminator still
	// attached (handlers that care strip it themselves, mirroring the
	// original framing contract). It returns whether the session
	// should continue.
	OnData(s *Session, msg []byte) bool

	// OnIdle is invoked once per loop iteration, whether or not data
	// arrived, so handlers can do periodic work (e.g. data generators).
	OnIdle(s *Session)
}

// ServerHandler is the set of server-level capabilities, separate from
// per-session dispatch. Server consults only IsExit, on each tracked
// session's handler; it never calls OnServerStart or OnShutdown.
type ServerHandler interface {
	// OnServerStart receives the bound listener address.
	OnServerStart(addr string)

	// OnShutdown is the server-shutdown callback.
	OnShutdown()

	// IsExit reports whether the built-in exit command (or any other
	// trigger) has requested full server shutdown.
	IsExit() bool

	// SetExit records an exit request.
	SetExit(exit bool)
}

// NopHandler composes the default no-op behavior for capabilities a
// concrete handler does not need to override, mirroring the teacher's
// pattern of small adapter structs layered under an embedded field.
type NopHandler struct{}

func (NopHandler) OnStart(*Session) {}

// FindDelimiter's default treats every received chunk as one complete
// message (binary passthrough), matching DataHandler's default.
func (NopHandler) FindDelimiter(_ *Session, buf []byte) int { return len(buf) }

func (NopHandler) OnData(*Session, []byte) bool { return true }
func (NopHandler) OnIdle(*Session)              {}
func (NopHandler) OnServerStart(string)         {}
func (NopHandler) OnShutdown()                  {}
func (NopHandler) IsExit() bool                 { return false }
func (NopHandler) SetExit(bool)                 {}
