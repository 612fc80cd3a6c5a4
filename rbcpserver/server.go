/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

// Package rbcpserver is the UDP register server: it parses incoming
// RBCP datagrams, dispatches reads and writes against a register
// bank, and replies, grounded on the original sitcpy rbcp_server.py
// RbcpServer.run() loop.
package rbcpserver

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/BeeBeansTechnologies/sitcpy/internal/logging"
	"github.com/BeeBeansTechnologies/sitcpy/metrics"
	"github.com/BeeBeansTechnologies/sitcpy/rbcp"
	"github.com/BeeBeansTechnologies/sitcpy/register"
	"github.com/BeeBeansTechnologies/sitcpy/state"
)

// DefaultPort is the UDP port an RBCP server binds by default.
const DefaultPort = 4660

// Stats is a snapshot of the server's drop counters, useful for the
// session framework's stat command and for metrics export.
type Stats struct {
	ShortPackets   uint64
	BadVersion     uint64
	UnknownCommand uint64
	ReadOK         uint64
	WriteOK        uint64
	ReadOutOfRange uint64
	WriteOutOfRange uint64
}

// Server listens on a UDP socket and services RBCP requests against
// a register.Bank. One listener goroutine handles all datagrams;
// register access is serialized through it.
type Server struct {
	bank    *register.Bank
	log     logging.Logger
	metrics *metrics.Set

	state *state.State
	conn  *net.UDPConn

	shortPackets    atomic.Uint64
	badVersion      atomic.Uint64
	unknownCommand  atomic.Uint64
	readOK          atomic.Uint64
	writeOK         atomic.Uint64
	readOutOfRange  atomic.Uint64
	writeOutOfRange atomic.Uint64
}

// New returns a Server dispatching against bank. A nil log uses a
// discarding logger. A nil *metrics.Set disables instrumentation.
func New(bank *register.Bank, log logging.Logger) *Server {
	return NewWithMetrics(bank, log, nil)
}

// NewWithMetrics is New with an explicit metrics.Set.
func NewWithMetrics(bank *register.Bank, log logging.Logger, m *metrics.Set) *Server {
	if log == nil {
		log = logging.Discard()
	}
	return &Server{
		bank:    bank,
		log:     log,
		metrics: m,
		state:   state.New(),
	}
}

// State returns the server's lifecycle state.
func (s *Server) State() *state.State { return s.state }

// Start binds addr ("" for DefaultPort on all interfaces) and spawns
// the listener goroutine. It blocks until the socket is bound and
// returns the bound address, or an error if binding fails.
func (s *Server) Start(ctx context.Context, addr string) (string, error) {
	if addr == "" {
		addr = fmt.Sprintf(":%d", DefaultPort)
	}
	s.state.Transit(state.Starting)

	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return "", fmt.Errorf("rbcpserver: resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return "", fmt.Errorf("rbcpserver: listen %s: %w", addr, err)
	}
	s.conn = conn
	s.state.Transit(state.Running)

	go s.serve(ctx)

	return conn.LocalAddr().String(), nil
}

// Stop transitions the server to Stopping and closes its socket,
// unblocking the listener goroutine.
func (s *Server) Stop(ctx context.Context) error {
	s.state.Transit(state.Stopping)
	var err error
	if s.conn != nil {
		err = s.conn.Close()
	}
	s.state.Wait(ctx, state.Stopped)
	return err
}

func (s *Server) serve(ctx context.Context) {
	defer s.state.Transit(state.Stopped)

	buf := make([]byte, rbcp.HeaderSize+255)
	for s.state.Current() < state.Stopping {
		n, raddr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if s.state.Current() >= state.Stopping {
				return
			}
			s.log.Warning("rbcp server read error", logging.Fields{"error": err.Error()})
			continue
		}
		s.handleDatagram(raddr, buf[:n])
	}
}

func (s *Server) handleDatagram(raddr *net.UDPAddr, pkt []byte) {
	if len(pkt) < rbcp.HeaderSize {
		s.shortPackets.Add(1)
		s.metrics.IncRequest("short_packet")
		return
	}
	if pkt[0] != rbcp.Version {
		s.badVersion.Add(1)
		s.metrics.IncRequest("bad_version")
		return
	}

	cmd := pkt[1]
	id := rbcp.PacketID(pkt)
	length := rbcp.Length(pkt)
	address := rbcp.Address(pkt)

	switch cmd {
	case rbcp.CmdReadRequest:
		s.handleRead(raddr, id, address, length)
	case rbcp.CmdWriteRequest:
		payload := pkt[rbcp.HeaderSize:]
		if len(payload) > length {
			payload = payload[:length]
		}
		s.handleWrite(raddr, id, address, payload)
	default:
		s.unknownCommand.Add(1)
		s.metrics.IncRequest("unknown_command")
	}
}

func (s *Server) handleRead(raddr *net.UDPAddr, id byte, address uint32, length int) {
	data, err := s.bank.Read(address, length)
	if err != nil {
		s.readOutOfRange.Add(1)
		s.metrics.IncRequest("read_out_of_range")
		s.metrics.IncBusError()
		reply := rbcp.MakeReplyHeader(rbcp.CmdReadReplyError, id, address, length)
		s.send(raddr, reply)
		return
	}
	s.readOK.Add(1)
	s.metrics.IncRequest("read_ok")
	reply := rbcp.MakeReplyHeader(rbcp.CmdReadReplyOK, id, address, len(data))
	reply = append(reply, data...)
	s.send(raddr, reply)
}

func (s *Server) handleWrite(raddr *net.UDPAddr, id byte, address uint32, data []byte) {
	if err := s.bank.Write(address, data); err != nil {
		s.writeOutOfRange.Add(1)
		s.metrics.IncRequest("write_out_of_range")
		s.metrics.IncBusError()
		reply := rbcp.MakeReplyHeader(rbcp.CmdWriteReplyError, id, address, len(data))
		s.send(raddr, reply)
		return
	}
	s.writeOK.Add(1)
	s.metrics.IncRequest("write_ok")
	reply := rbcp.MakeReplyHeader(rbcp.CmdWriteReplyOK, id, address, len(data))
	reply = append(reply, data...)
	s.send(raddr, reply)
}

func (s *Server) send(raddr *net.UDPAddr, pkt []byte) {
	if _, err := s.conn.WriteToUDP(pkt, raddr); err != nil {
		s.log.Warning("rbcp server write error", logging.Fields{"error": err.Error()})
	}
}

// Snapshot returns the server's current drop/success counters.
func (s *Server) Snapshot() Stats {
	return Stats{
		ShortPackets:    s.shortPackets.Load(),
		BadVersion:      s.badVersion.Load(),
		UnknownCommand:  s.unknownCommand.Load(),
		ReadOK:          s.readOK.Load(),
		WriteOK:         s.writeOK.Load(),
		ReadOutOfRange:  s.readOutOfRange.Load(),
		WriteOutOfRange: s.writeOutOfRange.Load(),
	}
}
