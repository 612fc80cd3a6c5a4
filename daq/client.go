/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package daq

import (
	"context"
	"net"
	"time"

	"github.com/BeeBeansTechnologies/sitcpy/internal/logging"
	"github.com/BeeBeansTechnologies/sitcpy/metrics"
	"github.com/BeeBeansTechnologies/sitcpy/state"
)

// ConnectTimeout bounds how long Client.Run waits to establish the
// TCP connection before giving up.
const ConnectTimeout = 2 * time.Second

const pollInterval = 10 * time.Millisecond

// Handler receives the lifecycle and data callbacks of a DAQ run. All
// methods are called from the Client's own goroutine.
type Handler interface {
	// OnDaqStart is called once the connection is established.
	OnDaqStart(c *Client)

	// OnDaqData is called with a buffer whose length is always a
	// positive exact multiple of DataUnit.
	OnDaqData(c *Client, data []byte)

	// OnDaqRunning is called periodically (every other poll tick)
	// while the run is active, for stat refreshes.
	OnDaqRunning(c *Client)

	// OnDaqStop is called once after the read loop exits, whether
	// due to Stop, EOF, or a socket error.
	OnDaqStop(c *Client)

	// OnDaqError is called when the connection attempt itself fails.
	OnDaqError(c *Client, err error)
}

// NopHandler provides no-op implementations of Handler; embed it to
// override only the callbacks a particular use case needs.
type NopHandler struct{}

func (NopHandler) OnDaqStart(*Client)          {}
func (NopHandler) OnDaqData(*Client, []byte)   {}
func (NopHandler) OnDaqRunning(*Client)        {}
func (NopHandler) OnDaqStop(*Client)           {}
func (NopHandler) OnDaqError(*Client, error)   {}

// Client is a record-unit-aligned TCP stream consumer: it reads raw
// bytes, holds back any partial trailing record, and hands complete
// records to the Handler as soon as at least one full DataUnit is
// available.
type Client struct {
	addr     string
	dataUnit int
	handler  Handler
	log      logging.Logger
	metrics  *metrics.Set

	state *state.State
	stats Stats
	conn  net.Conn
}

// NewClient returns a Client that will dial addr and deliver records
// of dataUnit bytes to handler. A nil *metrics.Set disables
// instrumentation.
func NewClient(addr string, dataUnit int, handler Handler, log logging.Logger) *Client {
	return NewClientWithMetrics(addr, dataUnit, handler, log, nil)
}

// NewClientWithMetrics is NewClient with an explicit metrics.Set.
func NewClientWithMetrics(addr string, dataUnit int, handler Handler, log logging.Logger, m *metrics.Set) *Client {
	if log == nil {
		log = logging.Discard()
	}
	c := &Client{
		addr:     addr,
		dataUnit: dataUnit,
		handler:  handler,
		log:      log,
		metrics:  m,
		state:    state.New(),
	}
	c.stats.DataUnit = dataUnit
	return c
}

// State returns the client's lifecycle state machine.
func (c *Client) State() *state.State { return c.state }

// DataUnit returns the configured record size in bytes.
func (c *Client) DataUnit() int { return c.dataUnit }

// Stats returns a snapshot of the running throughput statistics.
func (c *Client) Stats() Stats { return c.stats }

// Stop requests the read loop to exit; it does not block until it has.
func (c *Client) Stop() {
	c.state.Transit(state.Stopping)
}

// Run dials the DAQ source and drives the read loop until Stop is
// called, the peer closes the connection, or a socket error occurs.
// It blocks until the loop has fully exited.
func (c *Client) Run(ctx context.Context) {
	c.state.Transit(state.Starting)

	conn, err := net.DialTimeout("tcp", c.addr, ConnectTimeout)
	if err != nil {
		c.log.Error("daq connect failed", logging.Fields{"addr": c.addr, "error": err.Error()})
		c.handler.OnDaqError(c, err)
		c.state.Transit(state.Stopped)
		return
	}
	c.conn = conn
	defer conn.Close()

	c.stats.Start(time.Now())
	c.state.Transit(state.Running)
	c.handler.OnDaqStart(c)

	c.readLoop(ctx)

	c.state.Transit(state.Stopping)
	c.stats.Stop(time.Now())
	c.handler.OnDaqStop(c)
	c.state.Transit(state.Stopped)
}

func (c *Client) readLoop(ctx context.Context) {
	maxBuff := c.dataUnit * 1024 * 1024
	buf := make([]byte, maxBuff)
	var partial []byte
	running := 0

	for c.state.Current() == state.Running {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c.conn.SetReadDeadline(time.Now().Add(pollInterval))
		n, err := c.conn.Read(buf)
		if n > 0 {
			partial = append(partial, buf[:n]...)
			length := len(partial)
			if length >= c.dataUnit {
				rest := length % c.dataUnit
				complete := length - rest
				c.stats.AddBytes(complete, time.Now())
				c.metrics.AddDAQBytes(complete)
				c.handler.OnDaqData(c, partial[:complete])
				if rest == 0 {
					partial = nil
				} else {
					remainder := make([]byte, rest)
					copy(remainder, partial[complete:])
					partial = remainder
				}
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				// no data this tick, fall through to the periodic check
			} else {
				return
			}
		}

		running++
		if running%2 == 0 {
			c.stats.Touch(time.Now())
			c.handler.OnDaqRunning(c)
			running = 0
		}
	}
}
