/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package rbcp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// DefaultTimeout is the default reply wait used when a Client is
// constructed without an explicit timeout, matching the original
// sitcpy.rbcp client's default.
const DefaultTimeout = 3 * time.Second

// Client is a single-in-flight RBCP request/reply client over UDP.
// Only one Read or Write may be outstanding at a time; concurrent
// callers are serialized behind an internal mutex, mirroring the
// original Python client which never pipelines requests.
type Client struct {
	mu      sync.Mutex
	conn    net.Conn
	timeout time.Duration
	id      byte
}

// Dial opens a UDP socket to addr (host:port) for RBCP exchanges.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, wrapError(CodeProtocol, fmt.Sprintf("dial %s", addr), err)
	}
	return &Client{conn: conn, timeout: DefaultTimeout}, nil
}

// SetTimeout overrides the per-request reply timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = d
}

// Close releases the underlying socket.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) nextID() byte {
	id := c.id
	c.id++ // byte arithmetic wraps 255 -> 0 (modulo 256)
	return id
}

// Read fetches length bytes of register data starting at address.
func (c *Client) Read(ctx context.Context, address uint32, length int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID()
	req, err := MakeHeader(OpRead, id, address, length)
	if err != nil {
		return nil, err
	}

	reply, err := c.sendRecv(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ValidateReply(reply, id); err != nil {
		return nil, err
	}
	n := Length(reply)
	if len(reply) < HeaderSize+n {
		return nil, newError(CodeProtocol,
			fmt.Sprintf("reply body truncated (%d/%d)", len(reply)-HeaderSize, n))
	}
	data := make([]byte, n)
	copy(data, reply[HeaderSize:HeaderSize+n])
	return data, nil
}

// Write stores data at address on the remote register bank, returning
// the echoed write data from the reply.
func (c *Client) Write(ctx context.Context, address uint32, data []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID()
	hdr, err := MakeHeader(OpWrite, id, address, len(data))
	if err != nil {
		return nil, err
	}
	req := append(hdr, data...)

	reply, err := c.sendRecv(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ValidateReply(reply, id); err != nil {
		return nil, err
	}
	n := Length(reply)
	if len(reply) < HeaderSize+n {
		return nil, newError(CodeProtocol,
			fmt.Sprintf("reply body truncated (%d/%d)", len(reply)-HeaderSize, n))
	}
	echoed := make([]byte, n)
	copy(echoed, reply[HeaderSize:HeaderSize+n])
	return echoed, nil
}

// sendRecv sends req and waits for a reply, honoring both the
// client's configured timeout and ctx cancellation. It fails with
// CodeTimeout when no reply arrives before the deadline.
func (c *Client) sendRecv(ctx context.Context, req []byte) ([]byte, error) {
	if _, err := c.conn.Write(req); err != nil {
		return nil, wrapError(CodeProtocol, "send request", err)
	}

	deadline := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, wrapError(CodeProtocol, "set read deadline", err)
	}

	buf := make([]byte, HeaderSize+255)
	n, err := c.conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, newError(CodeTimeout, "no reply within timeout")
		}
		return nil, wrapError(CodeProtocol, "receive reply", err)
	}
	return buf[:n], nil
}
