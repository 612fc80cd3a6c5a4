/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package session

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"time"
)

// CommandClient is a minimal client for a CommandHandler-based server:
// it drains the initial prompt on connect, then sends commands and
// reads back everything up to the next prompt occurrence.
type CommandClient struct {
	conn   net.Conn
	prompt string
}

// DialCommandClient connects to addr and blocks until the server's
// initial prompt has been received and discarded.
func DialCommandClient(addr, prompt string) (*CommandClient, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("session: dial %s: %w", addr, err)
	}
	c := &CommandClient{conn: conn, prompt: prompt}
	if _, err := c.receive(false); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// Close ends the session by sending "close" without waiting for a reply.
func (c *CommandClient) Close() error {
	_, err := c.SendCommand("close", true)
	c.conn.Close()
	return err
}

// SendCommand appends the OS line separator, sends text, and — unless
// noReply is set — reads the reply up to (excluding) the next prompt.
func (c *CommandClient) SendCommand(text string, noReply bool) (string, error) {
	if _, err := c.conn.Write([]byte(text + defaultLineSeparator)); err != nil {
		return "", fmt.Errorf("session: send command: %w", err)
	}
	if noReply {
		return "", nil
	}
	return c.receive(true)
}

// receive reads until the configured prompt appears, optionally
// stripping it from the returned text.
func (c *CommandClient) receive(stripPrompt bool) (string, error) {
	var buf bytes.Buffer
	promptBytes := []byte(c.prompt)
	chunk := make([]byte, 4096)

	for {
		c.conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		n, err := c.conn.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if pos := bytes.Index(buf.Bytes(), promptBytes); pos >= 0 {
				data := buf.Bytes()
				if stripPrompt {
					return string(data[:pos]), nil
				}
				return string(data), nil
			}
		}
		if err != nil {
			return "", fmt.Errorf("session: receive: %w", err)
		}
	}
}

// defaultLineSeparator mirrors os.linesep used by the original Python
// CommandClient, kept for callers that want to match host conventions.
var defaultLineSeparator = "\n"

func init() {
	if os.PathSeparator == '\\' {
		defaultLineSeparator = "\r\n"
	}
}
