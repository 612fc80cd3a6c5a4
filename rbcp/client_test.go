/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package rbcp

import (
	"context"
	"net"
	"testing"
	"time"
)

// fakeServer answers exactly one exchange per call to serveOnce, letting
// each test script the reply it wants without a full register bank.
type fakeServer struct {
	conn *net.UDPConn
}

func newFakeServer(t *testing.T) (*fakeServer, string) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	return &fakeServer{conn: conn}, conn.LocalAddr().String()
}

func (f *fakeServer) serveOnce(t *testing.T, respond func(req []byte) []byte) {
	t.Helper()
	buf := make([]byte, 512)
	f.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, raddr, err := f.conn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("server read: %v", err)
	}
	reply := respond(buf[:n])
	if reply == nil {
		return
	}
	if _, err := f.conn.WriteToUDP(reply, raddr); err != nil {
		t.Fatalf("server write: %v", err)
	}
}

func (f *fakeServer) close() { f.conn.Close() }

func TestClientReadRoundTrip(t *testing.T) {
	srv, addr := newFakeServer(t)
	defer srv.close()

	go srv.serveOnce(t, func(req []byte) []byte {
		id := PacketID(req)
		reply := MakeReplyHeader(CmdReadReplyOK, id, Address(req), 4)
		return append(reply, []byte{0xDE, 0xAD, 0xBE, 0xEF}...)
	})

	c, err := Dial(addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	data, err := c.Read(context.Background(), 0x1000, 4)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if string(data) != string(want) {
		t.Errorf("data = %x, want %x", data, want)
	}
}

func TestClientWriteRoundTrip(t *testing.T) {
	srv, addr := newFakeServer(t)
	defer srv.close()

	go srv.serveOnce(t, func(req []byte) []byte {
		id := PacketID(req)
		return MakeReplyHeader(CmdWriteReplyOK, id, Address(req), 0)
	})

	c, err := Dial(addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if _, err := c.Write(context.Background(), 0x20, []byte{1, 2}); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestClientSurfacesBusError(t *testing.T) {
	srv, addr := newFakeServer(t)
	defer srv.close()

	go srv.serveOnce(t, func(req []byte) []byte {
		id := PacketID(req)
		return MakeReplyHeader(CmdReadReplyError, id, Address(req), 0)
	})

	c, err := Dial(addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	_, err = c.Read(context.Background(), 0x1000, 4)
	if !IsBusError(err) {
		t.Errorf("want BusError, got %v", err)
	}
}

func TestClientTimesOutWithoutReply(t *testing.T) {
	srv, addr := newFakeServer(t)
	defer srv.close()

	c, err := Dial(addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	c.SetTimeout(50 * time.Millisecond)

	_, err = c.Read(context.Background(), 0x1000, 4)
	if !IsTimeout(err) {
		t.Errorf("want Timeout, got %v", err)
	}
}

func TestClientPacketIDIncrementsAndWraps(t *testing.T) {
	srv, addr := newFakeServer(t)
	defer srv.close()

	c, err := Dial(addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	c.id = 255

	done := make(chan byte, 1)
	go srv.serveOnce(t, func(req []byte) []byte {
		done <- PacketID(req)
		id := PacketID(req)
		return MakeReplyHeader(CmdReadReplyOK, id, Address(req), 0)
	})

	if _, err := c.Read(context.Background(), 0, 0); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := <-done; got != 255 {
		t.Errorf("request should carry the current counter value 255, got %d", got)
	}
	if c.id != 0 {
		t.Errorf("packet id counter should wrap 255->0, got %d", c.id)
	}
}
