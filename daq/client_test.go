/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package daq_test

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/BeeBeansTechnologies/sitcpy/daq"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingHandler struct {
	daq.NopHandler

	mu       sync.Mutex
	records  [][]byte
	started  bool
	stopped  bool
	running  int
	errs     []error
}

func (h *recordingHandler) OnDaqStart(c *daq.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = true
}

func (h *recordingHandler) OnDaqData(c *daq.Client, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	h.records = append(h.records, cp)
}

func (h *recordingHandler) OnDaqRunning(c *daq.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.running++
}

func (h *recordingHandler) OnDaqStop(c *daq.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
}

func (h *recordingHandler) OnDaqError(c *daq.Client, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *recordingHandler) snapshot() (records [][]byte, started, stopped bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([][]byte(nil), h.records...), h.started, h.stopped
}

var _ = Describe("Client", func() {
	It("delivers only record-unit-aligned buffers and holds back partial trailing bytes", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		defer ln.Close()

		serverDone := make(chan struct{})
		go func() {
			defer close(serverDone)
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
			// 8-byte data unit: write 20 bytes (2 full units + 4 leftover),
			// then 4 more bytes completing the third unit.
			conn.Write(make([]byte, 20))
			time.Sleep(50 * time.Millisecond)
			conn.Write(make([]byte, 4))
			time.Sleep(100 * time.Millisecond)
		}()

		h := &recordingHandler{}
		c := daq.NewClient(ln.Addr().String(), 8, h, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		runDone := make(chan struct{})
		go func() {
			c.Run(ctx)
			close(runDone)
		}()

		Eventually(func() bool {
			_, started, _ := h.snapshot()
			return started
		}, time.Second).Should(BeTrue())

		time.Sleep(300 * time.Millisecond)
		c.Stop()

		Eventually(runDone, 2*time.Second).Should(BeClosed())

		records, started, stopped := h.snapshot()
		Expect(started).To(BeTrue())
		Expect(stopped).To(BeTrue())

		total := 0
		for _, r := range records {
			Expect(len(r) % 8).To(Equal(0))
			total += len(r)
		}
		Expect(total).To(Equal(24))
	})

	It("reports a connect failure through OnDaqError without ever starting", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		addr := ln.Addr().String()
		ln.Close()

		h := &recordingHandler{}
		c := daq.NewClient(addr, 8, h, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		c.Run(ctx)

		_, started, _ := h.snapshot()
		Expect(started).To(BeFalse())

		h.mu.Lock()
		defer h.mu.Unlock()
		Expect(h.errs).To(HaveLen(1))
	})
})
